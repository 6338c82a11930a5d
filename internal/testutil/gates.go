package testutil

import (
	"math/rand"
	"strings"
)

// RandomGateString returns a uniformly random H/T string of length n.
//
// Callers pass a seeded *rand.Rand so that failures reproduce.
func RandomGateString(rng *rand.Rand, n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		if rng.Intn(2) == 0 {
			b.WriteByte('H')
		} else {
			b.WriteByte('T')
		}
	}
	return b.String()
}

// RandomGateStrings returns count strings with lengths drawn from
// [minLen, maxLen].
func RandomGateStrings(seed int64, count, minLen, maxLen int) []string {
	rng := rand.New(rand.NewSource(seed))
	out := make([]string, count)
	for i := range out {
		out[i] = RandomGateString(rng, minLen+rng.Intn(maxLen-minLen+1))
	}
	return out
}

// PrunedGateStrings returns every H/T string of length at most maxLen
// without HH or eight T in a row, the empty string included, shortest
// first.
func PrunedGateStrings(maxLen int) []string {
	out := []string{""}
	level := []string{""}
	for range maxLen {
		var next []string
		for _, s := range level {
			if !strings.HasSuffix(s, "H") {
				next = append(next, s+"H")
			}
			if !strings.HasSuffix(s, "TTTTTTT") {
				next = append(next, s+"T")
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}
