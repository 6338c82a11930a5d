package synth

import (
	"fmt"
	"strings"

	"github.com/roach88/cliffordt/internal/ring"
)

// Synthesizer turns exact gates into H/T strings. It only reads its table
// and is safe for concurrent use.
type Synthesizer struct {
	table *Table
}

// NewSynthesizer creates a Synthesizer backed by table.
func NewSynthesizer(table *Table) *Synthesizer {
	return &Synthesizer{table: table}
}

// Table returns the lookup table.
func (s *Synthesizer) Table() *Table { return s.table }

// Synthesize returns a gate string that evaluates exactly to g. The
// identity yields the empty string, and the result never contains HH or
// T⁸.
//
// While the denominator exponent exceeds TableSDE, the first i in
// [0, DescentWindow) for which H·T⁻ⁱ·g has exponent one lower is committed
// and "Tⁱ H" is emitted. The remaining gate is looked up in the table; a
// table that lacks its phase exponent is completed with trailing T gates.
// Finally every substring that the table spells shorter is replaced.
func (s *Synthesizer) Synthesize(g ring.Gate) (string, error) {
	su, st := g.SDEPair()
	if su != st {
		return "", &InvariantError{
			Code:    CodeSDEMismatch,
			Message: fmt.Sprintf("|u|² has exponent %d but |t|² has %d", su, st),
			SDE:     su,
		}
	}

	var out strings.Builder
	cur := g
	for sde := su; sde > TableSDE; sde-- {
		next, i, ok := descend(cur, sde)
		if !ok {
			return "", &InvariantError{
				Code:    CodeDescentStuck,
				Message: fmt.Sprintf("no H·T^-i with i < %d lowers %s", DescentWindow, cur),
				SDE:     sde,
			}
		}
		out.WriteString(strings.Repeat(string(ring.LetterT), i))
		out.WriteRune(ring.LetterH)
		cur = next
	}

	tail, ok := s.lookup(cur)
	if !ok {
		return "", &InvariantError{
			Code:    CodeTableMiss,
			Message: fmt.Sprintf("no table entry for %s", cur),
			SDE:     cur.SDE(),
		}
	}
	out.WriteString(tail)

	result := Reduce(s.shorten(out.String()))
	got, err := ring.Apply(result)
	if err != nil {
		return "", fmt.Errorf("synth: evaluate %q: %w", result, err)
	}
	if !got.Equal(g) {
		return "", &InvariantError{
			Code:    CodeNotReproduced,
			Message: fmt.Sprintf("%q evaluates to %s, want %s", result, got, g),
			SDE:     su,
		}
	}
	return result, nil
}

// lookup returns the table string for g, or the string for g's (u, t)
// followed by the T gates that fix the phase exponent.
func (s *Synthesizer) lookup(g ring.Gate) (string, bool) {
	if gates, ok := s.table.Lookup(g); ok {
		return gates, true
	}
	e, ok := s.table.LookupUpToPhase(g)
	if !ok {
		return "", false
	}
	fix := ((g.Phase-e.Gate.Phase)%8 + 8) % 8
	return e.Gates + strings.Repeat(string(ring.LetterT), fix), true
}

// shorten replaces substrings by shorter table strings for the same gate
// until no substring up to one letter longer than the longest entry has a
// shorter spelling. Each pass scans windows by their right end, from the
// end of the string to the start.
func (s *Synthesizer) shorten(gates string) string {
	width := s.table.maxLen + 1
	for changed := true; changed; {
		changed = false
		b := []byte(gates)
		for end := len(b); end > 0; {
			start, repl, ok := s.shorterWindow(b, end, width)
			if !ok {
				end--
				continue
			}
			b = append(b[:start:start], append([]byte(repl), b[end:]...)...)
			end = start
			changed = true
		}
		gates = string(b)
	}
	return gates
}

// shorterWindow finds the shortest window b[start:end] of at most width
// letters whose gate the table spells with fewer letters.
func (s *Synthesizer) shorterWindow(b []byte, end, width int) (int, string, bool) {
	g := ring.Identity()
	for start := end - 1; start >= 0 && end-start <= width; start-- {
		if b[start] == byte(ring.LetterH) {
			g = g.ApplyH()
		} else {
			g = g.ApplyT()
		}
		if repl, ok := s.table.Lookup(g); ok && len(repl) < end-start {
			return start, repl, true
		}
	}
	return 0, "", false
}

// Reduce cancels adjacent H pairs and runs of eight T gates until neither
// is left. s must hold only H and T; the result evaluates to the same
// gate.
func Reduce(s string) string {
	out := make([]byte, 0, len(s))
	run := 0 // trailing T gates in out
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == byte(ring.LetterH) && len(out) > 0 && out[len(out)-1] == c:
			out = out[:len(out)-1]
			run = trailingT(out)
		case c == byte(ring.LetterH):
			out = append(out, c)
			run = 0
		default:
			out = append(out, c)
			if run++; run == 8 {
				out = out[:len(out)-8]
				run = trailingT(out)
			}
		}
	}
	return string(out)
}

func trailingT(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == byte(ring.LetterT); i-- {
		n++
	}
	return n
}

// descend returns H·T⁻ⁱ·g for the first i in the window that lowers the
// exponent from sde to sde−1.
func descend(g ring.Gate, sde int) (ring.Gate, int, bool) {
	for i := range DescentWindow {
		next := g.ApplyTPow(-i).ApplyH()
		if next.SDE() == sde-1 {
			return next, i, true
		}
	}
	return ring.Gate{}, 0, false
}
