package ring

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Gate string letters. Strings are read as matrix products, so the
// rightmost letter acts on the identity first.
const (
	LetterH = 'H'
	LetterT = 'T'
	LetterI = 'I'
)

// ParseGates normalizes a user-supplied gate string. Input is NFKC
// normalized (so full-width letters are accepted), upper-cased, stripped of
// whitespace and of explicit identity letters. Any other letter is an error.
func ParseGates(s string) (string, error) {
	s = strings.ToUpper(norm.NFKC.String(s))
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == LetterH || r == LetterT:
			b.WriteRune(r)
		case r == LetterI || unicode.IsSpace(r):
		default:
			return "", fmt.Errorf("invalid gate %q at offset %d", r, i)
		}
	}
	return b.String(), nil
}

// Apply evaluates a gate string: the letters are applied right to left to
// the identity. "I" letters are no-ops.
func Apply(s string) (Gate, error) {
	g := Identity()
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case LetterH:
			g = g.ApplyH()
		case LetterT:
			g = g.ApplyT()
		case LetterI:
		default:
			return Gate{}, fmt.Errorf("invalid gate %q at offset %d", s[i], i)
		}
	}
	return g, nil
}

// CountT returns the number of T letters in s.
func CountT(s string) int { return strings.Count(s, string(LetterT)) }

// CountH returns the number of H letters in s.
func CountH(s string) int { return strings.Count(s, string(LetterH)) }
