package synth

import (
	"context"
	"log/slog"

	"github.com/roach88/cliffordt/internal/ring"
)

const (
	// TableSDE is the largest denominator exponent resolved by table
	// lookup instead of descent.
	TableSDE = 3

	// DescentWindow is the number of T powers tried at each descent step.
	DescentWindow = 4

	// DefaultExploreSDE bounds the exponent of intermediate gates visited
	// while generating the table.
	DefaultExploreSDE = 5

	// DefaultMaxLength bounds the length of generated gate strings.
	DefaultMaxLength = 64
)

var generators = []struct {
	letter rune
	apply  func(ring.Gate) ring.Gate
}{
	{ring.LetterH, ring.Gate.ApplyH},
	{ring.LetterT, ring.Gate.ApplyT},
}

// GenerateOptions bounds table generation.
type GenerateOptions struct {
	MaxLength  int
	ExploreSDE int
	TableSDE   int
}

// DefaultGenerateOptions returns the options used for the shipped table.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		MaxLength:  DefaultMaxLength,
		ExploreSDE: DefaultExploreSDE,
		TableSDE:   TableSDE,
	}
}

// GenerateTable enumerates gates breadth first from the identity by left
// multiplication with H and T. The first string reaching a gate is a
// shortest one and is kept, so no stored string contains HH or T⁸. Gates
// whose exponent exceeds ExploreSDE are not expanded, and only gates with
// exponent at most TableSDE are stored. Every phase exponent of a stored
// (u, t) is reachable, so generated tables never need a phase fix.
func GenerateTable(ctx context.Context, opts GenerateOptions) (*Table, error) {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if opts.ExploreSDE < opts.TableSDE {
		opts.ExploreSDE = opts.TableSDE
	}

	t := newTable()
	seen := map[string]bool{}
	frontier := []Entry{{Gates: "", Gate: ring.Identity()}}
	seen[gateKey(frontier[0].Gate)] = true
	t.put(frontier[0])

	for length := 1; length <= opts.MaxLength && len(frontier) > 0; length++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var next []Entry
		for _, e := range frontier {
			for _, step := range generators {
				g := step.apply(e.Gate)
				key := gateKey(g)
				if seen[key] {
					continue
				}
				seen[key] = true

				sde := g.SDE()
				if sde > opts.ExploreSDE {
					continue
				}
				child := Entry{Gates: string(step.letter) + e.Gates, Gate: g}
				if sde <= opts.TableSDE {
					t.put(child)
				}
				next = append(next, child)
			}
		}
		frontier = next
		slog.Debug("table generation level", "length", length, "frontier", len(frontier), "entries", t.Len())
	}
	return t, nil
}
