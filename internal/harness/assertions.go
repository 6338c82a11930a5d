package harness

import (
	"fmt"

	"github.com/roach88/cliffordt/internal/ir"
)

// AssertionError is an expectation that did not hold.
type AssertionError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, actual %s", e.Field, e.Expected, e.Actual)
}

// checkExpect returns every expectation of e that res violates, in field
// order.
func checkExpect(e *Expect, res ir.Result) []*AssertionError {
	if e == nil {
		return nil
	}
	var failures []*AssertionError
	if e.NoSolution {
		failures = append(failures, &AssertionError{
			Field:    "no_solution",
			Expected: "depth exhausted",
			Actual:   fmt.Sprintf("compiled at depth %d", res.Depth),
		})
	}
	if e.Gates != nil && *e.Gates != res.Gates {
		failures = append(failures, &AssertionError{
			Field:    "gates",
			Expected: fmt.Sprintf("%q", *e.Gates),
			Actual:   fmt.Sprintf("%q", res.Gates),
		})
	}
	if e.MaxTCount != nil && res.TCount > *e.MaxTCount {
		failures = append(failures, &AssertionError{
			Field:    "t_count",
			Expected: fmt.Sprintf("<= %d", *e.MaxTCount),
			Actual:   fmt.Sprint(res.TCount),
		})
	}
	if e.MaxLength != nil && res.Length > *e.MaxLength {
		failures = append(failures, &AssertionError{
			Field:    "length",
			Expected: fmt.Sprintf("<= %d", *e.MaxLength),
			Actual:   fmt.Sprint(res.Length),
		})
	}
	if e.MaxDistance != nil && res.Distance > *e.MaxDistance {
		failures = append(failures, &AssertionError{
			Field:    "distance",
			Expected: fmt.Sprintf("<= %g", *e.MaxDistance),
			Actual:   fmt.Sprintf("%g", res.Distance),
		})
	}
	return failures
}
