package grid

import (
	"context"
	"fmt"

	"github.com/roach88/cliffordt/internal/oracle"
	"github.com/roach88/cliffordt/internal/ring"
)

// completeGate looks for t with |u|² + |t|² = 1 and returns the phase-zero
// gate (u, t). ok is false when 1 − |u|² is not a sum of two squares.
func completeGate(ctx context.Context, o *oracle.Oracle, u ring.Complex) (ring.Gate, bool, error) {
	xi := ring.LocalFromInt(1).Sub(u.NormSq())
	if !oracle.IsDoublyPositive(xi) {
		return ring.Gate{}, false, nil
	}
	a, b, ok, err := o.SumOfTwoSquares(ctx, xi)
	if err != nil {
		return ring.Gate{}, false, fmt.Errorf("grid: complete %s: %w", u, err)
	}
	if !ok {
		return ring.Gate{}, false, nil
	}
	g, err := ring.NewGate(u, ring.NewComplex(a, b), 0)
	if err != nil {
		return ring.Gate{}, false, &oracle.InvariantError{Op: "completeGate", Message: err.Error()}
	}
	return g, true, nil
}
