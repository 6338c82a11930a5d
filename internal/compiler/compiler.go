package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"math/cmplx"

	"github.com/roach88/cliffordt/internal/grid"
	"github.com/roach88/cliffordt/internal/ir"
	"github.com/roach88/cliffordt/internal/ring"
	"github.com/roach88/cliffordt/internal/synth"
)

// Compiler turns targets into gate strings: approximate targets go through
// the grid search and then exact synthesis, exact targets only through
// exact synthesis. It is safe for concurrent use.
type Compiler struct {
	searcher *grid.Searcher
	synth    *synth.Synthesizer
	params   ir.SearchParams
}

// New creates a Compiler. params must describe the searcher and table so
// that target IDs key the result cache correctly.
func New(searcher *grid.Searcher, synthesizer *synth.Synthesizer, params ir.SearchParams) *Compiler {
	return &Compiler{searcher: searcher, synth: synthesizer, params: params}
}

// Params returns the search parameters folded into target IDs.
func (c *Compiler) Params() ir.SearchParams { return c.params }

// TargetID returns the cache key of t under this compiler's parameters.
func (c *Compiler) TargetID(t ir.Target) (string, error) {
	t, err := normalize(t)
	if err != nil {
		return "", err
	}
	return ir.TargetID(t, c.params)
}

// normalize validates t and rewrites its gate string to canonical form,
// so that equivalent spellings share a target ID.
func normalize(t ir.Target) (ir.Target, error) {
	if err := t.Validate(); err != nil {
		return ir.Target{}, err
	}
	if t.Kind == ir.KindGates {
		norm, err := ring.ParseGates(t.Gates)
		if err != nil {
			return ir.Target{}, fmt.Errorf("%w: %v", ir.ErrInvalidTarget, err)
		}
		t.Gates = norm
	}
	return t, nil
}

// Compile synthesizes t.
func (c *Compiler) Compile(ctx context.Context, t ir.Target) (ir.Result, error) {
	t, err := normalize(t)
	if err != nil {
		return ir.Result{}, err
	}
	id, err := ir.TargetID(t, c.params)
	if err != nil {
		return ir.Result{}, err
	}

	var (
		gate  ring.Gate
		want  [2][2]complex128
		depth int
	)
	exact := t.Kind == ir.KindGates
	if exact {
		if gate, err = ring.Apply(t.Gates); err != nil {
			return ir.Result{}, err
		}
		want = gate.Matrix()
	} else {
		d := t.Direction()
		g, stats, err := c.searcher.FindGate(ctx, d, t.Epsilon)
		if err != nil {
			return ir.Result{}, fmt.Errorf("compile %s target: %w", t.Kind, err)
		}
		gate, depth = g, stats.Depth
		want = DirectionMatrix(d)
	}

	gates, err := c.synth.Synthesize(gate)
	if err != nil {
		return ir.Result{}, fmt.Errorf("compile %s target: %w", t.Kind, err)
	}
	got, err := ring.Apply(gates)
	if err != nil {
		return ir.Result{}, err
	}

	res := ir.Result{
		TargetID: id,
		Target:   t,
		Gates:    gates,
		Length:   len(gates),
		TCount:   ring.CountT(gates),
		HCount:   ring.CountH(gates),
		Depth:    depth,
		SDE:      gate.SDE(),
		Phase:    gate.Phase,
		Distance: OperatorDistance(want, got.Matrix()),
		Exact:    exact,
	}
	for i, v := range gate.Components() {
		res.Components[i] = v.String()
	}

	slog.Debug("compiled target",
		"target_id", id,
		"kind", t.Kind,
		"length", res.Length,
		"t_count", res.TCount,
		"depth", res.Depth,
		"distance", res.Distance)
	return res, nil
}

// Synthesize returns the gate string of an exact gate.
func (c *Compiler) Synthesize(g ring.Gate) (string, error) {
	return c.synth.Synthesize(g)
}

// DirectionMatrix returns diag(d, d̄) for the normalized direction d.
func DirectionMatrix(d complex128) [2][2]complex128 {
	n := d / complex(cmplx.Abs(d), 0)
	return [2][2]complex128{
		{n, 0},
		{0, cmplx.Conj(n)},
	}
}
