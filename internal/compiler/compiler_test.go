package compiler

import (
	"context"
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cliffordt/internal/grid"
	"github.com/roach88/cliffordt/internal/ir"
	"github.com/roach88/cliffordt/internal/oracle"
	"github.com/roach88/cliffordt/internal/ring"
	"github.com/roach88/cliffordt/internal/synth"
)

var (
	tableOnce sync.Once
	table     *synth.Table
	tableErr  error
)

func newCompiler(t *testing.T, opts ...grid.Option) *Compiler {
	t.Helper()
	tableOnce.Do(func() {
		table, tableErr = synth.GenerateTable(context.Background(), synth.DefaultGenerateOptions())
	})
	require.NoError(t, tableErr)
	params := ir.SearchParams{
		MaxDepth:     grid.DefaultMaxDepth,
		MaxShellNorm: grid.DefaultMaxShellNorm,
		FactorBudget: oracle.DefaultFactorBudget,
		TableDigest:  "test",
	}
	return New(grid.New(opts...), synth.NewSynthesizer(table), params)
}

func TestCompile_Gates(t *testing.T) {
	c := newCompiler(t)
	res, err := c.Compile(context.Background(), ir.Target{Kind: ir.KindGates, Gates: "h t"})
	require.NoError(t, err)

	assert.Equal(t, "HT", res.Target.Gates)
	assert.Equal(t, "HT", res.Gates)
	assert.Equal(t, 2, res.Length)
	assert.Equal(t, 1, res.TCount)
	assert.Equal(t, 1, res.HCount)
	assert.Equal(t, 2, res.SDE)
	assert.Equal(t, 5, res.Phase)
	assert.True(t, res.Exact)
	assert.InDelta(t, 0, res.Distance, 1e-12)
	assert.Equal(t, [12]string{"1", "0", "1", "0", "0", "0", "1", "0", "1", "0", "0", "0"}, res.Components)
	assert.Equal(t, ir.MustTargetID(ir.Target{Kind: ir.KindGates, Gates: "HT"}, c.Params()), res.TargetID)
}

func TestCompile_Identity(t *testing.T) {
	res, err := newCompiler(t).Compile(context.Background(), ir.Target{Kind: ir.KindDirection, Re: 1, Epsilon: 0.02})
	require.NoError(t, err)
	assert.Equal(t, "", res.Gates)
	assert.Equal(t, 0, res.Depth)
	assert.InDelta(t, 0, res.Distance, 1e-12)
	assert.False(t, res.Exact)
}

func TestCompile_Angle(t *testing.T) {
	const theta, eps = 0.7, 0.05
	res, err := newCompiler(t).Compile(context.Background(), ir.Target{Kind: ir.KindAngle, Theta: theta, Epsilon: eps})
	require.NoError(t, err)

	assert.LessOrEqual(t, res.Distance, eps)
	assert.Positive(t, res.TCount)
	assert.Equal(t, ring.CountT(res.Gates), res.TCount)
	assert.Equal(t, len(res.Gates), res.Length)

	g, err := ring.Apply(res.Gates)
	require.NoError(t, err)
	assert.LessOrEqual(t, OperatorDistance(DirectionMatrix(cmplx.Rect(1, theta)), g.Matrix()), eps)
	for i, c := range g.Components() {
		assert.Equal(t, c.String(), res.Components[i])
	}
}

func TestCompile_DepthExhausted(t *testing.T) {
	c := newCompiler(t, grid.WithMaxDepth(0))
	_, err := c.Compile(context.Background(), ir.Target{Kind: ir.KindAngle, Theta: 0.3, Epsilon: 0.01})
	require.Error(t, err)
	assert.True(t, grid.IsDepthExhausted(err))
}

func TestCompile_InvalidTarget(t *testing.T) {
	c := newCompiler(t)
	for _, target := range []ir.Target{
		{Kind: ir.KindAngle, Theta: 1},
		{Kind: ir.KindGates, Gates: "HXT"},
		{Kind: "bogus"},
	} {
		_, err := c.Compile(context.Background(), target)
		assert.ErrorIs(t, err, ir.ErrInvalidTarget, "target %+v", target)
	}
}

func TestOperatorDistance(t *testing.T) {
	id := [2][2]complex128{{1, 0}, {0, 1}}
	neg := [2][2]complex128{{-1, 0}, {0, -1}}
	s := [2][2]complex128{{1, 0}, {0, 1i}}

	assert.InDelta(t, 0, OperatorDistance(id, id), 1e-12)
	assert.InDelta(t, 2, OperatorDistance(id, neg), 1e-12)
	assert.InDelta(t, math.Sqrt2, OperatorDistance(id, s), 1e-12)
}

func TestDirectionMatrix(t *testing.T) {
	m := DirectionMatrix(3i)
	assert.Equal(t, complex128(1i), m[0][0])
	assert.Equal(t, complex128(-1i), m[1][1])
	assert.Equal(t, complex128(0), m[0][1])
}
