package lattice

import (
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrec = 128

func randomBasis(rng *rand.Rand) BigMat {
	var b Mat4
	for i := range 4 {
		for j := range 4 {
			b[i][j] = rng.NormFloat64() * 10
		}
	}
	return NewBigMat(b, testPrec)
}

// skewedBasis mimics the grid lattices: one block scaled up by 2^40.
func skewedBasis(rng *rand.Rand) BigMat {
	b := randomBasis(rng)
	scale := new(big.Float).SetMantExp(big.NewFloat(1), 40)
	for j := range 4 {
		b[0][j] = new(big.Float).Mul(b[0][j], scale)
		b[1][j] = new(big.Float).Mul(b[1][j], scale)
	}
	return b
}

// plusTiny returns x + 2⁻⁶⁴, the slack for comparisons of recomputed values.
func plusTiny(x float64) *big.Float {
	v := new(big.Float).SetPrec(testPrec).SetFloat64(x)
	return v.Add(v, new(big.Float).SetMantExp(big.NewFloat(1), -64))
}

func f64(x *big.Float) float64 {
	v, _ := x.Float64()
	return v
}

// mulInt returns b·x.
func mulInt(b BigMat, x BigIntMat) BigMat {
	var out BigMat
	for j := range 4 {
		col := b.MulIntVec(x.Col(j))
		for i := range 4 {
			out[i][j] = col[i]
		}
	}
	return out
}

func assertUnimodular(t *testing.T, x BigIntMat) {
	t.Helper()
	det := x.Det()
	require.True(t, det.CmpAbs(big.NewInt(1)) == 0, "det X = %s", det)
}

func TestLLLReduce_BasisChangeIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 300; n++ {
		b := randomBasis(rng)
		if n%3 == 0 {
			b = skewedBasis(rng)
		}
		red, err := LLLReduce(b)
		require.NoError(t, err)
		assertUnimodular(t, red.Transform)

		want := mulInt(b, red.Transform)
		for i := range 4 {
			for j := range 4 {
				w, got := f64(want[i][j]), f64(red.Basis[i][j])
				require.InDelta(t, w, got, 1e-12*(1+math.Abs(w)))
			}
		}
	}
}

func TestLLLReduce_LovaszCondition(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	delta := big.NewFloat(Delta)
	slack := plusTiny(1)
	for n := 0; n < 300; n++ {
		b := randomBasis(rng)
		if n%3 == 0 {
			b = skewedBasis(rng)
		}
		red, err := LLLReduce(b)
		require.NoError(t, err)

		bstar := GramSchmidt(red.Basis)
		for i := range 3 {
			bs := bstar.Col(i)
			mu := new(big.Float).Quo(BigDot(red.Basis.Col(i+1), bs), bs.Norm2())
			next := bstar.Col(i + 1).Add(bs.Scale(mu))
			lhs := new(big.Float).Mul(delta, bs.Norm2())
			rhs := new(big.Float).Mul(slack, next.Norm2())
			require.LessOrEqual(t, lhs.Cmp(rhs), 0)
		}
	}
}

func TestLLLReduce_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	for n := 0; n < 100; n++ {
		first, err := LLLReduce(randomBasis(rng))
		require.NoError(t, err)

		second, err := LLLReduce(first.Basis)
		require.NoError(t, err)

		for i := range 4 {
			for j := range 4 {
				v := second.Transform[i][j].Int64()
				if i == j {
					require.True(t, v == 1 || v == -1)
				} else {
					require.Zero(t, v)
				}
			}
		}
	}
}

func TestLLLReduce_KnownLattice(t *testing.T) {
	// Columns (1,0,0,0), (1000,1,0,0), ... reduce to the standard basis up
	// to sign and order.
	b := NewBigMat(Mat4{
		{1, 1000, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 999},
		{0, 0, 0, 1},
	}, testPrec)
	red, err := LLLReduce(b)
	require.NoError(t, err)
	for j := range 4 {
		assert.Equal(t, 0, red.Basis.Col(j).Norm2().Cmp(big.NewFloat(1)))
	}
}

func TestLLLReduce_LargeCoordinates(t *testing.T) {
	// The second column is 2^80 times the first plus a unit step, so the
	// transform needs entries beyond int64.
	huge := new(big.Float).SetMantExp(big.NewFloat(1), 80)
	b := NewBigMat(Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}, 200)
	b[0][1] = huge
	red, err := LLLReduce(b)
	require.NoError(t, err)
	assertUnimodular(t, red.Transform)

	limit := new(big.Int).Lsh(big.NewInt(1), 63)
	var wide bool
	for i := range 4 {
		for j := range 4 {
			wide = wide || red.Transform[i][j].CmpAbs(limit) >= 0
		}
	}
	assert.True(t, wide, "transform fits in int64")
	for j := range 4 {
		assert.Equal(t, 0, red.Basis.Col(j).Norm2().Cmp(big.NewFloat(1)))
	}
}

func TestLLLReduce_Degenerate(t *testing.T) {
	b := NewBigMat(Mat4{
		{1, 2, 0, 0},
		{1, 2, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}, testPrec)
	_, err := LLLReduce(b)
	assert.ErrorIs(t, err, ErrDegenerateBasis)
}

func TestNearestPlane_ResidualIsBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(45))
	half := plusTiny(0.5)
	for n := 0; n < 300; n++ {
		b := randomBasis(rng)
		if n%2 == 0 {
			red, err := LLLReduce(b)
			require.NoError(t, err)
			b = red.Basis
		}
		bstar := GramSchmidt(b)
		var target Vec4
		for i := range target {
			target[i] = rng.NormFloat64() * 100
		}
		bt := NewBigVec(target, testPrec)

		point, coords := NearestPlane(b, bstar, bt)
		residual := bt.Sub(point)
		for j := range 4 {
			bs := bstar.Col(j)
			c := new(big.Float).Quo(BigDot(residual, bs), bs.Norm2())
			require.LessOrEqual(t, c.Abs(c).Cmp(half), 0)
		}

		// The point is the lattice vector with the returned coordinates.
		back := b.MulIntVec(coords)
		for i := range 4 {
			require.InDelta(t, f64(back[i]), f64(point[i]), 1e-12*(1+math.Abs(f64(point[i]))))
		}
	}
}

func TestGramSchmidt_Orthogonal(t *testing.T) {
	rng := rand.New(rand.NewSource(46))
	bstar := GramSchmidt(randomBasis(rng))
	for i := range 4 {
		for j := range i {
			assert.InDelta(t, 0, f64(BigDot(bstar.Col(i), bstar.Col(j))), 1e-25)
		}
	}
}

func TestBigIntMat_Det(t *testing.T) {
	assert.Equal(t, int64(1), IdentityBigInt().Det().Int64())

	var x BigIntMat
	for i, row := range [4][4]int64{
		{2, 0, 0, 0},
		{0, 3, 0, 0},
		{0, 0, 1, 5},
		{0, 0, 0, -1},
	} {
		for j, v := range row {
			x[i][j] = big.NewInt(v)
		}
	}
	assert.Equal(t, int64(-6), x.Det().Int64())
	assert.Equal(t, int64(6), x.swapCols(0, 1).Det().Int64())
}

func TestRoundInt(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0}, {0.4, 0}, {0.5, 1}, {-0.5, -1}, {-1.49, -1}, {2.5, 3}, {-7.6, -8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundInt(big.NewFloat(tt.in)).Int64(), "round(%g)", tt.in)
	}
}

func TestMinSingularValue(t *testing.T) {
	d := Mat4{
		{4, 0, 0, 0},
		{0, 0.5, 0, 0},
		{0, 0, 3, 0},
		{0, 0, 0, 2},
	}
	assert.InDelta(t, 0.5, MinSingularValue(d), 1e-12)

	// A rotation in the first plane does not change singular values.
	c, s := math.Cos(0.3), math.Sin(0.3)
	rot := Mat4{
		{4 * c, -0.5 * s, 0, 0},
		{4 * s, 0.5 * c, 0, 0},
		{0, 0, 3, 0},
		{0, 0, 0, 2},
	}
	assert.InDelta(t, 0.5, MinSingularValue(rot), 1e-12)
}

func TestSingularLowerBound(t *testing.T) {
	d := Mat4{
		{4, 0, 0, 0},
		{0, 0.5, 0, 0},
		{0, 0, 3, 0},
		{0, 0, 0, 2},
	}
	assert.InDelta(t, 0.5, SingularLowerBound(d), 1e-12)

	rng := rand.New(rand.NewSource(47))
	for n := 0; n < 200; n++ {
		red, err := LLLReduce(skewedBasis(rng))
		require.NoError(t, err)
		m := red.Basis.Float64()
		bound := SingularLowerBound(m)
		require.Positive(t, bound)

		// No integer offset moves less than the bound allows.
		for _, o := range []IntVec4{{1, 0, 0, 0}, {0, 1, -1, 0}, {2, -1, 3, 1}, {0, 0, 0, 5}} {
			ov := Vec4{float64(o[0]), float64(o[1]), float64(o[2]), float64(o[3])}
			require.GreaterOrEqual(t, math.Sqrt(m.MulIntVec(o).Norm2()), bound*math.Sqrt(ov.Norm2())*(1-1e-9))
		}
	}
}
