package grid

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"

	"github.com/roach88/cliffordt/internal/ir"
	"github.com/roach88/cliffordt/internal/lattice"
	"github.com/roach88/cliffordt/internal/ring"
)

// ErrInvalidTarget is returned for a zero or non-finite direction or an
// epsilon outside [ir.MinEpsilon, √2].
var ErrInvalidTarget = errors.New("grid: invalid target")

// lambda weights the z and z• blocks of the 4-D ellipsoid. It minimizes
// the ellipsoid volume (λ/r₁)·(1−λ) up to constants.
const lambda = 0.5

// basePrec is the working precision in bits at exponent 0 for the widest
// region.
const basePrec = 128

// Region is the set of z in the closed unit disc whose projection onto
// Direction is at least 1 − EpsilonA, with EpsilonA = ε²/2.
type Region struct {
	Direction complex128
	EpsilonA  float64
}

// NewRegion builds the region for an operator-norm distance epsilon
// around direction. The direction is normalized.
func NewRegion(direction complex128, epsilon float64) (Region, error) {
	abs := cmplx.Abs(direction)
	if abs == 0 || math.IsNaN(abs) || math.IsInf(abs, 0) {
		return Region{}, fmt.Errorf("%w: direction %v", ErrInvalidTarget, direction)
	}
	if !(epsilon >= ir.MinEpsilon && epsilon <= math.Sqrt2) {
		return Region{}, fmt.Errorf("%w: epsilon %g not in [%g, √2]", ErrInvalidTarget, epsilon, ir.MinEpsilon)
	}
	return Region{Direction: direction / complex(abs, 0), EpsilonA: epsilon * epsilon / 2}, nil
}

// precision returns the working precision for exponent k. The basis
// entries shrink as 2^(−k/2) and the cap axis grows as 1/εₐ², and LLL has
// to resolve both against entries of order one.
func (r Region) precision(k int) uint {
	bits := math.Max(0, math.Ceil(-math.Log2(r.EpsilonA)))
	return basePrec + uint(k) + 2*uint(bits)
}

// frame holds the region's constants at one precision.
type frame struct {
	prec   uint
	dx, dy *big.Float
	floor  *big.Float // 1 − εₐ
	sqrt2  *big.Float
}

func (r Region) frame(prec uint) frame {
	dx := bigFloat(real(r.Direction), prec)
	dy := bigFloat(imag(r.Direction), prec)
	n := new(big.Float).Sqrt(new(big.Float).Add(mul(dx, dx), mul(dy, dy)))
	floor := bigFloat(1, prec)
	return frame{
		prec:  prec,
		dx:    dx.Quo(dx, n),
		dy:    dy.Quo(dy, n),
		floor: floor.Sub(floor, bigFloat(r.EpsilonA, prec)),
		sqrt2: new(big.Float).SetPrec(prec).Sqrt(bigFloat(2, prec)),
	}
}

func bigFloat(x float64, prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetFloat64(x)
}

func mul(x, y *big.Float) *big.Float { return new(big.Float).Mul(x, y) }

// Contains reports whether u and its Galois conjugate lie in the unit disc
// and u lies within the angular cap around the direction. The disc tests
// are exact; the cap test runs at the precision of u's exponent.
func (r Region) Contains(u ring.Complex) bool {
	one := ring.LocalFromInt(1)
	if one.Sub(u.NormSq()).Sign() < 0 {
		return false
	}
	if one.Sub(u.Galois().NormSq()).Sign() < 0 {
		return false
	}
	f := r.frame(r.precision(max(u.Re.Exp(), u.Im.Exp(), 0)))
	proj := new(big.Float).Add(mul(f.value(u.Re), f.dx), mul(f.value(u.Im), f.dy))
	return proj.Cmp(f.floor) >= 0
}

// value evaluates x = (a + b√2)/√2ᵉ.
func (f frame) value(x ring.Local) *big.Float {
	n := x.Num()
	v := new(big.Float).SetPrec(f.prec).SetInt(n.A())
	v.Add(v, mul(new(big.Float).SetPrec(f.prec).SetInt(n.B()), f.sqrt2))
	e := x.Exp()
	if e%2 != 0 {
		v.Mul(v, f.sqrt2)
		e++
	}
	return v.SetMantExp(v, -e/2)
}

// center returns x_c = (c, 0, 0) with c = d·(1−εₐ).
func (f frame) center() lattice.BigVec {
	return lattice.BigVec{mul(f.dx, f.floor), mul(f.dy, f.floor), bigFloat(0, f.prec), bigFloat(0, f.prec)}
}

// ellipsoid returns R with the search ellipsoid {x : ‖R(x − x_c)‖² ≤ 1}.
// The first block is the ellipse circumscribing the cap, scaled by
// √(λ/r₁); the second is the unit disc for z•, scaled by √(1−λ).
func (r Region) ellipsoid(f frame) lattice.BigMat {
	ea := bigFloat(r.EpsilonA, f.prec)
	s := new(big.Float).Sqrt(ea)
	oneMinusS := new(big.Float).Sub(bigFloat(1, f.prec), s)

	r1 := mul(mul(ea, ea), new(big.Float).Sub(bigFloat(2, f.prec), ea))
	alpha := new(big.Float).Sqrt(new(big.Float).Quo(bigFloat(lambda, f.prec), r1))
	beta := new(big.Float).Sqrt(bigFloat(1-lambda, f.prec))

	cross := mul(alpha, mul(oneMinusS, mul(f.dx, f.dy)))
	zero := bigFloat(0, f.prec)
	return lattice.BigMat{
		{mul(alpha, new(big.Float).Add(s, mul(oneMinusS, mul(f.dx, f.dx)))), cross, zero, zero},
		{cross, mul(alpha, new(big.Float).Add(s, mul(oneMinusS, mul(f.dy, f.dy)))), zero, zero},
		{zero, zero, beta, zero},
		{zero, zero, zero, beta},
	}
}

// latticeBasis maps integer coordinates (a, b, c, d) of
// u = ((a + b√2) + i(c + d√2))/√2ᵏ to (Re u, Im u, Re u•, Im u•). The z•
// coordinates drop the (−1)ᵏ sign of the conjugate; the ellipsoid is
// symmetric in that block.
func latticeBasis(k int, f frame) lattice.BigMat {
	scale := new(big.Float).SetPrec(f.prec).SetMantExp(bigFloat(1, f.prec), -(k / 2))
	if k%2 == 1 {
		scale.Quo(scale, f.sqrt2)
	}
	one := scale
	r2 := mul(f.sqrt2, scale)
	neg := new(big.Float).Neg(r2)
	zero := bigFloat(0, f.prec)
	return lattice.BigMat{
		{one, r2, zero, zero},
		{zero, zero, one, r2},
		{one, neg, zero, zero},
		{zero, zero, one, neg},
	}
}

// candidate turns lattice coordinates at exponent k into an exact u.
func candidate(v lattice.BigIntVec, k int) ring.Complex {
	return ring.NewComplex(
		ring.NewLocal(ring.ZRoot2FromBig(v[0], v[1]), k),
		ring.NewLocal(ring.ZRoot2FromBig(v[2], v[3]), k),
	)
}

// foundEarlier reports whether the point at exponent k already appears at
// k−1, which happens when both Z[√2] parts are divisible by √2.
func foundEarlier(v lattice.BigIntVec, k int) bool {
	return k > 0 && v[0].Bit(0) == 0 && v[2].Bit(0) == 0
}
