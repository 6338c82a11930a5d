package lattice

import (
	"errors"
	"fmt"
	"math/big"
)

// Delta is the Lovász constant.
const Delta = 0.75

// MaxIterations caps the number of swap rounds in LLLReduce. The potential
// argument bounds the real count far below this for δ = 0.75.
const MaxIterations = 10000

// guardBits is how far below the working precision a Gram-Schmidt norm may
// fall, relative to its column, before the column counts as dependent.
const guardBits = 32

var (
	// ErrNoConvergence means LLLReduce hit MaxIterations. It indicates a
	// numerical breakdown, never a property of the input lattice.
	ErrNoConvergence = errors.New("lattice: LLL reduction did not converge")

	// ErrDegenerateBasis means the basis columns are linearly dependent.
	ErrDegenerateBasis = errors.New("lattice: degenerate basis")
)

// Reduction is the result of LLLReduce: Basis = original·Transform, with
// Transform unimodular.
type Reduction struct {
	Basis     BigMat
	Transform BigIntMat
}

// GramSchmidt returns the non-normalized Gram-Schmidt orthogonalization of
// the columns of b. A zero column contributes no projection.
func GramSchmidt(b BigMat) BigMat {
	u := b
	for i := range 4 {
		ui := u.Col(i)
		for j := range i {
			uj := u.Col(j)
			n := uj.Norm2()
			if n.Sign() == 0 {
				continue
			}
			ui = ui.Sub(uj.Scale(new(big.Float).Quo(BigDot(ui, uj), n)))
		}
		u = u.withCol(i, ui)
	}
	return u
}

// NearestPlane runs Babai's nearest plane algorithm. Dimensions are visited
// last to first; at each step the residual's projection onto b*ⱼ is rounded
// and that multiple of the original column bⱼ is subtracted. It returns the
// lattice point and its integer coordinates in the basis b. The columns of
// bstar must be nonzero, as they are for any basis LLLReduce accepted.
func NearestPlane(b, bstar BigMat, target BigVec) (BigVec, BigIntVec) {
	residual := target
	var coords BigIntVec
	for j := 3; j >= 0; j-- {
		bs := bstar.Col(j)
		c := roundInt(new(big.Float).Quo(BigDot(residual, bs), bs.Norm2()))
		coords[j] = c
		residual = residual.Sub(b.Col(j).Scale(new(big.Float).SetInt(c)))
	}
	return target.Sub(residual), coords
}

// LLLReduce reduces the columns of b with δ = Delta, computing at the
// precision of b's entries. The returned Transform records every column
// operation so that lattice points found in the reduced basis map back to
// the caller's coordinates exactly.
func LLLReduce(b BigMat) (Reduction, error) {
	x := IdentityBigInt()
	for range MaxIterations {
		bstar := GramSchmidt(b)
		for i := range 4 {
			if dependent(bstar.Col(i).Norm2(), b.Col(i).Norm2()) {
				return Reduction{}, fmt.Errorf("%w: column %d", ErrDegenerateBasis, i)
			}
		}

		b, x = sizeReduce(b, bstar, x)

		i, ok := lovaszViolation(b, bstar)
		if !ok {
			return Reduction{Basis: b, Transform: x}, nil
		}
		b = b.swapCols(i, i+1)
		x = x.swapCols(i, i+1)
	}
	return Reduction{}, ErrNoConvergence
}

// dependent reports whether a Gram-Schmidt norm is zero up to rounding
// noise relative to the norm of its column.
func dependent(gs, col *big.Float) bool {
	if gs.Sign() == 0 {
		return true
	}
	return gs.MantExp(nil) < col.MantExp(nil)-int(col.Prec())+guardBits
}

// sizeReduce subtracts from each column the nearest lattice vector to its
// projection onto the span of the preceding columns. Gram-Schmidt vectors
// are unchanged by these operations, so bstar stays valid throughout.
func sizeReduce(b, bstar BigMat, x BigIntMat) (BigMat, BigIntMat) {
	for i := 1; i < 4; i++ {
		bi := b.Col(i)
		point, coords := NearestPlane(b, bstar, bi.Sub(bstar.Col(i)))
		if coords.isZero() {
			continue
		}
		b = b.withCol(i, bi.Sub(point))

		xi := x.Col(i)
		xc := x.MulVec(coords)
		var col BigIntVec
		for r := range 4 {
			col[r] = new(big.Int).Sub(xi[r], xc[r])
		}
		x = x.withCol(i, col)
	}
	return b, x
}

// lovaszViolation returns the first i with δ‖b*ᵢ‖² > ‖b*ᵢ₊₁ + μ b*ᵢ‖².
func lovaszViolation(b, bstar BigMat) (int, bool) {
	delta := big.NewFloat(Delta)
	for i := range 3 {
		bs := bstar.Col(i)
		n := bs.Norm2()
		mu := new(big.Float).Quo(BigDot(b.Col(i+1), bs), n)
		next := bstar.Col(i + 1).Add(bs.Scale(mu))
		if new(big.Float).Mul(delta, n).Cmp(next.Norm2()) > 0 {
			return i, true
		}
	}
	return 0, false
}
