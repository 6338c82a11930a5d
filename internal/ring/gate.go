package ring

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"strings"
)

// Gate is an exact single-qubit Clifford+T unitary
//
//	[[u, −ω^k·t̄], [t, ω^k·ū]]
//
// with |u|² + |t|² = 1 and phase exponent k in [0, 8). The determinant is
// ω^k, so k = 0 is the special-unitary case. Gates are immutable values.
type Gate struct {
	U     Complex
	T     Complex
	Phase int
}

// Identity returns the identity gate.
func Identity() Gate {
	return Gate{U: ComplexOne(), T: ComplexZero(), Phase: 0}
}

// NewGate builds a gate and checks that |u|² + |t|² = 1 exactly.
func NewGate(u, t Complex, phase int) (Gate, error) {
	g := Gate{U: u, T: t, Phase: mod8(phase)}
	if !g.IsUnitary() {
		return Gate{}, fmt.Errorf("gate is not unitary: |u|²+|t|² = %s", u.NormSq().Add(t.NormSq()))
	}
	return g, nil
}

// IsUnitary reports whether |u|² + |t|² = 1.
func (g Gate) IsUnitary() bool {
	return g.U.NormSq().Add(g.T.NormSq()).IsOne()
}

// ApplyH returns H·g.
func (g Gate) ApplyH() Gate {
	return Gate{
		U:     g.U.Add(g.T).DivSqrt2(),
		T:     g.U.Sub(g.T).DivSqrt2(),
		Phase: mod8(g.Phase + 4),
	}
}

// ApplyT returns T·g.
func (g Gate) ApplyT() Gate {
	return g.ApplyTPow(1)
}

// ApplyTPow returns Tⁿ·g. Negative n applies the inverse.
func (g Gate) ApplyTPow(n int) Gate {
	return Gate{U: g.U, T: g.T.MulOmegaPow(n), Phase: mod8(g.Phase + n)}
}

// Mul returns the matrix product g·h.
func (g Gate) Mul(h Gate) Gate {
	// First column of g·h; the phase exponents add because det is multiplicative.
	w := g.T.Conj().MulOmegaPow(g.Phase)
	u := g.U.Mul(h.U).Sub(w.Mul(h.T))
	t := g.T.Mul(h.U).Add(g.U.Conj().MulOmegaPow(g.Phase).Mul(h.T))
	return Gate{U: u, T: t, Phase: mod8(g.Phase + h.Phase)}
}

// Inverse returns the adjoint g†.
func (g Gate) Inverse() Gate {
	return Gate{
		U:     g.U.Conj(),
		T:     g.T.MulOmegaPow(4 - g.Phase),
		Phase: mod8(-g.Phase),
	}
}

func (g Gate) Equal(h Gate) bool {
	return g.Phase == h.Phase && g.U.Equal(h.U) && g.T.Equal(h.T)
}

// SDE returns the smallest denominator exponent of |u|².
func (g Gate) SDE() int {
	return g.U.NormSq().Exp()
}

// SDEPair returns the smallest denominator exponents of |u|² and |t|².
// They agree for every unitary gate.
func (g Gate) SDEPair() (int, int) {
	return g.U.NormSq().Exp(), g.T.NormSq().Exp()
}

// Matrix evaluates g as a complex matrix.
func (g Gate) Matrix() [2][2]complex128 {
	u := g.U.Complex128()
	t := g.T.Complex128()
	ph := cmplx.Rect(1, float64(g.Phase)*math.Pi/4)
	return [2][2]complex128{
		{u, -ph * cmplx.Conj(t)},
		{t, ph * cmplx.Conj(u)},
	}
}

// Components returns the twelve integers that identify the (u, t) part of
// g: for each of u.re, u.im, t.re, t.im in that order, the two Z[√2]
// components and the denominator exponent.
func (g Gate) Components() [12]*big.Int {
	var out [12]*big.Int
	parts := [4]Local{g.U.Re, g.U.Im, g.T.Re, g.T.Im}
	for i, p := range parts {
		out[3*i] = p.num.A()
		out[3*i+1] = p.num.B()
		out[3*i+2] = big.NewInt(int64(p.exp))
	}
	return out
}

// GateFromComponents rebuilds a phase-zero gate from its twelve
// components. The components are reduced again so that non-canonical input
// still compares correctly.
func GateFromComponents(c [12]*big.Int) (Gate, error) {
	var parts [4]Local
	for i := range parts {
		if !c[3*i+2].IsInt64() {
			return Gate{}, fmt.Errorf("component %d: exponent out of range", 3*i+2)
		}
		parts[i] = NewLocal(ZRoot2FromBig(c[3*i], c[3*i+1]), int(c[3*i+2].Int64()))
	}
	return NewGate(Complex{Re: parts[0], Im: parts[1]}, Complex{Re: parts[2], Im: parts[3]}, 0)
}

// Key identifies the (u, t) part of g, ignoring the phase exponent.
func (g Gate) Key() string {
	c := g.Components()
	var b strings.Builder
	for i, v := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.String())
	}
	return b.String()
}

func (g Gate) String() string {
	return fmt.Sprintf("Gate{u: %s, t: %s, phase: ω^%d}", g.U, g.T, g.Phase)
}
