package oracle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/roach88/cliffordt/internal/ring"
)

// ZOmega is an element c0 + c1·ω + c2·ω² + c3·ω³ of Z[ω], ω = e^{iπ/4}.
// Values are immutable.
type ZOmega struct {
	c [4]*big.Int
}

// NewZOmega returns c0 + c1·ω + c2·ω² + c3·ω³.
func NewZOmega(c0, c1, c2, c3 int64) ZOmega {
	return ZOmega{c: [4]*big.Int{big.NewInt(c0), big.NewInt(c1), big.NewInt(c2), big.NewInt(c3)}}
}

// ZOmegaFromZRoot2 embeds a + b√2 using √2 = ω − ω³.
func ZOmegaFromZRoot2(x ring.ZRoot2) ZOmega {
	b := x.B()
	return ZOmega{c: [4]*big.Int{x.A(), new(big.Int).Set(b), new(big.Int), new(big.Int).Neg(b)}}
}

// ZOmegaFromInt embeds an integer.
func ZOmegaFromInt(n *big.Int) ZOmega {
	return ZOmega{c: [4]*big.Int{new(big.Int).Set(n), new(big.Int), new(big.Int), new(big.Int)}}
}

var (
	zomegaOne   = NewZOmega(1, 0, 0, 0)
	zomegaI     = NewZOmega(0, 0, 1, 0) // ω² = i
	zomegaSqrtM = NewZOmega(0, 1, 0, 1) // ω + ω³ = i√2
)

func (z ZOmega) coef(i int) *big.Int {
	if z.c[i] == nil {
		return new(big.Int)
	}
	return z.c[i]
}

func (z ZOmega) Add(w ZOmega) ZOmega {
	var out ZOmega
	for i := range out.c {
		out.c[i] = new(big.Int).Add(z.coef(i), w.coef(i))
	}
	return out
}

func (z ZOmega) Sub(w ZOmega) ZOmega {
	var out ZOmega
	for i := range out.c {
		out.c[i] = new(big.Int).Sub(z.coef(i), w.coef(i))
	}
	return out
}

// Mul multiplies using ω⁴ = −1.
func (z ZOmega) Mul(w ZOmega) ZOmega {
	var out ZOmega
	for i := range out.c {
		out.c[i] = new(big.Int)
	}
	t := new(big.Int)
	for i := range 4 {
		for j := range 4 {
			t.Mul(z.coef(i), w.coef(j))
			if i+j < 4 {
				out.c[i+j].Add(out.c[i+j], t)
			} else {
				out.c[i+j-4].Sub(out.c[i+j-4], t)
			}
		}
	}
	return out
}

// Pow returns zⁿ for n >= 0.
func (z ZOmega) Pow(n int) ZOmega {
	result := zomegaOne
	base := z
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// Conj is complex conjugation, ωʲ ↦ ω⁻ʲ.
func (z ZOmega) Conj() ZOmega {
	return ZOmega{c: [4]*big.Int{
		new(big.Int).Set(z.coef(0)),
		new(big.Int).Neg(z.coef(3)),
		new(big.Int).Neg(z.coef(2)),
		new(big.Int).Neg(z.coef(1)),
	}}
}

// Galois applies √2 ↦ −√2, which sends ω to ω⁵ = −ω.
func (z ZOmega) Galois() ZOmega {
	return ZOmega{c: [4]*big.Int{
		new(big.Int).Set(z.coef(0)),
		new(big.Int).Neg(z.coef(1)),
		new(big.Int).Set(z.coef(2)),
		new(big.Int).Neg(z.coef(3)),
	}}
}

func (z ZOmega) IsZero() bool {
	for i := range 4 {
		if z.coef(i).Sign() != 0 {
			return false
		}
	}
	return true
}

// NormSq returns z·z̄ = |z|² as an element of Z[√2].
func (z ZOmega) NormSq() ring.ZRoot2 {
	p := z.Mul(z.Conj())
	// p = e + f·ω − f·ω³ = e + f√2.
	return ring.ZRoot2FromBig(p.coef(0), p.coef(1))
}

// Norm returns the absolute norm of z, the product of its four
// embeddings. It is a non-negative integer.
func (z ZOmega) Norm() *big.Int {
	return z.NormSq().Norm()
}

// cofactor returns z̄·σ(z)·σ(z̄), so that z·cofactor = Norm(z).
func (z ZOmega) cofactor() ZOmega {
	g := z.Galois()
	return z.Conj().Mul(g).Mul(g.Conj())
}

// DivMod divides with nearest-coordinate rounding, so that
// Norm(r) < Norm(y) for the remainder. y must be non-zero.
func (z ZOmega) DivMod(y ZOmega) (q, r ZOmega) {
	n := y.Norm()
	num := z.Mul(y.cofactor())
	for i := range q.c {
		q.c[i] = roundQuo(num.coef(i), n)
	}
	return q, z.Sub(q.Mul(y))
}

var errGCDDiverged = errors.New("oracle: Z[ω] gcd did not terminate")

// maxGCDSteps bounds the Euclidean algorithm; the norm at least halves
// every few steps, so honest inputs stay far below it.
const maxGCDSteps = 4096

// GCDZOmega returns a greatest common divisor of a and b up to a unit.
func GCDZOmega(a, b ZOmega) (ZOmega, error) {
	for range maxGCDSteps {
		if b.IsZero() {
			return a, nil
		}
		_, r := a.DivMod(b)
		a, b = b, r
	}
	return ZOmega{}, errGCDDiverged
}

// Complex converts z to the complex-over-local representation:
// re = c0 + (c1 − c3)/√2, im = c2 + (c1 + c3)/√2.
func (z ZOmega) Complex() ring.Complex {
	re := ring.NewLocal(ring.ZRoot2FromBig(new(big.Int).Sub(z.coef(1), z.coef(3)), z.coef(0)), 1)
	im := ring.NewLocal(ring.ZRoot2FromBig(new(big.Int).Add(z.coef(1), z.coef(3)), z.coef(2)), 1)
	return ring.NewComplex(re, im)
}

func (z ZOmega) String() string {
	return fmt.Sprintf("%s + %s·ω + %s·ω² + %s·ω³", z.coef(0), z.coef(1), z.coef(2), z.coef(3))
}

// roundQuo returns the integer nearest to p/n, with halves rounded up.
func roundQuo(p, n *big.Int) *big.Int {
	p = new(big.Int).Set(p)
	n = new(big.Int).Set(n)
	if n.Sign() < 0 {
		p.Neg(p)
		n.Neg(n)
	}
	num := new(big.Int).Lsh(p, 1)
	num.Add(num, n)
	den := new(big.Int).Lsh(n, 1)
	return num.Div(num, den)
}
