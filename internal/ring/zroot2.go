package ring

import (
	"fmt"
	"math"
	"math/big"
)

// ZRoot2 is an element a + b√2 of Z[√2].
//
// Values are immutable: every operation allocates fresh integers and never
// mutates an operand, so ZRoot2 can be copied and shared freely. The zero
// value is the ring zero.
type ZRoot2 struct {
	a, b *big.Int
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// NewZRoot2 returns a + b√2.
func NewZRoot2(a, b int64) ZRoot2 {
	return ZRoot2{a: big.NewInt(a), b: big.NewInt(b)}
}

// ZRoot2FromBig returns a + b√2, copying both integers.
func ZRoot2FromBig(a, b *big.Int) ZRoot2 {
	return ZRoot2{a: new(big.Int).Set(a), b: new(big.Int).Set(b)}
}

func (x ZRoot2) ra() *big.Int {
	if x.a == nil {
		return bigZero
	}
	return x.a
}

func (x ZRoot2) rb() *big.Int {
	if x.b == nil {
		return bigZero
	}
	return x.b
}

// A returns a copy of the rational component.
func (x ZRoot2) A() *big.Int { return new(big.Int).Set(x.ra()) }

// B returns a copy of the √2 component.
func (x ZRoot2) B() *big.Int { return new(big.Int).Set(x.rb()) }

func (x ZRoot2) Add(y ZRoot2) ZRoot2 {
	return ZRoot2{
		a: new(big.Int).Add(x.ra(), y.ra()),
		b: new(big.Int).Add(x.rb(), y.rb()),
	}
}

func (x ZRoot2) Sub(y ZRoot2) ZRoot2 {
	return ZRoot2{
		a: new(big.Int).Sub(x.ra(), y.ra()),
		b: new(big.Int).Sub(x.rb(), y.rb()),
	}
}

func (x ZRoot2) Neg() ZRoot2 {
	return ZRoot2{a: new(big.Int).Neg(x.ra()), b: new(big.Int).Neg(x.rb())}
}

// Mul returns (a1 + b1√2)(a2 + b2√2) = (a1a2 + 2b1b2) + (a1b2 + a2b1)√2.
func (x ZRoot2) Mul(y ZRoot2) ZRoot2 {
	a := new(big.Int).Mul(x.ra(), y.ra())
	bb := new(big.Int).Mul(x.rb(), y.rb())
	a.Add(a, bb.Lsh(bb, 1))

	b := new(big.Int).Mul(x.ra(), y.rb())
	b.Add(b, new(big.Int).Mul(x.rb(), y.ra()))
	return ZRoot2{a: a, b: b}
}

// MulInt multiplies both components by n.
func (x ZRoot2) MulInt(n *big.Int) ZRoot2 {
	return ZRoot2{a: new(big.Int).Mul(x.ra(), n), b: new(big.Int).Mul(x.rb(), n)}
}

// Conj is the Galois conjugate a − b√2.
func (x ZRoot2) Conj() ZRoot2 {
	return ZRoot2{a: new(big.Int).Set(x.ra()), b: new(big.Int).Neg(x.rb())}
}

// Norm returns a² − 2b², which may be negative.
func (x ZRoot2) Norm() *big.Int {
	n := new(big.Int).Mul(x.ra(), x.ra())
	bb := new(big.Int).Mul(x.rb(), x.rb())
	return n.Sub(n, bb.Lsh(bb, 1))
}

func (x ZRoot2) IsZero() bool {
	return x.ra().Sign() == 0 && x.rb().Sign() == 0
}

func (x ZRoot2) IsOne() bool {
	return x.ra().Cmp(bigOne) == 0 && x.rb().Sign() == 0
}

func (x ZRoot2) Equal(y ZRoot2) bool {
	return x.ra().Cmp(y.ra()) == 0 && x.rb().Cmp(y.rb()) == 0
}

// IsDivisibleBySqrt2 reports whether √2 divides x, which holds iff a is even.
func (x ZRoot2) IsDivisibleBySqrt2() bool {
	return x.ra().Bit(0) == 0
}

// DivSqrt2 returns x/√2 = b + (a/2)√2. The caller must ensure
// IsDivisibleBySqrt2.
func (x ZRoot2) DivSqrt2() ZRoot2 {
	return ZRoot2{a: new(big.Int).Set(x.rb()), b: new(big.Int).Rsh(x.ra(), 1)}
}

// MulSqrt2 returns x·√2 = 2b + a√2.
func (x ZRoot2) MulSqrt2() ZRoot2 {
	return ZRoot2{a: new(big.Int).Lsh(x.rb(), 1), b: new(big.Int).Set(x.ra())}
}

// MulSqrt2Pow returns x·√2ⁿ for n >= 0.
func (x ZRoot2) MulSqrt2Pow(n int) ZRoot2 {
	r := ZRoot2{a: new(big.Int).Lsh(x.ra(), uint(n/2)), b: new(big.Int).Lsh(x.rb(), uint(n/2))}
	if n%2 == 1 {
		r = r.MulSqrt2()
	}
	return r
}

// Pow returns xⁿ for n >= 0.
func (x ZRoot2) Pow(n int) ZRoot2 {
	result := NewZRoot2(1, 0)
	base := x
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// Sign returns the exact sign of a + b√2 as a real number.
func (x ZRoot2) Sign() int {
	sa, sb := x.ra().Sign(), x.rb().Sign()
	switch {
	case sb == 0:
		return sa
	case sa == 0, sa == sb:
		return sb
	}
	// Opposite signs: the larger of a² and 2b² decides. They are never
	// equal because √2 is irrational.
	aa := new(big.Int).Mul(x.ra(), x.ra())
	bb := new(big.Int).Mul(x.rb(), x.rb())
	if aa.Cmp(bb.Lsh(bb, 1)) > 0 {
		return sa
	}
	return sb
}

// DivMod performs Euclidean division, returning q and r with x = q·y + r
// and |N(r)| < |N(y)|. The quotient rounds x·ȳ/N(y) to the nearest
// integer in each component. y must be non-zero.
func (x ZRoot2) DivMod(y ZRoot2) (q, r ZRoot2) {
	n := y.Norm()
	if n.Sign() == 0 {
		panic("ring: division by zero in Z[√2]")
	}
	num := x.Mul(y.Conj())
	q = ZRoot2{a: roundQuo(num.ra(), n), b: roundQuo(num.rb(), n)}
	r = x.Sub(q.Mul(y))
	return q, r
}

// ExactQuo returns x/y when y divides x in Z[√2].
func (x ZRoot2) ExactQuo(y ZRoot2) (ZRoot2, bool) {
	if y.IsZero() {
		return ZRoot2{}, false
	}
	q, r := x.DivMod(y)
	if !r.IsZero() {
		return ZRoot2{}, false
	}
	return q, true
}

// GCD returns a greatest common divisor of x and y, determined up to a unit.
func GCD(x, y ZRoot2) ZRoot2 {
	for !y.IsZero() {
		_, r := x.DivMod(y)
		x, y = y, r
	}
	return x
}

// roundQuo returns the integer nearest to p/n, with halves rounded up.
func roundQuo(p, n *big.Int) *big.Int {
	p = new(big.Int).Set(p)
	n = new(big.Int).Set(n)
	if n.Sign() < 0 {
		p.Neg(p)
		n.Neg(n)
	}
	// floor((2p + n) / 2n); big.Int.Div floors for positive divisors.
	num := new(big.Int).Lsh(p, 1)
	num.Add(num, n)
	den := new(big.Int).Lsh(n, 1)
	return num.Div(num, den)
}

// Float64 evaluates a + b√2.
func (x ZRoot2) Float64() float64 {
	a, _ := new(big.Float).SetInt(x.ra()).Float64()
	b, _ := new(big.Float).SetInt(x.rb()).Float64()
	return a + b*math.Sqrt2
}

func (x ZRoot2) String() string {
	b := x.rb()
	if b.Sign() < 0 {
		return fmt.Sprintf("%s-%s√2", x.ra(), new(big.Int).Neg(b))
	}
	return fmt.Sprintf("%s+%s√2", x.ra(), b)
}
