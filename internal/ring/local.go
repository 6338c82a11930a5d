package ring

import (
	"fmt"
	"math"
	"math/big"
)

// Local is an element n·√2⁻ᵏ of the localization of Z[√2] at √2.
//
// Values are always in reduced form: √2 does not divide n unless n is zero,
// and zero is stored with k = 0. Reduced forms are unique, so Equal is a
// component-wise comparison.
type Local struct {
	num ZRoot2
	exp int
}

// NewLocal returns the reduced form of n·√2⁻ᵏ.
func NewLocal(n ZRoot2, k int) Local {
	return Local{num: n, exp: k}.reduce()
}

// LocalFromInt returns the integer v as a local element.
func LocalFromInt(v int64) Local {
	return NewLocal(NewZRoot2(v, 0), 0)
}

// LocalFromZRoot2 embeds x with exponent zero.
func LocalFromZRoot2(x ZRoot2) Local {
	return NewLocal(x, 0)
}

func (x Local) reduce() Local {
	n := x.num
	k := x.exp
	if n.IsZero() {
		return Local{num: NewZRoot2(0, 0), exp: 0}
	}

	// Strip whole powers of two from both components at once, then at
	// most one further factor of √2.
	shift := commonTrailingZeros(n.ra(), n.rb())
	if shift > 0 {
		n = ZRoot2{a: new(big.Int).Rsh(n.ra(), shift), b: new(big.Int).Rsh(n.rb(), shift)}
		k -= 2 * int(shift)
	}
	for n.IsDivisibleBySqrt2() {
		n = n.DivSqrt2()
		k--
	}
	return Local{num: n, exp: k}
}

func commonTrailingZeros(a, b *big.Int) uint {
	switch {
	case a.Sign() == 0:
		return b.TrailingZeroBits()
	case b.Sign() == 0:
		return a.TrailingZeroBits()
	}
	return min(a.TrailingZeroBits(), b.TrailingZeroBits())
}

// Num returns the reduced numerator.
func (x Local) Num() ZRoot2 { return x.num }

// Exp returns the reduced denominator exponent k.
func (x Local) Exp() int { return x.exp }

// align returns numerators of x and y over the common denominator √2^max(kx,ky).
func align(x, y Local) (ZRoot2, ZRoot2, int) {
	if x.exp >= y.exp {
		return x.num, y.num.MulSqrt2Pow(x.exp - y.exp), x.exp
	}
	return x.num.MulSqrt2Pow(y.exp - x.exp), y.num, y.exp
}

func (x Local) Add(y Local) Local {
	a, b, k := align(x, y)
	return NewLocal(a.Add(b), k)
}

func (x Local) Sub(y Local) Local {
	a, b, k := align(x, y)
	return NewLocal(a.Sub(b), k)
}

func (x Local) Neg() Local {
	return Local{num: x.num.Neg(), exp: x.exp}
}

func (x Local) Mul(y Local) Local {
	return NewLocal(x.num.Mul(y.num), x.exp+y.exp)
}

// DivSqrt2 returns x/√2.
func (x Local) DivSqrt2() Local {
	return NewLocal(x.num, x.exp+1)
}

// MulSqrt2 returns x·√2.
func (x Local) MulSqrt2() Local {
	return NewLocal(x.num, x.exp-1)
}

// Conj applies the Galois automorphism √2 ↦ −√2. The denominator is
// conjugated too, so an odd exponent flips the sign of the numerator.
func (x Local) Conj() Local {
	n := x.num.Conj()
	if x.exp%2 != 0 {
		n = n.Neg()
	}
	return Local{num: n, exp: x.exp}
}

func (x Local) IsZero() bool { return x.num.IsZero() }

func (x Local) IsOne() bool { return x.exp == 0 && x.num.IsOne() }

func (x Local) Equal(y Local) bool {
	return x.exp == y.exp && x.num.Equal(y.num)
}

// Sign returns the exact sign of x as a real number.
func (x Local) Sign() int { return x.num.Sign() }

// IsIntegral reports whether x lies in Z[√2].
func (x Local) IsIntegral() bool { return x.exp <= 0 }

// ZRoot2 returns x as an element of Z[√2]. The second result is false when
// x has a positive denominator exponent.
func (x Local) ZRoot2() (ZRoot2, bool) {
	if x.exp > 0 {
		return ZRoot2{}, false
	}
	return x.num.MulSqrt2Pow(-x.exp), true
}

// Float64 evaluates x.
func (x Local) Float64() float64 {
	v := x.num.Float64()
	half := x.exp / 2
	v = math.Ldexp(v, -half)
	switch x.exp - 2*half {
	case 1:
		v /= math.Sqrt2
	case -1:
		v *= math.Sqrt2
	}
	return v
}

func (x Local) String() string {
	if x.exp == 0 {
		return x.num.String()
	}
	return fmt.Sprintf("(%s)/√2^%d", x.num, x.exp)
}
