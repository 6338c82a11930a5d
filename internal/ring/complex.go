package ring

import (
	"fmt"
	"math/cmplx"
)

// Complex is re + i·im with both parts in the local ring. It is the
// coefficient ring of Clifford+T matrix entries.
type Complex struct {
	Re, Im Local
}

var (
	zeroLocal = LocalFromInt(0)

	// invSqrt2 is 1/√2.
	invSqrt2 = NewLocal(NewZRoot2(1, 0), 1)
)

// ComplexZero and ComplexOne are the additive and multiplicative identities.
func ComplexZero() Complex { return Complex{Re: zeroLocal, Im: zeroLocal} }
func ComplexOne() Complex  { return Complex{Re: LocalFromInt(1), Im: zeroLocal} }

// Omega returns ω = (1+i)/√2, the primitive 8th root of unity.
func Omega() Complex { return Complex{Re: invSqrt2, Im: invSqrt2} }

// NewComplex builds re + i·im.
func NewComplex(re, im Local) Complex { return Complex{Re: re, Im: im} }

func (z Complex) Add(w Complex) Complex {
	return Complex{Re: z.Re.Add(w.Re), Im: z.Im.Add(w.Im)}
}

func (z Complex) Sub(w Complex) Complex {
	return Complex{Re: z.Re.Sub(w.Re), Im: z.Im.Sub(w.Im)}
}

func (z Complex) Neg() Complex {
	return Complex{Re: z.Re.Neg(), Im: z.Im.Neg()}
}

func (z Complex) Mul(w Complex) Complex {
	return Complex{
		Re: z.Re.Mul(w.Re).Sub(z.Im.Mul(w.Im)),
		Im: z.Re.Mul(w.Im).Add(z.Im.Mul(w.Re)),
	}
}

// Conj is complex conjugation.
func (z Complex) Conj() Complex {
	return Complex{Re: z.Re, Im: z.Im.Neg()}
}

// Galois applies √2 ↦ −√2 to both parts, giving the second embedding z•.
func (z Complex) Galois() Complex {
	return Complex{Re: z.Re.Conj(), Im: z.Im.Conj()}
}

// NormSq returns |z|² = re² + im².
func (z Complex) NormSq() Local {
	return z.Re.Mul(z.Re).Add(z.Im.Mul(z.Im))
}

// MulOmega returns z·ω = ((re − im) + i(re + im))/√2.
func (z Complex) MulOmega() Complex {
	return Complex{
		Re: z.Re.Sub(z.Im).DivSqrt2(),
		Im: z.Re.Add(z.Im).DivSqrt2(),
	}
}

// MulOmegaPow returns z·ωⁿ for any integer n.
func (z Complex) MulOmegaPow(n int) Complex {
	n = mod8(n)
	if n >= 4 {
		z = z.Neg()
		n -= 4
	}
	for range n {
		z = z.MulOmega()
	}
	return z
}

// DivSqrt2 divides both parts by √2.
func (z Complex) DivSqrt2() Complex {
	return Complex{Re: z.Re.DivSqrt2(), Im: z.Im.DivSqrt2()}
}

func (z Complex) IsZero() bool { return z.Re.IsZero() && z.Im.IsZero() }

func (z Complex) Equal(w Complex) bool {
	return z.Re.Equal(w.Re) && z.Im.Equal(w.Im)
}

// Complex128 evaluates z in the standard embedding.
func (z Complex) Complex128() complex128 {
	return complex(z.Re.Float64(), z.Im.Float64())
}

// Abs returns |z| in floating point.
func (z Complex) Abs() float64 { return cmplx.Abs(z.Complex128()) }

func (z Complex) String() string {
	return fmt.Sprintf("%s + i·%s", z.Re, z.Im)
}

func mod8(n int) int {
	n %= 8
	if n < 0 {
		n += 8
	}
	return n
}
