package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/roach88/cliffordt/internal/ring"
)

// InvariantError reports a broken internal precondition inside the oracle.
// It is never used for "no decomposition exists".
type InvariantError struct {
	Op      string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("oracle: %s: %s", e.Op, e.Message)
}

// IsInvariantError reports whether err wraps an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// Oracle decides and constructs two-square decompositions over the local
// ring. It holds no mutable state and is safe for concurrent use.
type Oracle struct {
	factorBudget int
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithFactorBudget sets the Pollard rho step budget per factorization.
func WithFactorBudget(steps int) Option {
	return func(o *Oracle) {
		if steps > 0 {
			o.factorBudget = steps
		}
	}
}

// New creates an Oracle.
func New(opts ...Option) *Oracle {
	o := &Oracle{factorBudget: DefaultFactorBudget}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var (
	lambda    = ring.NewZRoot2(1, 1)  // 1 + √2
	lambdaInv = ring.NewZRoot2(-1, 1) // √2 − 1
)

// IsDoublyPositive reports whether x and its Galois conjugate are both
// non-negative. Every sum of two squares in the local ring has this
// property, so failing it rules a candidate out without factoring.
func IsDoublyPositive(x ring.Local) bool {
	return x.Sign() >= 0 && x.Conj().Sign() >= 0
}

// SumOfTwoSquares finds a and b with a² + b² = x. ok is false when no
// decomposition exists or the factorizer gave up; err is reserved for
// invariant violations and context cancellation.
func (o *Oracle) SumOfTwoSquares(ctx context.Context, x ring.Local) (a, b ring.Local, ok bool, err error) {
	zero := ring.LocalFromInt(0)
	if x.IsZero() {
		return zero, zero, true, nil
	}
	if !IsDoublyPositive(x) {
		return zero, zero, false, nil
	}

	// Write x = ξ·|w₀|² with ξ in Z[√2]. An odd exponent uses
	// √2 = λ⁻¹·|1+ω|².
	k := x.Exp()
	xi := x.Num()
	var w0 ring.Complex
	if k%2 == 0 {
		w0 = ring.NewComplex(ring.NewLocal(ring.NewZRoot2(1, 0), k/2), zero)
	} else {
		xi = xi.Mul(lambdaInv)
		scale := ring.NewComplex(ring.NewLocal(ring.NewZRoot2(1, 0), (k+1)/2), zero)
		w0 = ring.ComplexOne().Add(ring.Omega()).Mul(scale)
	}

	z, found, err := o.solveNorm(ctx, xi)
	if err != nil || !found {
		return zero, zero, false, err
	}

	w := z.Complex().Mul(w0)
	if !w.NormSq().Equal(x) {
		return zero, zero, false, &InvariantError{
			Op:      "SumOfTwoSquares",
			Message: fmt.Sprintf("constructed %s² + %s² does not equal %s", w.Re, w.Im, x),
		}
	}
	return w.Re, w.Im, true, nil
}

// solveNorm finds z in Z[ω] with |z|² = ξ for a doubly positive ξ.
func (o *Oracle) solveNorm(ctx context.Context, xi ring.ZRoot2) (ZOmega, bool, error) {
	n := new(big.Int).Abs(xi.Norm())
	factors, err := Factor(ctx, n, o.factorBudget)
	if errors.Is(err, ErrFactorBudget) {
		slog.Debug("factoring budget exhausted", "norm_bits", n.BitLen())
		return ZOmega{}, false, nil
	}
	if err != nil {
		return ZOmega{}, false, err
	}

	rem := xi
	z := zomegaOne
	for _, pp := range factors {
		var (
			zp  ZOmega
			ok  bool
			err error
		)
		rem, zp, ok, err = primeContribution(rem, pp)
		if err != nil || !ok {
			return ZOmega{}, false, err
		}
		z = z.Mul(zp)
	}

	if new(big.Int).Abs(rem.Norm()).Cmp(bigOne) != 0 {
		return ZOmega{}, false, &InvariantError{Op: "solveNorm", Message: fmt.Sprintf("cofactor %s is not a unit", rem)}
	}

	// |z|² = ξ·u for a doubly positive unit u = λ^(2j); scale z by λ^(−j).
	u, exact := z.NormSq().ExactQuo(xi)
	if !exact {
		return ZOmega{}, false, &InvariantError{Op: "solveNorm", Message: fmt.Sprintf("%s does not divide |z|²", xi)}
	}
	j, err := logLambdaSquared(u)
	if err != nil {
		return ZOmega{}, false, err
	}
	switch {
	case j > 0:
		z = z.Mul(ZOmegaFromZRoot2(lambdaInv.Pow(j)))
	case j < 0:
		z = z.Mul(ZOmegaFromZRoot2(lambda.Pow(-j)))
	}
	return z, true, nil
}

// primeContribution divides out of rem every factor lying over the
// rational prime pp.P and returns a Z[ω] element whose squared modulus
// equals the removed part up to a unit.
func primeContribution(rem ring.ZRoot2, pp PrimePower) (ring.ZRoot2, ZOmega, bool, error) {
	p := pp.P
	switch new(big.Int).Mod(p, big.NewInt(8)).Int64() {
	case 2:
		// Ramified: √2 = λ⁻¹·|1+ω|².
		for range pp.M {
			if !rem.IsDivisibleBySqrt2() {
				return rem, ZOmega{}, false, &InvariantError{Op: "primeContribution", Message: "√2 does not divide the remainder"}
			}
			rem = rem.DivSqrt2()
		}
		return rem, NewZOmega(1, 1, 0, 0).Pow(pp.M), true, nil

	case 3, 5:
		// Inert in Z[√2]: p itself divides ξ with half the multiplicity.
		if pp.M%2 != 0 {
			return rem, ZOmega{}, false, nil
		}
		pz := ring.ZRoot2FromBig(p, big.NewInt(0))
		for range pp.M / 2 {
			q, ok := rem.ExactQuo(pz)
			if !ok {
				return rem, ZOmega{}, false, &InvariantError{Op: "primeContribution", Message: fmt.Sprintf("%s does not divide the remainder", p)}
			}
			rem = q
		}
		zp, err := inertFactor(p)
		if err != nil {
			return rem, ZOmega{}, false, err
		}
		return rem, zp.Pow(pp.M / 2), true, nil

	default:
		// Split: p = ±π·π•.
		s, err := SqrtMod(big.NewInt(2), p)
		if err != nil {
			return rem, ZOmega{}, false, err
		}
		pi := ring.GCD(ring.ZRoot2FromBig(p, big.NewInt(0)), ring.ZRoot2FromBig(s, big.NewInt(1)))
		piConj := pi.Conj()

		var e1, e2 int
		rem, e1 = divideOut(rem, pi)
		rem, e2 = divideOut(rem, piConj)
		if e1+e2 != pp.M {
			return rem, ZOmega{}, false, &InvariantError{
				Op:      "primeContribution",
				Message: fmt.Sprintf("multiplicities %d+%d of factors over %s do not match %d", e1, e2, p, pp.M),
			}
		}

		if p.Bit(1) == 1 && p.Bit(2) == 1 {
			// p ≡ 7 (mod 8): π stays prime in Z[ω] and must appear squared.
			if e1%2 != 0 || e2%2 != 0 {
				return rem, ZOmega{}, false, nil
			}
			sq := pi.Pow(e1 / 2).Mul(piConj.Pow(e2 / 2))
			return rem, ZOmegaFromZRoot2(sq), true, nil
		}

		z1, err := splitFactor(pi, p)
		if err != nil {
			return rem, ZOmega{}, false, err
		}
		z2, err := splitFactor(piConj, p)
		if err != nil {
			return rem, ZOmega{}, false, err
		}
		return rem, z1.Pow(e1).Mul(z2.Pow(e2)), true, nil
	}
}

func divideOut(x, d ring.ZRoot2) (ring.ZRoot2, int) {
	e := 0
	for {
		q, ok := x.ExactQuo(d)
		if !ok {
			return x, e
		}
		x = q
		e++
	}
}

// inertFactor returns z with |z|² = p up to a unit, for p ≡ 3 or 5 (mod 8).
func inertFactor(p *big.Int) (ZOmega, error) {
	root, gen := big.NewInt(-1), zomegaI
	if p.Bit(2) == 0 {
		// p ≡ 3 (mod 8): use √−2.
		root, gen = big.NewInt(-2), zomegaSqrtM
	}
	h, err := SqrtMod(root, p)
	if err != nil {
		return ZOmega{}, err
	}
	return GCDZOmega(ZOmegaFromInt(p), ZOmegaFromInt(h).Sub(gen))
}

// splitFactor returns z with |z|² = π up to a unit, for a prime π of
// Z[√2] over p ≡ 1 (mod 8).
func splitFactor(pi ring.ZRoot2, p *big.Int) (ZOmega, error) {
	h, err := SqrtMod(big.NewInt(-1), p)
	if err != nil {
		return ZOmega{}, err
	}
	return GCDZOmega(ZOmegaFromZRoot2(pi), ZOmegaFromInt(h).Sub(zomegaI))
}

// logLambdaSquared returns j with u = λ^(2j) for a doubly positive unit u.
func logLambdaSquared(u ring.ZRoot2) (int, error) {
	lambda2 := lambda.Mul(lambda)
	lambda2Inv := lambdaInv.Mul(lambdaInv)
	one := ring.NewZRoot2(1, 0)
	j := 0
	for range 1 << 16 {
		if u.IsOne() {
			return j, nil
		}
		if u.Sub(one).Sign() > 0 {
			u = u.Mul(lambda2Inv)
			j++
		} else {
			u = u.Mul(lambda2)
			j--
		}
	}
	return 0, &InvariantError{Op: "logLambdaSquared", Message: fmt.Sprintf("%s is not an even power of 1+√2", u)}
}
