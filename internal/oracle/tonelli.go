package oracle

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNotResidue is returned by SqrtMod when n has no square root modulo p.
// Callers are expected to rule this out with Legendre first, so seeing it
// means a broken precondition.
var ErrNotResidue = errors.New("oracle: not a quadratic residue")

// Legendre returns the Legendre symbol (n/p) for an odd prime p: 0 when p
// divides n, 1 for a non-zero residue and −1 otherwise.
func Legendre(n, p *big.Int) int {
	return big.Jacobi(new(big.Int).Mod(n, p), p)
}

// SqrtMod returns r with r² ≡ n (mod p) for a prime p using Tonelli–Shanks.
func SqrtMod(n, p *big.Int) (*big.Int, error) {
	a := new(big.Int).Mod(n, p)
	if a.Sign() == 0 {
		return a, nil
	}
	if p.Cmp(big.NewInt(2)) == 0 {
		return a, nil
	}
	if Legendre(a, p) != 1 {
		return nil, fmt.Errorf("%w: %s mod %s", ErrNotResidue, n, p)
	}

	// p − 1 = q·2ˢ with q odd.
	q := new(big.Int).Sub(p, bigOne)
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}

	if s == 1 {
		e := new(big.Int).Add(p, bigOne)
		e.Rsh(e, 2)
		return new(big.Int).Exp(a, e, p), nil
	}

	z := big.NewInt(2)
	for Legendre(z, p) != -1 {
		z.Add(z, bigOne)
	}

	m := s
	c := new(big.Int).Exp(z, q, p)
	t := new(big.Int).Exp(a, q, p)
	e := new(big.Int).Add(q, bigOne)
	r := new(big.Int).Exp(a, e.Rsh(e, 1), p)

	for t.Cmp(bigOne) != 0 {
		// Least i in (0, m) with t^(2^i) = 1.
		i := 0
		tt := new(big.Int).Set(t)
		for tt.Cmp(bigOne) != 0 {
			tt.Mul(tt, tt).Mod(tt, p)
			i++
			if i == m {
				return nil, fmt.Errorf("%w: %s mod %s", ErrNotResidue, n, p)
			}
		}

		b := new(big.Int).Set(c)
		for range m - i - 1 {
			b.Mul(b, b).Mod(b, p)
		}
		m = i
		c.Mul(b, b).Mod(c, p)
		t.Mul(t, c).Mod(t, p)
		r.Mul(r, b).Mod(r, p)
	}
	return r, nil
}
