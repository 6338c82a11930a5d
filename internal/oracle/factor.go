package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
)

// ErrFactorBudget means the factorizer gave up within its iteration
// budget. Callers searching for candidates treat it as a negative result.
var ErrFactorBudget = errors.New("oracle: factoring budget exhausted")

// DefaultFactorBudget is the default number of Pollard rho steps spent on
// one integer before giving up.
const DefaultFactorBudget = 1 << 18

// PrimePower is a prime factor with its multiplicity.
type PrimePower struct {
	P *big.Int
	M int
}

var smallPrimes = sieve(1000)

func sieve(limit int) []int64 {
	composite := make([]bool, limit+1)
	var primes []int64
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, int64(i))
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

// Factor returns the prime factorization of n > 0 in ascending order of
// primes. Small factors are removed by trial division and the rest is split
// with Brent's variant of Pollard rho. At most budget rho steps are spent
// in total.
func Factor(ctx context.Context, n *big.Int, budget int) ([]PrimePower, error) {
	if n.Sign() <= 0 {
		return nil, fmt.Errorf("oracle: cannot factor non-positive %s", n)
	}

	var primes []*big.Int
	rem := new(big.Int).Set(n)
	p := new(big.Int)
	mod := new(big.Int)
	for _, sp := range smallPrimes {
		p.SetInt64(sp)
		for mod.Mod(rem, p).Sign() == 0 {
			primes = append(primes, big.NewInt(sp))
			rem.Quo(rem, p)
		}
	}

	spent := 0
	stack := []*big.Int{rem}
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.Cmp(bigOne) == 0 {
			continue
		}
		if m.ProbablyPrime(20) {
			primes = append(primes, m)
			continue
		}

		var d *big.Int
		for c := int64(1); d == nil; c++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			var used int
			d, used = brent(m, c, budget-spent)
			spent += used
			if spent >= budget && d == nil {
				return nil, ErrFactorBudget
			}
		}
		stack = append(stack, d, new(big.Int).Quo(m, d))
	}

	sort.Slice(primes, func(i, j int) bool { return primes[i].Cmp(primes[j]) < 0 })
	var out []PrimePower
	for _, q := range primes {
		if len(out) > 0 && out[len(out)-1].P.Cmp(q) == 0 {
			out[len(out)-1].M++
			continue
		}
		out = append(out, PrimePower{P: q, M: 1})
	}
	return out, nil
}

var bigOne = big.NewInt(1)

// brent looks for a non-trivial factor of the odd composite n using the
// map x ↦ x² + c. It returns nil when this c fails or the step allowance
// runs out, together with the number of steps used.
func brent(n *big.Int, c int64, allowance int) (*big.Int, int) {
	const batch = 128
	cc := big.NewInt(c)
	f := func(v *big.Int) *big.Int {
		w := new(big.Int).Mul(v, v)
		w.Add(w, cc)
		return w.Mod(w, n)
	}

	y := big.NewInt(2)
	x := new(big.Int)
	ys := new(big.Int)
	q := big.NewInt(1)
	g := big.NewInt(1)
	diff := new(big.Int)
	steps := 0

	for r := 1; g.Cmp(bigOne) == 0; r *= 2 {
		x.Set(y)
		for range r {
			y = f(y)
		}
		steps += r
		for k := 0; k < r && g.Cmp(bigOne) == 0; k += batch {
			ys.Set(y)
			for range min(batch, r-k) {
				y = f(y)
				diff.Sub(x, y)
				q.Mul(q, diff.Abs(diff)).Mod(q, n)
			}
			g.GCD(nil, nil, q, n)
			steps += min(batch, r-k)
		}
		if steps >= allowance && g.Cmp(bigOne) == 0 {
			return nil, steps
		}
	}

	if g.Cmp(n) == 0 {
		// The batch overshot; step through it one value at a time.
		for range batch {
			ys = f(ys)
			diff.Sub(x, ys)
			g.GCD(nil, nil, diff.Abs(diff), n)
			if g.Cmp(bigOne) != 0 {
				break
			}
		}
	}
	if g.Cmp(n) == 0 || g.Cmp(bigOne) == 0 {
		return nil, steps
	}
	return new(big.Int).Set(g), steps
}
