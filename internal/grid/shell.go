package grid

import (
	"math"

	"github.com/roach88/cliffordt/internal/lattice"
)

// shell returns every integer vector with squared norm n. Magnitudes are
// visited in nested ascending loops, and each magnitude pattern is expanded
// over the sign choices of its nonzero positions in mask order.
func shell(n int) []lattice.IntVec4 {
	var out []lattice.IntVec4
	for i1 := int64(0); i1*i1 <= int64(n); i1++ {
		r1 := int64(n) - i1*i1
		for i2 := int64(0); i2*i2 <= r1; i2++ {
			r2 := r1 - i2*i2
			for i3 := int64(0); i3*i3 <= r2; i3++ {
				r3 := r2 - i3*i3
				i4 := isqrt(r3)
				if i4*i4 != r3 {
					continue
				}
				out = appendSigns(out, lattice.IntVec4{i1, i2, i3, i4})
			}
		}
	}
	return out
}

func appendSigns(out []lattice.IntVec4, mag lattice.IntVec4) []lattice.IntVec4 {
	var nonzero []int
	for i, m := range mag {
		if m != 0 {
			nonzero = append(nonzero, i)
		}
	}
	for mask := 0; mask < 1<<len(nonzero); mask++ {
		v := mag
		for bit, pos := range nonzero {
			if mask&(1<<bit) != 0 {
				v[pos] = -v[pos]
			}
		}
		out = append(out, v)
	}
	return out
}

func isqrt(n int64) int64 {
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
