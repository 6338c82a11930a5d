package lattice

import "math/big"

// BigVec is a real 4-vector held in big.Float.
type BigVec [4]*big.Float

// BigMat is a real 4×4 matrix held in big.Float, stored row-major with
// basis vectors in the columns.
type BigMat [4][4]*big.Float

// BigIntVec is a 4-vector of lattice coordinates of any size.
type BigIntVec [4]*big.Int

// BigIntMat is an integer 4×4 matrix stored row-major.
type BigIntMat [4][4]*big.Int

// Entries are never modified once built. Every operation allocates its
// result, so values may share pointers freely. Results take the larger
// precision of their operands.

// NewBigMat converts m to big.Float at precision prec.
func NewBigMat(m Mat4, prec uint) BigMat {
	var out BigMat
	for i := range 4 {
		for j := range 4 {
			out[i][j] = new(big.Float).SetPrec(prec).SetFloat64(m[i][j])
		}
	}
	return out
}

// NewBigVec converts v to big.Float at precision prec.
func NewBigVec(v Vec4, prec uint) BigVec {
	var out BigVec
	for i := range 4 {
		out[i] = new(big.Float).SetPrec(prec).SetFloat64(v[i])
	}
	return out
}

func (v BigVec) Add(w BigVec) BigVec {
	var out BigVec
	for i := range 4 {
		out[i] = new(big.Float).Add(v[i], w[i])
	}
	return out
}

func (v BigVec) Sub(w BigVec) BigVec {
	var out BigVec
	for i := range 4 {
		out[i] = new(big.Float).Sub(v[i], w[i])
	}
	return out
}

func (v BigVec) Scale(c *big.Float) BigVec {
	var out BigVec
	for i := range 4 {
		out[i] = new(big.Float).Mul(v[i], c)
	}
	return out
}

// BigDot returns the inner product of v and w.
func BigDot(v, w BigVec) *big.Float {
	sum := new(big.Float).Mul(v[0], w[0])
	for i := 1; i < 4; i++ {
		sum.Add(sum, new(big.Float).Mul(v[i], w[i]))
	}
	return sum
}

// Norm2 returns the squared Euclidean norm of v.
func (v BigVec) Norm2() *big.Float { return BigDot(v, v) }

// Float64 rounds v to float64.
func (v BigVec) Float64() Vec4 {
	var out Vec4
	for i := range 4 {
		out[i], _ = v[i].Float64()
	}
	return out
}

// Col returns column j.
func (m BigMat) Col(j int) BigVec {
	return BigVec{m[0][j], m[1][j], m[2][j], m[3][j]}
}

func (m BigMat) withCol(j int, v BigVec) BigMat {
	for i := range 4 {
		m[i][j] = v[i]
	}
	return m
}

func (m BigMat) swapCols(i, j int) BigMat {
	for r := range m {
		m[r][i], m[r][j] = m[r][j], m[r][i]
	}
	return m
}

// Mul returns the product m·n.
func (m BigMat) Mul(n BigMat) BigMat {
	var out BigMat
	for i := range 4 {
		for j := range 4 {
			out[i][j] = BigDot(BigVec(m[i]), n.Col(j))
		}
	}
	return out
}

// MulVec returns m·v.
func (m BigMat) MulVec(v BigVec) BigVec {
	var out BigVec
	for i := range 4 {
		out[i] = BigDot(BigVec(m[i]), v)
	}
	return out
}

// MulIntVec returns m·v for integer coordinates v.
func (m BigMat) MulIntVec(v BigIntVec) BigVec {
	var fv BigVec
	for i := range 4 {
		fv[i] = new(big.Float).SetInt(v[i])
	}
	return m.MulVec(fv)
}

// Float64 rounds m to float64.
func (m BigMat) Float64() Mat4 {
	var out Mat4
	for i := range 4 {
		for j := range 4 {
			out[i][j], _ = m[i][j].Float64()
		}
	}
	return out
}

// AddOffset returns v + d.
func (v BigIntVec) AddOffset(d IntVec4) BigIntVec {
	var out BigIntVec
	for i := range 4 {
		out[i] = new(big.Int).Add(v[i], big.NewInt(d[i]))
	}
	return out
}

func (v BigIntVec) isZero() bool {
	for _, c := range v {
		if c.Sign() != 0 {
			return false
		}
	}
	return true
}

// IdentityBigInt returns the 4×4 integer identity.
func IdentityBigInt() BigIntMat {
	var x BigIntMat
	for i := range 4 {
		for j := range 4 {
			x[i][j] = new(big.Int)
		}
		x[i][i].SetInt64(1)
	}
	return x
}

// Col returns column j.
func (x BigIntMat) Col(j int) BigIntVec {
	return BigIntVec{x[0][j], x[1][j], x[2][j], x[3][j]}
}

func (x BigIntMat) withCol(j int, v BigIntVec) BigIntMat {
	for i := range 4 {
		x[i][j] = v[i]
	}
	return x
}

func (x BigIntMat) swapCols(i, j int) BigIntMat {
	for r := range x {
		x[r][i], x[r][j] = x[r][j], x[r][i]
	}
	return x
}

// MulVec returns x·v.
func (x BigIntMat) MulVec(v BigIntVec) BigIntVec {
	var out BigIntVec
	for i := range 4 {
		sum := new(big.Int)
		for k := range 4 {
			sum.Add(sum, new(big.Int).Mul(x[i][k], v[k]))
		}
		out[i] = sum
	}
	return out
}

// Det returns the determinant of x by cofactor expansion.
func (x BigIntMat) Det() *big.Int {
	det := new(big.Int)
	for j := range 4 {
		var minor [3][3]*big.Int
		for r := 1; r < 4; r++ {
			c := 0
			for k := range 4 {
				if k == j {
					continue
				}
				minor[r-1][c] = x[r][k]
				c++
			}
		}
		term := new(big.Int).Mul(x[0][j], det3(minor))
		if j%2 == 1 {
			term.Neg(term)
		}
		det.Add(det, term)
	}
	return det
}

func det3(m [3][3]*big.Int) *big.Int {
	minor2 := func(a, b, c, d *big.Int) *big.Int {
		ad := new(big.Int).Mul(a, d)
		return ad.Sub(ad, new(big.Int).Mul(b, c))
	}
	out := new(big.Int).Mul(m[0][0], minor2(m[1][1], m[1][2], m[2][1], m[2][2]))
	out.Sub(out, new(big.Int).Mul(m[0][1], minor2(m[1][0], m[1][2], m[2][0], m[2][2])))
	return out.Add(out, new(big.Int).Mul(m[0][2], minor2(m[1][0], m[1][1], m[2][0], m[2][1])))
}

// roundInt rounds x to the nearest integer, halves away from zero.
func roundInt(x *big.Float) *big.Int {
	half := big.NewFloat(0.5)
	r := new(big.Float)
	if x.Sign() >= 0 {
		r.Add(x, half)
	} else {
		r.Sub(x, half)
	}
	n, _ := r.Int(nil)
	return n
}
