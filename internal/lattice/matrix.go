package lattice

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vec4 is a real 4-vector.
type Vec4 [4]float64

// IntVec4 is an integer 4-vector of lattice coordinates.
type IntVec4 [4]int64

// Mat4 is a real 4×4 matrix stored row-major. Lattice bases keep their
// basis vectors in the columns. The float64 types serve the per-offset
// ellipsoid test; reduction itself runs on BigMat.
type Mat4 [4][4]float64

func (v Vec4) Add(w Vec4) Vec4 {
	for i := range v {
		v[i] += w[i]
	}
	return v
}

func (v Vec4) Sub(w Vec4) Vec4 {
	for i := range v {
		v[i] -= w[i]
	}
	return v
}

// Dot returns the inner product of v and w.
func Dot(v, w Vec4) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] + v[3]*w[3]
}

// Norm2 returns the squared Euclidean norm of v.
func (v Vec4) Norm2() float64 { return Dot(v, v) }

// Col returns column j.
func (m Mat4) Col(j int) Vec4 {
	return Vec4{m[0][j], m[1][j], m[2][j], m[3][j]}
}

// MulVec returns m·v.
func (m Mat4) MulVec(v Vec4) Vec4 {
	var out Vec4
	for i := range 4 {
		out[i] = Dot(Vec4(m[i]), v)
	}
	return out
}

// MulIntVec returns m·v for integer coordinates v.
func (m Mat4) MulIntVec(v IntVec4) Vec4 {
	return m.MulVec(Vec4{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])})
}

// MinSingularValue returns the smallest singular value of m, computed from
// the eigenvalues of the Gram matrix mᵀm. It bounds how far an integer
// offset can move: ‖m·o‖ >= σ_min·‖o‖.
func MinSingularValue(m Mat4) float64 {
	gram := mat.NewSymDense(4, nil)
	for i := range 4 {
		for j := i; j < 4; j++ {
			gram.SetSym(i, j, Dot(m.Col(i), m.Col(j)))
		}
	}
	var es mat.EigenSym
	if !es.Factorize(gram, false) {
		return 0
	}
	vals := es.Values(nil)
	least := vals[0]
	for _, v := range vals[1:] {
		least = math.Min(least, v)
	}
	return math.Sqrt(math.Max(least, 0))
}

// SingularLowerBound returns a lower bound on the smallest singular value
// of m that stays accurate when the columns differ widely in length. With
// m = C·D for unit columns C and column norms D,
// ‖m·o‖ ≥ σ_min(C)·min‖mⱼ‖·‖o‖, and C is well conditioned for an
// LLL-reduced basis.
func SingularLowerBound(m Mat4) float64 {
	var c Mat4
	least := math.Inf(1)
	for j := range 4 {
		n := math.Sqrt(m.Col(j).Norm2())
		if n == 0 {
			return 0
		}
		least = math.Min(least, n)
		for i := range 4 {
			c[i][j] = m[i][j] / n
		}
	}
	return MinSingularValue(c) * least
}
