package compiler

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// OperatorDistance returns the spectral norm ‖a − b‖ of two 2×2 complex
// matrices. The difference is embedded as the real 4×4 matrix
// [[Re, −Im], [Im, Re]], whose singular values are those of the complex
// matrix, each repeated twice.
func OperatorDistance(a, b [2][2]complex128) float64 {
	embed := mat.NewDense(4, 4, nil)
	for i := range 2 {
		for j := range 2 {
			d := a[i][j] - b[i][j]
			embed.Set(i, j, real(d))
			embed.Set(i, j+2, -imag(d))
			embed.Set(i+2, j, imag(d))
			embed.Set(i+2, j+2, real(d))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(embed, mat.SVDNone) {
		return frobenius(a, b)
	}
	return svd.Values(nil)[0]
}

// frobenius bounds the spectral norm from above when the SVD fails to
// converge.
func frobenius(a, b [2][2]complex128) float64 {
	var sum float64
	for i := range 2 {
		for j := range 2 {
			d := cmplx.Abs(a[i][j] - b[i][j])
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}
