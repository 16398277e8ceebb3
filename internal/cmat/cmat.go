package cmat

import "math/cmplx"

// Matrix is a dense 3x3 complex matrix, the working unit of the oscillation
// engine. Values are small enough that everything stays on the stack; all
// operations take pointers to avoid copying at call sites in hot loops.
type Matrix [3][3]complex128

// Identity returns the 3x3 unit matrix.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Clear zeroes every element of m.
func (m *Matrix) Clear() {
	*m = Matrix{}
}

// Mul computes dst = a*b. dst must not alias a or b.
func Mul(dst, a, b *Matrix) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
		}
	}
}

// AddPhased accumulates dst += exp(i*phase) * m, the spectral-term update
// used when collapsing a transition expansion back into an amplitude.
func AddPhased(dst *Matrix, phase float64, m *Matrix) {
	w := cmplx.Exp(complex(0, phase))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst[i][j] += w * m[i][j]
		}
	}
}

// MaxAbsDiff returns the largest element-wise modulus of a-b.
// Used by tests to compare amplitudes.
func MaxAbsDiff(a, b *Matrix) float64 {
	var max float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if d := cmplx.Abs(a[i][j] - b[i][j]); d > max {
				max = d
			}
		}
	}
	return max
}
