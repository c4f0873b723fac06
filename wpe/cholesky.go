package wpe

import (
	"math"
	"math/cmplx"
)

// choleskySolve is the Solver (C5): Cholesky-decomposes the loaded
// Hermitian positive-definite R into a separate lower-triangular factor
// (R itself is left unchanged) and solves R*g = r for g.
//
// A subband whose regressors are all zero leaves both R and r identically
// zero; that system gets the zero solution instead of a decomposition
// failure.
//
// No library in the pack offers a complex Hermitian Cholesky (gonum/mat is
// real-valued only); this mirrors, element for element, the GSL routines
// the original implementation calls (gsl_linalg_complex_cholesky_decomp /
// _solve), and follows the teacher's own precedent of hand-rolling linear
// algebra directly on slices (whitening.go's Durbin recursion) rather than
// reaching for a library that does not exist for this type.
func choleskySolve(R *hermitianMatrix, r []complex128) ([]complex128, error) {
	n := R.n
	zero := true
	for i := 0; i < n && zero; i++ {
		zero = R.at(i, i) == 0 && r[i] == 0
	}
	if zero {
		return make([]complex128, n), nil
	}

	l := make([]complex128, n*n)

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := R.at(i, j)
			for k := 0; k < j; k++ {
				sum -= l[i*n+k] * cmplx.Conj(l[j*n+k])
			}
			if i == j {
				d := real(sum)
				if d <= 0 {
					return nil, errCholeskyNotPositiveDefinite
				}
				l[i*n+i] = complex(math.Sqrt(d), 0)
			} else {
				l[i*n+j] = sum / l[j*n+j]
			}
		}
	}

	// Forward substitution: L*y = r.
	y := make([]complex128, n)
	for i := 0; i < n; i++ {
		sum := r[i]
		for k := 0; k < i; k++ {
			sum -= l[i*n+k] * y[k]
		}
		y[i] = sum / l[i*n+i]
	}

	// Back substitution: L^H*g = y.
	g := make([]complex128, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < n; k++ {
			sum -= cmplx.Conj(l[k*n+i]) * g[k]
		}
		g[i] = sum / l[i*n+i]
	}

	return g, nil
}

var errCholeskyNotPositiveDefinite = &choleskyFailure{}

type choleskyFailure struct{}

func (*choleskyFailure) Error() string { return "wpe: matrix is not positive definite" }
