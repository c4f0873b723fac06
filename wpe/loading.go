package wpe

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// loadDiagonal is the Diagonal Loader (C4). It regularizes R to stay
// invertible and well-conditioned (spec section 4.4):
//
//  1. (multi-channel only) add the fixed diagonal_bias to every diagonal
//     element first, so it is already part of R when the max-diagonal scan
//     below runs;
//  2. m <- max_i |R[i,i]|;
//  3. for each i: R[i,i] <- |R[i,i]| + m*loadFactor, with the imaginary
//     part zeroed (a Hermitian matrix's diagonal is real).
//
// Pass bias = 0 for the single-channel estimator, which has no absolute
// regularizer.
func loadDiagonal(R *hermitianMatrix, loadFactor, bias float64) {
	if bias != 0 {
		for i := 0; i < R.n; i++ {
			R.add(i, i, complex(bias, 0))
		}
	}

	diag := make([]float64, R.n)
	for i := 0; i < R.n; i++ {
		diag[i] = cmplx.Abs(R.at(i, i))
	}
	maxDiagonal := floats.Max(diag)

	for i := 0; i < R.n; i++ {
		R.set(i, i, complex(diag[i]+maxDiagonal*loadFactor, 0))
	}
}
