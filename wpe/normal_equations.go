package wpe

import (
	"math"
	"math/cmplx"
)

// buildNormalEquations is the Normal-Equation Builder (C3). It accumulates
// the weighted Hermitian covariance R and cross-correlation r over the
// buffered frames for one subband (one channel, in multi-channel mode),
// and returns the WPE objective value for diagnostic emission (spec
// section 4.3).
//
// lagFn(sampleX) must return the regressor L[k, sampleX]; this function
// applies the lowerN shift itself, pairing target sample n with
// lagFn(n - lowerN). targetFn(sampleX) must return the observation
// Y[sampleX][k] (or Y[sampleX][c][k]).
func buildNormalEquations(R *hermitianMatrix, r []complex128, g []complex128, lowerN, framesN int,
	theta func(sampleX int) float64, lagFn func(sampleX int) []complex128, targetFn func(sampleX int) complex128) float64 {

	R.reset()
	for i := range r {
		r[i] = 0
	}

	for sampleX := lowerN; sampleX < framesN; sampleX++ {
		w := 1.0 / theta(sampleX)
		v := lagFn(sampleX - lowerN)
		for rowX := 0; rowX < R.n; rowX++ {
			rowS := v[rowX]
			for colX := 0; colX <= rowX; colX++ {
				R.add(rowX, colX, complex(w, 0)*rowS*cmplx.Conj(v[colX]))
			}
		}
	}

	var objective float64
	for sampleX := lowerN; sampleX < framesN; sampleX++ {
		th := theta(sampleX)
		w := 1.0 / th
		current := targetFn(sampleX)
		v := lagFn(sampleX - lowerN)

		dereverb := hermitianDot(g, v)
		diff := current - dereverb
		dist := cmplx.Abs(diff)
		objective += dist*dist/th + math.Log(th)

		for lagX := range r {
			r[lagX] += complex(w, 0) * cmplx.Conj(current) * v[lagX]
		}
	}

	return objective
}
