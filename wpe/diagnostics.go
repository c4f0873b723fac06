package wpe

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// whiteNoiseGainDb computes 20*log10(||g||_2), the diagnostic measure of
// filter magnitude emitted alongside the objective value when the caller
// has selected a subband to trace (spec section 4.6, 4.9, glossary "WNG").
func whiteNoiseGainDb(g []complex128) float64 {
	magnitudes := make([]float64, len(g))
	for i, v := range g {
		magnitudes[i] = cmplx.Abs(v)
	}
	return 20.0 * math.Log10(floats.Norm(magnitudes, 2))
}
