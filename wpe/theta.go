package wpe

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// thetaFloor prevents division blow-up when the dereverberated residual is
// near zero (silence or perfect prediction).
const thetaFloor = 1.0e-3

// hermitianDot computes gᴴ·v = Σ conj(g[i]) * v[i].
func hermitianDot(g, v []complex128) complex128 {
	var sum complex128
	for i := range g {
		sum += cmplx.Conj(g[i]) * v[i]
	}
	return sum
}

// computeTheta is the Theta Estimator (C2) for the single-channel
// estimator. It recomputes the per-sample, per-subband reference power
// from the currently dereverberated estimate, storing it in a *mat.Dense
// shaped Nf x K -- the same real-valued per-frame, per-band matrix layout
// the teacher uses for its subband energy matrix.
func computeTheta(history []Frame, g [][]complex128, lowerN, subbandsN int) *mat.Dense {
	framesN := len(history)
	theta := mat.NewDense(framesN, subbandsN, nil)

	for n := 0; n < framesN; n++ {
		for k := 0; k < subbandsN; k++ {
			r := history[n][k]
			if n >= lowerN {
				lags := lagVector(history, k, n-lowerN, len(g[k]))
				r -= hermitianDot(g[k], lags)
			}
			theta.Set(n, k, floorSquare(cmplx.Abs(r)))
		}
	}
	return theta
}

// computeMultiTheta is the Theta Estimator (C2) for the multi-channel
// estimator: one Nf x K matrix per channel.
func computeMultiTheta(history []multiFrame, G [][][]complex128, lowerN, subbandsN, channelsN, predictionN int) []*mat.Dense {
	framesN := len(history)
	thetas := make([]*mat.Dense, channelsN)
	for c := range thetas {
		thetas[c] = mat.NewDense(framesN, subbandsN, nil)
	}

	for n := 0; n < framesN; n++ {
		for c := 0; c < channelsN; c++ {
			observation := history[n][c]
			for k := 0; k < subbandsN; k++ {
				r := observation[k]
				if n >= lowerN {
					lags := multiLagVector(history, k, n-lowerN, predictionN, channelsN)
					r -= hermitianDot(G[c][k], lags)
				}
				thetas[c].Set(n, k, floorSquare(cmplx.Abs(r)))
			}
		}
	}
	return thetas
}

// floorSquare returns max(mag, thetaFloor)^2 (spec section 3's theta
// invariant: theta >= thetaFloor^2 after the squaring step).
func floorSquare(mag float64) float64 {
	if mag < thetaFloor {
		mag = thetaFloor
	}
	return mag * mag
}
