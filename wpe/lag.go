package wpe

// lagVector is the Lag Window Extractor (C1) for the single-channel
// estimator/filter. Element i equals history[s-i][k] if s-i >= 0, else 0
// (spec section 4.1): zero-extension is the formal definition of the
// regressor prior to signal start, so no warm-up special case is needed.
func lagVector(history []Frame, k, s, predictionN int) []complex128 {
	out := make([]complex128, predictionN)
	for i := 0; i < predictionN; i++ {
		idx := s - i
		if idx < 0 {
			continue
		}
		out[i] = history[idx][k]
	}
	return out
}

// multiFrame is one time sample's worth of observations across all
// attached channels.
type multiFrame []Frame

// multiLagVector is the Lag Window Extractor (C1) for the multi-channel
// estimator. Channels are packed as the outer dimension: index c*P+i
// equals history[s-i][c][k] (spec section 4.1).
func multiLagVector(history []multiFrame, k, s, predictionN, channelsN int) []complex128 {
	out := make([]complex128, predictionN*channelsN)
	totalX := 0
	for c := 0; c < channelsN; c++ {
		for i := 0; i < predictionN; i++ {
			idx := s - i
			if idx >= 0 {
				out[totalX] = history[idx][c][k]
			}
			totalX++
		}
	}
	return out
}
