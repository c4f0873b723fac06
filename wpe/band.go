package wpe

// bandHalfWidth derives L from the configured analysis bandwidth (spec
// section 3, "Band mask"):
//
//	L = floor((bandwidth / (sampleRate/2)) * (K/2)), or K/2 if bandwidth == 0.
func bandHalfWidth(bandWidth, sampleRate float64, subbandsN int) (int, error) {
	nyquist := sampleRate / 2.0
	if bandWidth == 0.0 {
		return subbandsN / 2, nil
	}
	if bandWidth > nyquist {
		return 0, &DimensionError{Bandwidth: bandWidth, Nyquist: nyquist}
	}
	return int((bandWidth / nyquist) * float64(subbandsN/2)), nil
}

// isActiveSubband reports whether subband k lies in the configured
// analysis band: k <= L or k >= K - L.
func isActiveSubband(k, bandHalfN, subbandsN int) bool {
	return k <= bandHalfN || k >= subbandsN-bandHalfN
}
