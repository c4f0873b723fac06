package wpe

import (
	"fmt"
	"math/cmplx"
)

// SingleChannel is the single-channel WPE estimator/filter: C1-C8 applied
// to one SubbandSource. It implements the UNESTIMATED/ESTIMATED/TERMINATED
// state machine of spec section 4.10.
type SingleChannel struct {
	cfg    *Config
	source SubbandSource

	g [][]complex128 // g[k], length P, per subband

	estimated  bool
	terminated bool
	frameNo    int
	current    Frame

	hist *streamingHistory
	r    *hermitianMatrix
	rvec []complex128
}

// NewSingleChannel constructs a single-channel estimator/filter over the
// given upstream source.
func NewSingleChannel(cfg *Config, source SubbandSource) *SingleChannel {
	g := make([][]complex128, cfg.SubbandsN)
	for k := range g {
		g[k] = make([]complex128, cfg.predictionN)
	}
	return &SingleChannel{
		cfg:     cfg,
		source:  source,
		g:       g,
		frameNo: -1,
		hist:    newStreamingHistory(cfg.LowerN + cfg.predictionN),
		r:       newHermitianMatrix(cfg.predictionN),
		rvec:    make([]complex128, cfg.predictionN),
	}
}

// EstimateFilter buffers frames from startFrameNo (inclusive, after
// discarding the frames before it) up to endFrameNo (exclusive; 0 or any
// negative value means "use all available frames"), then runs the
// Estimator Loop (C6) and transitions to ESTIMATED.
func (s *SingleChannel) EstimateFilter(startFrameNo, endFrameNo int) (int, error) {
	hist := &estimationHistory{}
	hist.fill(s.source, startFrameNo, endFrameNo)
	framesN := hist.len()

	s.estimateGn(hist.frames, framesN)

	s.source.Reset()
	hist.release()

	s.estimated = true
	s.terminated = false
	s.frameNo = -1
	s.current = nil
	s.hist.reset()

	return framesN, nil
}

// estimateGn is the Estimator Loop (C6). A Cholesky failure here is left
// as an unchecked runtime error rather than a returned error: spec
// section 4.5 only asks the multi-channel orchestrator to turn a failed
// decomposition into a targeted, checked error (too many correlated
// channels); single-channel failure (a genuinely singular covariance from
// degenerate input) has no such recovery path, so it panics instead of
// widening the function's error contract for a case callers can't act on.
func (s *SingleChannel) estimateGn(history []Frame, framesN int) {
	cfg := s.cfg
	for iter := 0; iter < cfg.IterationsN; iter++ {
		theta := computeTheta(history, s.g, cfg.LowerN, cfg.SubbandsN)

		for k := 0; k < cfg.SubbandsN; k++ {
			if !isActiveSubband(k, cfg.bandHalfN, cfg.SubbandsN) {
				continue
			}

			objective := buildNormalEquations(s.r, s.rvec, s.g[k], cfg.LowerN, framesN,
				func(sampleX int) float64 { return theta.At(sampleX, k) },
				func(sampleX int) []complex128 { return lagVector(history, k, sampleX, cfg.predictionN) },
				func(sampleX int) complex128 { return history[sampleX][k] },
			)

			loadDiagonal(s.r, cfg.loadFactor, 0)

			g, err := choleskySolve(s.r, s.rvec)
			if err != nil {
				panic(fmt.Sprintf("wpe: cholesky decomposition failed for subband %d: %v", k, err))
			}
			s.g[k] = g

			if k == cfg.PrintingSubbandX {
				cfg.Logger.Info("wpe subband objective", "subband", k, "iteration", iter, "objective", objective)
				cfg.Logger.Info("wpe subband white noise gain", "subband", k, "iteration", iter, "white_noise_gain_db", whiteNoiseGainDb(g))
			}
		}
	}
}

// Next is the Streaming Filter (C8): emits one dereverberated frame for
// frame_no, using the frozen coefficients estimated by EstimateFilter.
func (s *SingleChannel) Next(frameNo int) (Frame, error) {
	if !s.estimated {
		return nil, ErrNotEstimated
	}
	if frameNo == s.frameNo && s.current != nil {
		return s.current.clone(), nil
	}
	if s.terminated {
		return nil, ErrEndOfStream
	}
	if frameNo >= 0 && frameNo-1 != s.frameNo {
		return nil, &FrameIndexError{Got: frameNo, Expected: s.frameNo + 1}
	}

	s.frameNo++

	block, err := s.source.Next()
	if err != nil {
		s.terminated = true
		return nil, ErrEndOfStream
	}
	current := block.clone()
	s.hist.push(current)

	cfg := s.cfg
	out := make(Frame, cfg.SubbandsN)
	histLen := s.hist.len()

	for k := 0; k <= cfg.SubbandsN/2; k++ {
		cur := current[k]
		if s.frameNo >= cfg.LowerN && isActiveSubband(k, cfg.bandHalfN, cfg.SubbandsN) {
			lags := lagVector(s.hist.frames, k, histLen-1-cfg.LowerN, cfg.predictionN)
			cur -= hermitianDot(s.g[k], lags)
		}
		out[k] = cur
		if k > 0 && k < cfg.SubbandsN/2 {
			out[cfg.SubbandsN-k] = cmplx.Conj(cur)
		}
	}

	s.current = out
	return out.clone(), nil
}

// Reset rewinds the upstream source and clears the streaming history,
// without touching the estimated filter coefficients.
func (s *SingleChannel) Reset() error {
	if err := s.source.Reset(); err != nil {
		return err
	}
	s.frameNo = -1
	s.terminated = false
	s.current = nil
	s.hist.reset()
	return nil
}

// ResetFilter discards the estimated filter state, requiring a fresh
// EstimateFilter call before Next can be used again.
func (s *SingleChannel) ResetFilter() {
	s.estimated = false
}

// NextSpeaker resets streaming state and zeroes every filter coefficient,
// for use when the talker changes (spec section 4.10).
func (s *SingleChannel) NextSpeaker() {
	s.Reset()
	for k := range s.g {
		s.g[k] = make([]complex128, s.cfg.predictionN)
	}
}
