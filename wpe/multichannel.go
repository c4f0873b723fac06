package wpe

import "math/cmplx"

// MultiChannel is the Multi-channel Orchestrator (C9): it joins per-channel
// sources into composite lag vectors, drives the Estimator Loop (C6) for
// every channel, and during streaming computes all channels once per frame
// and fans the result out to per-channel façades.
type MultiChannel struct {
	cfg     *Config
	sources []SubbandSource

	g                [][][]complex128 // g[c][k], length predictionN*ChannelsN
	totalPredictionN int

	estimated  bool
	terminated bool
	frameNo    int

	hist   *multiStreamingHistory
	output []Frame

	r    []*hermitianMatrix
	rvec [][]complex128
}

// NewMultiChannel constructs a multi-channel estimator/filter; attach up
// to cfg.ChannelsN sources with SetInput before calling EstimateFilter.
func NewMultiChannel(cfg *Config) *MultiChannel {
	totalP := cfg.predictionN * cfg.ChannelsN

	g := make([][][]complex128, cfg.ChannelsN)
	r := make([]*hermitianMatrix, cfg.ChannelsN)
	rvec := make([][]complex128, cfg.ChannelsN)
	output := make([]Frame, cfg.ChannelsN)
	for c := 0; c < cfg.ChannelsN; c++ {
		g[c] = make([][]complex128, cfg.SubbandsN)
		for k := range g[c] {
			g[c][k] = make([]complex128, totalP)
		}
		r[c] = newHermitianMatrix(totalP)
		rvec[c] = make([]complex128, totalP)
		output[c] = make(Frame, cfg.SubbandsN)
	}

	return &MultiChannel{
		cfg:              cfg,
		g:                g,
		totalPredictionN: totalP,
		frameNo:          -1,
		hist:             newMultiStreamingHistory(cfg.LowerN + cfg.predictionN),
		output:           output,
		r:                r,
		rvec:             rvec,
	}
}

// SetInput attaches one more channel's upstream source. It fails once
// cfg.ChannelsN sources have been attached.
func (mc *MultiChannel) SetInput(source SubbandSource) error {
	if len(mc.sources) >= mc.cfg.ChannelsN {
		return ErrChannelCapacityExceeded
	}
	mc.sources = append(mc.sources, source)
	return nil
}

// EstimateFilter buffers frames from every attached source, runs the
// Estimator Loop for every channel, and transitions to ESTIMATED.
func (mc *MultiChannel) EstimateFilter(startFrameNo, endFrameNo int) (int, error) {
	hist := &multiEstimationHistory{}
	hist.fill(mc.sources, startFrameNo, endFrameNo)
	framesN := hist.len()

	if err := mc.estimateGn(hist.frames, framesN); err != nil {
		return framesN, err
	}

	for _, src := range mc.sources {
		src.Reset()
	}
	hist.release()

	mc.estimated = true
	mc.terminated = false
	mc.frameNo = -1
	mc.hist.reset()

	return framesN, nil
}

// estimateGn is the Estimator Loop (C6), driven for every channel.
func (mc *MultiChannel) estimateGn(history []multiFrame, framesN int) error {
	cfg := mc.cfg

	for iter := 0; iter < cfg.IterationsN; iter++ {
		thetas := computeMultiTheta(history, mc.g, cfg.LowerN, cfg.SubbandsN, cfg.ChannelsN, cfg.predictionN)

		for k := 0; k < cfg.SubbandsN; k++ {
			if !isActiveSubband(k, cfg.bandHalfN, cfg.SubbandsN) {
				continue
			}

			for c := 0; c < cfg.ChannelsN; c++ {
				objective := buildNormalEquations(mc.r[c], mc.rvec[c], mc.g[c][k], cfg.LowerN, framesN,
					func(sampleX int) float64 { return thetas[c].At(sampleX, k) },
					func(sampleX int) []complex128 { return multiLagVector(history, k, sampleX, cfg.predictionN, cfg.ChannelsN) },
					func(sampleX int) complex128 { return history[sampleX][c][k] },
				)

				loadDiagonal(mc.r[c], cfg.loadFactor, cfg.DiagonalBias)

				g, err := choleskySolve(mc.r[c], mc.rvec[c])
				if err != nil {
					return &CholeskyError{Subband: k, Channel: c}
				}
				mc.g[c][k] = g

				if k == cfg.PrintingSubbandX {
					cfg.Logger.Info("wpe subband objective", "channel", c, "subband", k, "iteration", iter, "objective", objective)
					cfg.Logger.Info("wpe subband white noise gain", "channel", c, "subband", k, "iteration", iter, "white_noise_gain_db", whiteNoiseGainDb(g))
				}
			}
		}
	}
	return nil
}

// CalcEveryChannelOutput pulls one frame from each attached source and
// produces the dereverberated output for every channel at once (spec
// section 4.9): exactly one pull per source per stream frame regardless of
// downstream fan-out.
func (mc *MultiChannel) CalcEveryChannelOutput(frameNo int) ([]Frame, error) {
	if !mc.estimated {
		return nil, ErrNotEstimated
	}
	if mc.terminated {
		return nil, ErrEndOfStream
	}
	if frameNo >= 0 && frameNo-1 != mc.frameNo {
		return nil, &FrameIndexError{Got: frameNo, Expected: mc.frameNo + 1}
	}
	mc.frameNo++

	cfg := mc.cfg
	brace := make(multiFrame, len(mc.sources))
	for c, src := range mc.sources {
		frame, err := src.Next()
		if err != nil {
			mc.terminated = true
			return nil, ErrEndOfStream
		}
		brace[c] = frame.clone()
	}
	mc.hist.push(brace)
	histLen := mc.hist.len()

	for c := 0; c < len(mc.sources); c++ {
		current := brace[c]
		out := mc.output[c]
		for k := 0; k <= cfg.SubbandsN/2; k++ {
			cur := current[k]
			if mc.frameNo >= cfg.LowerN && isActiveSubband(k, cfg.bandHalfN, cfg.SubbandsN) {
				lags := multiLagVector(mc.hist.frames, k, histLen-1-cfg.LowerN, cfg.predictionN, cfg.ChannelsN)
				cur -= hermitianDot(mc.g[c][k], lags)
			}
			out[k] = cur
			if k > 0 && k < cfg.SubbandsN/2 {
				out[cfg.SubbandsN-k] = cmplx.Conj(cur)
			}
		}
		mc.output[c] = out
	}

	return mc.output, nil
}

// GetOutput returns the most recently computed dereverberated frame for
// channel c.
func (mc *MultiChannel) GetOutput(c int) (Frame, error) {
	if c < 0 || c >= mc.cfg.ChannelsN {
		return nil, &ChannelIndexError{Channel: c, Count: mc.cfg.ChannelsN}
	}
	return mc.output[c].clone(), nil
}

// Reset rewinds every attached source and clears the streaming history,
// without touching the estimated filter coefficients.
func (mc *MultiChannel) Reset() error {
	for _, src := range mc.sources {
		if err := src.Reset(); err != nil {
			return err
		}
	}
	mc.frameNo = -1
	mc.terminated = false
	mc.hist.reset()
	return nil
}

// ResetFilter discards the estimated filter state.
func (mc *MultiChannel) ResetFilter() {
	mc.estimated = false
}

// NextSpeaker resets streaming state and zeroes every channel's filter
// coefficients.
func (mc *MultiChannel) NextSpeaker() {
	mc.Reset()
	for c := range mc.g {
		for k := range mc.g[c] {
			mc.g[c][k] = make([]complex128, mc.totalPredictionN)
		}
	}
}

// ChannelFacade is the thin, per-channel downstream consumer described in
// spec section 4.9: exactly one of the façades attached to a MultiChannel
// (the primary) triggers CalcEveryChannelOutput; the others read back the
// output already computed for their own channel. The orchestrator owns all
// buffers; a façade holds only a shared reference and its channel tag.
type ChannelFacade struct {
	mc      *MultiChannel
	channel int
	primary int
	frameNo int
}

// Channel returns a façade for channel reading the orchestrator's output,
// where primary is the channel index whose Next call drives computation
// for every channel.
func (mc *MultiChannel) Channel(channel, primary int) *ChannelFacade {
	return &ChannelFacade{mc: mc, channel: channel, primary: primary, frameNo: -1}
}

// Next returns the dereverberated output for this façade's channel,
// running the joint computation first if this is the primary channel.
func (f *ChannelFacade) Next(frameNo int) (Frame, error) {
	if f.channel == f.primary {
		if _, err := f.mc.CalcEveryChannelOutput(frameNo); err != nil {
			return nil, err
		}
	}

	if frameNo >= 0 && frameNo-1 != f.frameNo {
		return nil, &FrameIndexError{Got: frameNo, Expected: f.frameNo + 1}
	}
	f.frameNo++

	return f.mc.GetOutput(f.channel)
}

// Reset rewinds the shared orchestrator and this façade's own frame
// counter.
func (f *ChannelFacade) Reset() error {
	if err := f.mc.Reset(); err != nil {
		return err
	}
	f.frameNo = -1
	return nil
}
