package wpe

import (
	"log/slog"
	"math"
)

// Config holds the construction-time parameters shared by the
// single-channel and multi-channel estimators (spec section 6,
// "Configuration options").
//
// Build one with NewConfig and the With* options, following the
// functional-options pattern the pack uses for DSP component
// configuration (godeps-webrtcvad-go/options.go's Option func(*VAD) error).
type Config struct {
	SubbandsN    int // K, frame width. Must be even.
	ChannelsN    int // C, multi-channel only: upper bound for SetInput.
	LowerN       int // D, prediction delay in frames.
	UpperN       int // last lag index; P = UpperN - LowerN + 1.
	IterationsN  int // I, fixed number of estimator passes.
	LoadDb       float64
	BandWidth    float64 // Hz; 0 means full half-band.
	SampleRate   float64 // Hz.
	DiagonalBias float64 // multi-channel only.

	// PrintingSubbandX, when >= 0, causes the estimator to emit two
	// diagnostic log records (objective, then white-noise gain) per
	// iteration for that subband, per channel in multi-channel mode
	// (spec 4.6, 4.9).
	PrintingSubbandX int

	Logger *slog.Logger

	predictionN int
	bandHalfN   int
	loadFactor  float64
}

// Option configures a Config under construction.
type Option func(*Config) error

// WithChannels sets the channel capacity for multi-channel estimation.
func WithChannels(c int) Option {
	return func(cfg *Config) error {
		cfg.ChannelsN = c
		return nil
	}
}

// WithPredictionDelay sets D, the number of frames between the target
// sample and its newest regressor.
func WithPredictionDelay(lowerN int) Option {
	return func(cfg *Config) error {
		cfg.LowerN = lowerN
		return nil
	}
}

// WithPredictionOrder sets upperN, the last lag index included in the
// predictor.
func WithPredictionOrder(upperN int) Option {
	return func(cfg *Config) error {
		cfg.UpperN = upperN
		return nil
	}
}

// WithIterations sets the fixed number of estimator passes.
func WithIterations(n int) Option {
	return func(cfg *Config) error {
		cfg.IterationsN = n
		return nil
	}
}

// WithLoadDb sets the relative diagonal load, in dB.
func WithLoadDb(db float64) Option {
	return func(cfg *Config) error {
		cfg.LoadDb = db
		return nil
	}
}

// WithBandwidth sets the analysis bandwidth and sample rate used to
// derive the active-subband mask.
func WithBandwidth(bandWidth, sampleRate float64) Option {
	return func(cfg *Config) error {
		cfg.BandWidth = bandWidth
		cfg.SampleRate = sampleRate
		return nil
	}
}

// WithDiagonalBias sets the absolute multi-channel diagonal regularizer.
func WithDiagonalBias(bias float64) Option {
	return func(cfg *Config) error {
		cfg.DiagonalBias = bias
		return nil
	}
}

// WithPrintingSubband enables per-iteration diagnostic logging for one
// subband index. Pass a negative index to disable (the default).
func WithPrintingSubband(subbandX int) Option {
	return func(cfg *Config) error {
		cfg.PrintingSubbandX = subbandX
		return nil
	}
}

// WithLogger overrides the logger used for diagnostic output.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) error {
		cfg.Logger = logger
		return nil
	}
}

// NewConfig builds a validated Config for a K-subband stream.
func NewConfig(subbandsN int, opts ...Option) (*Config, error) {
	cfg := &Config{
		SubbandsN:        subbandsN,
		ChannelsN:        1,
		LowerN:           1,
		UpperN:           1,
		IterationsN:      1,
		LoadDb:           -40,
		BandWidth:        0,
		SampleRate:       16000,
		PrintingSubbandX: -1,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cfg.predictionN = cfg.UpperN - cfg.LowerN + 1
	cfg.loadFactor = math.Pow(10.0, cfg.LoadDb/10.0)

	bandHalfN, err := bandHalfWidth(cfg.BandWidth, cfg.SampleRate, cfg.SubbandsN)
	if err != nil {
		return nil, err
	}
	cfg.bandHalfN = bandHalfN

	return cfg, nil
}

// PredictionOrder returns P = UpperN - LowerN + 1.
func (c *Config) PredictionOrder() int { return c.predictionN }
