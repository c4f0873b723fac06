package wpe

import (
	"errors"
	"fmt"
)

// Sentinel errors, following the package-level Err* convention used
// throughout the pack for conditions that carry no extra data.
var (
	// ErrNotEstimated is returned by Next/CalcEveryChannelOutput when the
	// filter has not been estimated yet.
	ErrNotEstimated = errors.New("wpe: estimate_filter must be called before next")

	// ErrChannelCapacityExceeded is returned by SetInput once the
	// configured channel count has been attached.
	ErrChannelCapacityExceeded = errors.New("wpe: channel capacity exceeded")

	// ErrEndOfStream is returned by a SubbandSource once it is exhausted,
	// and is surfaced to Next callers as the iteration-ended signal.
	ErrEndOfStream = errors.New("wpe: end of stream")
)

// DimensionError reports a configuration whose dimensions are
// inconsistent, e.g. an analysis bandwidth above the Nyquist rate.
type DimensionError struct {
	Bandwidth float64
	Nyquist   float64
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("wpe: bandwidth %g exceeds Nyquist rate %g", e.Bandwidth, e.Nyquist)
}

// FrameIndexError reports a caller advancing a stream by something other
// than one frame.
type FrameIndexError struct {
	Got      int
	Expected int
}

func (e *FrameIndexError) Error() string {
	return fmt.Sprintf("wpe: frame index %d != expected %d", e.Got, e.Expected)
}

// ChannelIndexError reports an out-of-range channel index passed to
// GetOutput.
type ChannelIndexError struct {
	Channel int
	Count   int
}

func (e *ChannelIndexError) Error() string {
	return fmt.Sprintf("wpe: channel index %d exceeds channel count %d", e.Channel, e.Count)
}

// CholeskyError reports a failed complex Hermitian Cholesky decomposition
// in multi-channel mode, where it is a fatal, checked error with targeted
// guidance (spec section 4.5, 7). A single-channel decomposition failure
// has no equivalent type: it is left as an unchecked runtime panic, since
// spec section 7's error table only lists this failure under multi-channel.
type CholeskyError struct {
	Subband int
	Channel int
}

func (e *CholeskyError) Error() string {
	return fmt.Sprintf("wpe: cholesky decomposition failed for channel %d, subband %d: "+
		"channels may be too similar; raise diagonal_bias or fall back to per-channel single-channel estimation",
		e.Channel, e.Subband)
}
