package wpe

import (
	"math/cmplx"
	"testing"
)

func newTestConfig(t *testing.T, subbandsN, lowerN, upperN, iterN int, loadDb float64) *Config {
	t.Helper()
	cfg, err := NewConfig(subbandsN,
		WithPredictionDelay(lowerN),
		WithPredictionOrder(upperN),
		WithIterations(iterN),
		WithLoadDb(loadDb),
		WithBandwidth(0, 16000),
	)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return cfg
}

func cplxFrame(vals ...float64) Frame {
	f := make(Frame, len(vals))
	for i, v := range vals {
		f[i] = complex(v, 0)
	}
	return f
}

// TestSingleChannelBeforeDelayIsUnfiltered checks invariant 1: for every
// frame n < D, the streaming output equals the input exactly.
func TestSingleChannelBeforeDelayIsUnfiltered(t *testing.T) {
	cfg := newTestConfig(t, 4, 1, 1, 1, -40)

	frames := []Frame{
		cplxFrame(1, 0, 0, 0),
		cplxFrame(0, 0, 0, 0),
		cplxFrame(0, 0, 0, 0),
	}
	source := newSliceSource(4, frames...)

	sc := NewSingleChannel(cfg, source)
	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("EstimateFilter: %v", err)
	}

	out0, err := sc.Next(0)
	if err != nil {
		t.Fatalf("Next(0): %v", err)
	}
	for k := range out0 {
		if out0[k] != frames[0][k] {
			t.Errorf("frame 0 (n < D) subband %d: got %v, want input %v (unfiltered)", k, out0[k], frames[0][k])
		}
	}
}

// TestSingleChannelInactiveBandPassesThrough checks invariant 2: inactive
// subbands pass through bit for bit.
func TestSingleChannelInactiveBandPassesThrough(t *testing.T) {
	cfg, err := NewConfig(16,
		WithPredictionDelay(1),
		WithPredictionOrder(2),
		WithIterations(1),
		WithLoadDb(-40),
		WithBandwidth(4000, 16000), // quarter band: subbands 5..11 inactive
	)
	if err != nil {
		t.Fatal(err)
	}

	// Frames are Hermitian-symmetric about K/2, as Next assumes: it writes
	// the upper half of each output as the mirror of the lower half.
	frames := make([]Frame, 6)
	for n := range frames {
		f := make(Frame, 16)
		for k := 0; k <= 8; k++ {
			f[k] = complex(float64(n+k)*0.1, float64(n-k)*0.05)
		}
		for k := 1; k < 8; k++ {
			f[16-k] = cmplx.Conj(f[k])
		}
		frames[n] = f
	}
	source := newSliceSource(16, frames...)

	sc := NewSingleChannel(cfg, source)
	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("EstimateFilter: %v", err)
	}

	for n := 0; n < len(frames); n++ {
		out, err := sc.Next(n)
		if err != nil {
			t.Fatalf("Next(%d): %v", n, err)
		}
		for k := 5; k <= 11; k++ {
			if out[k] != frames[n][k] {
				t.Errorf("frame %d inactive subband %d: got %v, want %v", n, k, out[k], frames[n][k])
			}
		}
	}
}

// TestSingleChannelHermitianMirror checks invariant 3: out[K-k] = conj(out[k]).
func TestSingleChannelHermitianMirror(t *testing.T) {
	cfg := newTestConfig(t, 8, 1, 2, 2, -30)

	frames := make([]Frame, 10)
	for n := range frames {
		f := make(Frame, 8)
		for k := range f {
			f[k] = complex(float64(n)*0.3-float64(k), float64(k)*0.2)
		}
		frames[n] = f
	}
	source := newSliceSource(8, frames...)

	sc := NewSingleChannel(cfg, source)
	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("EstimateFilter: %v", err)
	}

	for n := 0; n < len(frames); n++ {
		out, err := sc.Next(n)
		if err != nil {
			t.Fatalf("Next(%d): %v", n, err)
		}
		for k := 1; k < 4; k++ {
			want := cmplx.Conj(out[k])
			if got := out[8-k]; got != want {
				t.Errorf("frame %d: out[%d]=%v, want conj(out[%d])=%v", n, 8-k, got, k, want)
			}
		}
	}
}

// TestSingleChannelNextSpeakerZeroesFilterAndReproduces checks invariant 4.
func TestSingleChannelNextSpeakerZeroesFilterAndReproduces(t *testing.T) {
	cfg := newTestConfig(t, 4, 1, 1, 2, -30)

	frames := []Frame{
		cplxFrame(1, 0.5, -0.2, 0.1),
		cplxFrame(0.3, -0.1, 0.2, 0),
		cplxFrame(0.1, 0.1, 0.1, 0.1),
		cplxFrame(-0.2, 0, 0.3, -0.1),
	}

	source := newSliceSource(4, frames...)
	sc := NewSingleChannel(cfg, source)
	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("first EstimateFilter: %v", err)
	}
	firstG := cloneCoeffs(sc.g)

	sc.NextSpeaker()
	for k, gk := range sc.g {
		for i, v := range gk {
			if v != 0 {
				t.Fatalf("after NextSpeaker, g[%d][%d] = %v, want 0", k, i, v)
			}
		}
	}

	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("second EstimateFilter: %v", err)
	}
	secondG := sc.g

	for k := range firstG {
		for i := range firstG[k] {
			if firstG[k][i] != secondG[k][i] {
				t.Errorf("subband %d coeff %d differs after NextSpeaker+re-estimate: %v vs %v", k, i, firstG[k][i], secondG[k][i])
			}
		}
	}
}

// TestSingleChannelNextRejectsNonUnitAdvance checks S4.
func TestSingleChannelNextRejectsNonUnitAdvance(t *testing.T) {
	cfg := newTestConfig(t, 4, 1, 1, 1, -30)
	frames := []Frame{
		cplxFrame(1, 0, 0, 0),
		cplxFrame(0, 1, 0, 0),
		cplxFrame(0, 0, 1, 0),
	}
	source := newSliceSource(4, frames...)
	sc := NewSingleChannel(cfg, source)
	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("EstimateFilter: %v", err)
	}

	if _, err := sc.Next(0); err != nil {
		t.Fatalf("Next(0): %v", err)
	}
	_, err := sc.Next(2)
	if err == nil {
		t.Fatal("expected a FrameIndexError advancing by 2")
	}
	if _, ok := err.(*FrameIndexError); !ok {
		t.Fatalf("got %T, want *FrameIndexError", err)
	}
}

// TestSingleChannelNextBeforeEstimateFails checks the Initialization error.
func TestSingleChannelNextBeforeEstimateFails(t *testing.T) {
	cfg := newTestConfig(t, 4, 1, 1, 1, -30)
	source := newSliceSource(4, cplxFrame(1, 0, 0, 0))
	sc := NewSingleChannel(cfg, source)

	if _, err := sc.Next(0); err != ErrNotEstimated {
		t.Fatalf("got %v, want ErrNotEstimated", err)
	}
}

// TestSingleChannelStrongLoadDampsFilterToZero checks property 9: for
// loadDb -> +inf, g -> 0.
func TestSingleChannelStrongLoadDampsFilterToZero(t *testing.T) {
	cfg := newTestConfig(t, 4, 1, 2, 3, 300) // load_factor = 10^30, overwhelms R

	frames := make([]Frame, 20)
	for n := range frames {
		f := make(Frame, 4)
		for k := range f {
			f[k] = complex(float64((n*7+k*3)%5)-2, float64((n*3+k)%4)-1.5)
		}
		frames[n] = f
	}
	source := newSliceSource(4, frames...)
	sc := NewSingleChannel(cfg, source)
	if _, err := sc.EstimateFilter(0, -1); err != nil {
		t.Fatalf("EstimateFilter: %v", err)
	}

	for k := 0; k < 4; k++ {
		for _, v := range sc.g[k] {
			if cmplx.Abs(v) > 1e-6 {
				t.Errorf("subband %d: |g|=%g, want ~0 under very strong regularization", k, cmplx.Abs(v))
			}
		}
	}
}

// TestSingleChannelEstimateFilterPanicsOnSingularCovariance checks that a
// single-channel Cholesky failure panics rather than surfacing as a
// returned error (spec section 4.5/7: only multi-channel failure is a
// checked, targeted error).
func TestSingleChannelEstimateFilterPanicsOnSingularCovariance(t *testing.T) {
	// predictionN=2 with only one normal-equation sample (framesN=2,
	// lowerN=1) makes R's second row/column identically zero: the
	// covariance is exactly singular by construction, regardless of
	// rounding. loadDb=-4000 underflows loadFactor to exactly 0, so no
	// regularization masks the singularity.
	cfg := newTestConfig(t, 2, 1, 2, 1, -4000)
	frames := []Frame{
		cplxFrame(1, 0),
		cplxFrame(1, 0),
	}
	source := newSliceSource(2, frames...)
	sc := NewSingleChannel(cfg, source)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected EstimateFilter to panic on an unrecoverable singular covariance")
		}
	}()
	sc.EstimateFilter(0, -1)
}

func cloneCoeffs(g [][]complex128) [][]complex128 {
	out := make([][]complex128, len(g))
	for k, gk := range g {
		out[k] = append([]complex128(nil), gk...)
	}
	return out
}
