// Command wpedemo runs single-channel WPE dereverberation over a stream of
// complex subband frames, following the teacher's main.go/dsp.Writer
// pattern of wiring a DSP component directly to os.Stdin/os.Stdout, but
// adapted to this package's frame-oriented domain: the wire format is raw
// little-endian complex128 values, K per frame, with no framing header --
// spec section 6 names no wire format, so this is only a convenience for
// driving the estimator from the command line.
package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/suwoncjh/wpe-dereverb/wpe"
)

func main() {
	var (
		subbandsN = flag.Int("k", 256, "number of subbands (must be even)")
		lowerN    = flag.Int("lower", 2, "prediction delay D")
		upperN    = flag.Int("upper", 10, "last lag index")
		iterN     = flag.Int("iterations", 2, "estimator iterations")
		loadDb    = flag.Float64("load-db", -40, "relative diagonal load, dB")
		bandwidth = flag.Float64("bandwidth", 0, "analysis bandwidth, Hz (0 = full band)")
		sampleRt  = flag.Float64("sample-rate", 16000, "sample rate, Hz")
		estFrames = flag.Int("estimate-frames", 0, "frames to use for estimation (0 = all)")
		printSB   = flag.Int("print-subband", -1, "subband index to trace diagnostics for")
	)
	flag.Parse()

	if err := run(*subbandsN, *lowerN, *upperN, *iterN, *loadDb, *bandwidth, *sampleRt, *estFrames, *printSB); err != nil {
		fmt.Fprintln(os.Stderr, "wpedemo:", err)
		os.Exit(1)
	}
}

func run(subbandsN, lowerN, upperN, iterN int, loadDb, bandwidth, sampleRt float64, estFrames, printSB int) error {
	frames, err := readFrames(os.Stdin, subbandsN)
	if err != nil {
		return fmt.Errorf("reading frames: %w", err)
	}

	source := newSliceSource(frames, subbandsN)

	cfg, err := wpe.NewConfig(subbandsN,
		wpe.WithPredictionDelay(lowerN),
		wpe.WithPredictionOrder(upperN),
		wpe.WithIterations(iterN),
		wpe.WithLoadDb(loadDb),
		wpe.WithBandwidth(bandwidth, sampleRt),
		wpe.WithPrintingSubband(printSB),
		wpe.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	)
	if err != nil {
		return fmt.Errorf("configuring estimator: %w", err)
	}

	sc := wpe.NewSingleChannel(cfg, source)

	fmt.Fprintf(os.Stderr, "wpedemo: predictor order P=%d\n", cfg.PredictionOrder())

	framesN, err := sc.EstimateFilter(0, estFrames)
	if err != nil {
		return fmt.Errorf("estimating filter: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wpedemo: estimated filter from %d frames\n", framesN)

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for frameNo := 0; ; frameNo++ {
		frame, err := sc.Next(frameNo)
		if err != nil {
			break
		}
		if err := binary.Write(out, binary.LittleEndian, []complex128(frame)); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}

	return nil
}

// readFrames eagerly reads every K-subband frame available on r, following
// the little-endian complex128 wire convention documented above.
func readFrames(r io.Reader, subbandsN int) ([]wpe.Frame, error) {
	br := bufio.NewReader(r)
	var frames []wpe.Frame
	for {
		frame := make(wpe.Frame, subbandsN)
		if err := binary.Read(br, binary.LittleEndian, []complex128(frame)); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// sliceSource is an in-memory SubbandSource over a fixed list of frames,
// replayable via Reset -- the same role as the estimation buffer the
// dereverberator itself builds, kept separate here so the demo's I/O layer
// stays outside the wpe package per spec section 1's external collaborator
// boundary.
type sliceSource struct {
	frames []wpe.Frame
	pos    int
	k      int
}

func newSliceSource(frames []wpe.Frame, k int) *sliceSource {
	return &sliceSource{frames: frames, k: k}
}

func (s *sliceSource) Next() (wpe.Frame, error) {
	if s.pos >= len(s.frames) {
		return nil, wpe.ErrEndOfStream
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *sliceSource) Reset() error {
	s.pos = 0
	return nil
}

func (s *sliceSource) Size() int { return s.k }
