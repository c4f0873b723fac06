package wpe

// estimationHistory is the unbounded list of frames gathered by
// fill_buffer and consumed by the estimator loop (spec section 3, "Frame
// history (estimation)"). It is a distinct type from streamingHistory even
// though both represent "past frames" -- their lifetimes and size
// constraints differ (design note in spec section 9) and collapsing them
// would make the bounded streaming invariant easy to violate by accident.
type estimationHistory struct {
	frames []Frame
}

func (h *estimationHistory) fill(source SubbandSource, startFrameNo, endFrameNo int) error {
	for frX := 0; ; frX++ {
		if endFrameNo > 0 && frX >= endFrameNo {
			break
		}
		frame, err := source.Next()
		if err != nil {
			// Upstream iteration error mid-collection: stop collecting
			// rather than fail; the estimator proceeds with what it
			// has gathered so far (spec section 7, open question in
			// section 9 -- preserved behavior).
			break
		}
		if frX >= startFrameNo {
			h.frames = append(h.frames, frame.clone())
		}
	}
	return nil
}

func (h *estimationHistory) len() int { return len(h.frames) }

func (h *estimationHistory) release() { h.frames = nil }

// multiEstimationHistory is the multi-channel equivalent: one Frame per
// attached channel per time sample.
type multiEstimationHistory struct {
	frames []multiFrame
}

func (h *multiEstimationHistory) fill(sources []SubbandSource, startFrameNo, endFrameNo int) {
	for frX := 0; ; frX++ {
		if endFrameNo > 0 && frX >= endFrameNo {
			break
		}
		brace := make(multiFrame, len(sources))
		ok := true
		for c, src := range sources {
			frame, err := src.Next()
			if err != nil {
				ok = false
				break
			}
			brace[c] = frame.clone()
		}
		if !ok {
			break
		}
		if frX >= startFrameNo {
			h.frames = append(h.frames, brace)
		}
	}
}

func (h *multiEstimationHistory) len() int { return len(h.frames) }

func (h *multiEstimationHistory) release() { h.frames = nil }

// streamingHistory is the bounded ring kept during streaming filtering
// (spec section 3, invariant 2: the buffer never grows past its capacity;
// the oldest frame is dropped before the newest is appended). Its capacity
// must reach D+P frames, not just P: the oldest lag tap Next needs is D+P-1
// frames behind the current one, and a ring sized at only P would silently
// zero-extend every tap once D > 0.
type streamingHistory struct {
	frames   []Frame
	capacity int
}

func newStreamingHistory(capacity int) *streamingHistory {
	return &streamingHistory{capacity: capacity}
}

func (h *streamingHistory) push(f Frame) {
	if len(h.frames) >= h.capacity {
		copy(h.frames, h.frames[1:])
		h.frames[len(h.frames)-1] = f
		return
	}
	h.frames = append(h.frames, f)
}

func (h *streamingHistory) len() int { return len(h.frames) }

func (h *streamingHistory) reset() { h.frames = nil }

// multiStreamingHistory is the multi-channel equivalent of streamingHistory.
type multiStreamingHistory struct {
	frames   []multiFrame
	capacity int
}

func newMultiStreamingHistory(capacity int) *multiStreamingHistory {
	return &multiStreamingHistory{capacity: capacity}
}

func (h *multiStreamingHistory) push(f multiFrame) {
	if len(h.frames) >= h.capacity {
		copy(h.frames, h.frames[1:])
		h.frames[len(h.frames)-1] = f
		return
	}
	h.frames = append(h.frames, f)
}

func (h *multiStreamingHistory) len() int { return len(h.frames) }

func (h *multiStreamingHistory) reset() { h.frames = nil }
