package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

const defaultHeadlessFrames = 1024

// HeadlessSink pulls a source without an audio device. It can keep the
// samples, forward the PCM bytes to a writer, and pace itself to real time.
type HeadlessSink struct {
	// BufferFrames is the pull size; the context is checked once per buffer.
	BufferFrames int
	// SampleRate is used for pacing; 0 means 48000.
	SampleRate int
	// Realtime waits one buffer duration between pulls.
	Realtime bool
	// Capture keeps every sample for Samples.
	Capture bool
	// W receives the mono float32 little endian stream when set.
	W io.Writer

	mu      sync.Mutex
	samples []float32
	buffers int
}

func (h *HeadlessSink) Play(ctx context.Context, src SampleSource) error {
	frames := h.BufferFrames
	if frames <= 0 {
		frames = defaultHeadlessFrames
	}
	rate := h.SampleRate
	if rate <= 0 {
		rate = 48000
	}
	reader := NewStreamReader(ctx, src, 1)
	defer reader.Close()
	buf := make([]byte, frames*4)

	var tick <-chan time.Time
	if h.Realtime {
		t := time.NewTicker(time.Duration(frames) * time.Second / time.Duration(rate))
		defer t.Stop()
		tick = t.C
	}
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if werr := h.consume(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

func (h *HeadlessSink) consume(p []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buffers++
	if h.Capture {
		h.samples = append(h.samples, DecodeFloat32LE(p)...)
	}
	if h.W != nil {
		if _, err := h.W.Write(p); err != nil {
			return fmt.Errorf("headless sink write: %w", err)
		}
	}
	return nil
}

// Samples returns a copy of the captured samples.
func (h *HeadlessSink) Samples() []float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float32(nil), h.samples...)
}

// Buffers is the number of buffers pulled so far.
func (h *HeadlessSink) Buffers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffers
}
