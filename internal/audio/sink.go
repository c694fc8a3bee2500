package audio

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Sink plays one source to completion. Play blocks until the source is
// exhausted or ctx is done; cancellation is not an error.
type Sink interface {
	Play(ctx context.Context, src SampleSource) error
}

type Backend string

const (
	BackendEbiten   Backend = "ebiten"
	BackendOto      Backend = "oto"
	BackendHeadless Backend = "headless"
)

func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendEbiten, BackendOto, BackendHeadless:
		return b, nil
	case "":
		return BackendEbiten, nil
	default:
		return "", fmt.Errorf("unknown audio backend %q (expected ebiten|oto|headless)", name)
	}
}

// NewSink acquires the output device for backend.
func NewSink(backend Backend, sampleRate int) (Sink, error) {
	switch backend {
	case BackendEbiten, "":
		return NewEbitenSink(sampleRate)
	case BackendOto:
		return NewOtoSink(sampleRate)
	case BackendHeadless:
		return &HeadlessSink{}, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}

const drainPoll = 10 * time.Millisecond

type drainer interface {
	IsPlaying() bool
}

// waitPlayback blocks until the reader has delivered its last buffer and
// the device has drained it, or until ctx is done.
func waitPlayback(ctx context.Context, reader *StreamReader, pl drainer) {
	select {
	case <-ctx.Done():
		return
	case <-reader.Done():
	}
	// The device keeps its own buffer; there is no event for the end of it.
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
