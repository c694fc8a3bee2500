package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// rampSource emits 1, 2, 3, ... up to limit frames.
type rampSource struct {
	next  float32
	limit int
	made  int
}

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		if s.made >= s.limit {
			dst[i] = 0
			continue
		}
		s.next++
		dst[i] = s.next
		s.made++
	}
}

func (s *rampSource) Finished() bool { return s.made >= s.limit }
func (s *rampSource) Remaining() int { return s.limit - s.made }

// endlessSource never finishes.
type endlessSource struct{}

func (endlessSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = 0.25
	}
}

func TestStreamReaderDuplicatesMonoToStereo(t *testing.T) {
	r := NewStreamReader(context.Background(), &rampSource{limit: 100}, 2)
	p := make([]byte, 4*8)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(p) {
		t.Fatalf("n = %d, want %d", n, len(p))
	}
	got := DecodeFloat32LE(p)
	want := []float32{1, 1, 2, 2, 3, 3, 4, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStreamReaderStopsAtBound(t *testing.T) {
	r := NewStreamReader(context.Background(), &rampSource{limit: 5}, 1)
	p := make([]byte, 4*16)
	n, err := r.Read(p)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on the last buffer, got %v", err)
	}
	if n != 5*4 {
		t.Fatalf("n = %d, want %d", n, 5*4)
	}
	select {
	case <-r.Done():
	default:
		t.Fatalf("Done should be closed after EOF")
	}
}

func TestStreamReaderObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewStreamReader(ctx, endlessSource{}, 1)
	p := make([]byte, 64)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("read before cancel: %v", err)
	}
	cancel()
	n, err := r.Read(p)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("read after cancel = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestHeadlessSinkCapturesWholeSource(t *testing.T) {
	var w bytes.Buffer
	h := &HeadlessSink{BufferFrames: 7, Capture: true, W: &w}
	if err := h.Play(context.Background(), &rampSource{limit: 50}); err != nil {
		t.Fatalf("play: %v", err)
	}
	got := h.Samples()
	if len(got) != 50 {
		t.Fatalf("captured %d samples, want 50", len(got))
	}
	for i, v := range got {
		if v != float32(i+1) {
			t.Fatalf("sample %d = %v, want %d", i, v, i+1)
		}
	}
	if w.Len() != 50*4 {
		t.Fatalf("writer got %d bytes, want %d", w.Len(), 50*4)
	}
	if h.Buffers() != 8 {
		t.Fatalf("buffers = %d, want 8", h.Buffers())
	}
}

func TestHeadlessSinkReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &HeadlessSink{Realtime: true}
	done := make(chan error, 1)
	go func() { done <- h.Play(ctx, endlessSource{}) }()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should not be an error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("sink did not stop after cancel")
	}
	if h.Buffers() == 0 {
		t.Fatalf("expected some buffers before cancel")
	}
}

func TestParseBackend(t *testing.T) {
	cases := map[string]Backend{
		"":         BackendEbiten,
		"Ebiten":   BackendEbiten,
		" oto ":    BackendOto,
		"headless": BackendHeadless,
	}
	for in, want := range cases {
		got, err := ParseBackend(in)
		if err != nil {
			t.Fatalf("ParseBackend(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseBackend(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseBackend("alsa"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
