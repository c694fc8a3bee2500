package audio

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// SampleSource produces mono float32 samples.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// BoundedSource knows how many frames it has left, so the last buffer can be
// cut short instead of padded with silence.
type BoundedSource interface {
	SampleSource
	Remaining() int
}

// StreamReader exposes a SampleSource as float32 little endian PCM. Mono
// samples are copied to every output channel. The context is checked on
// every Read; once it is done the reader reports io.EOF.
type StreamReader struct {
	mu       sync.Mutex
	ctx      context.Context
	source   SampleSource
	channels int
	buf      []float32
	done     chan struct{}
	doneOnce sync.Once
}

func NewStreamReader(ctx context.Context, source SampleSource, channels int) *StreamReader {
	if channels < 1 {
		channels = 1
	}
	return &StreamReader{
		ctx:      ctx,
		source:   source,
		channels: channels,
		done:     make(chan struct{}),
	}
}

// Done is closed once the reader has returned io.EOF.
func (r *StreamReader) Done() <-chan struct{} { return r.done }

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		r.finish()
		return 0, io.EOF
	}
	frameSize := 4 * r.channels
	frames := len(p) / frameSize
	if frames == 0 {
		return 0, nil
	}
	if b, ok := r.source.(BoundedSource); ok {
		if rem := b.Remaining(); rem < frames {
			frames = rem
		}
		if frames == 0 {
			r.finish()
			return 0, io.EOF
		}
	}
	if cap(r.buf) < frames {
		r.buf = make([]float32, frames)
	}
	r.buf = r.buf[:frames]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		u := math.Float32bits(s)
		for c := 0; c < r.channels; c++ {
			binary.LittleEndian.PutUint32(p[(i*r.channels+c)*4:], u)
		}
	}
	n := frames * frameSize
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		r.finish()
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) finish() {
	r.doneOnce.Do(func() { close(r.done) })
}

func (r *StreamReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finish()
	return nil
}

// DecodeFloat32LE converts PCM bytes back to samples.
func DecodeFloat32LE(p []byte) []float32 {
	out := make([]float32, len(p)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}
