// Package sequencer walks a step grid in time and turns it into a bounded
// stream of mono samples.
package sequencer

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/viterin/vek/vek32"

	"github.com/cbegin/nesstep-go/internal/effects"
	"github.com/cbegin/nesstep-go/internal/nesapu"
	"github.com/cbegin/nesstep-go/internal/track"
)

const SampleRate = nesapu.SampleRate

type Options struct {
	// Tempo in beats per minute. One step lasts one beat.
	Tempo float64
	// Gain is the final volume scale, 0..1.
	Gain float64
	// Params selects the frequency table and generator flavour.
	Params nesapu.Params
	// Effects run after the output filters, e.g. a master EQ.
	Effects []effects.Effector
	// OnEnd is called once, from the rendering goroutine, when the last
	// frame has been produced.
	OnEnd func()
}

// BeatsPerSecond converts a tempo in BPM.
func BeatsPerSecond(tempo float64) float64 {
	return tempo / 60
}

// SamplesPerStep is the number of samples a step lasts at tempo.
func SamplesPerStep(tempo float64) float64 {
	return SampleRate / BeatsPerSecond(tempo)
}

// StepAt returns the step playing at sample n, clamped to [0, length-1].
func StepAt(n int, tempo float64, length int) int {
	if length <= 0 {
		return 0
	}
	step := int(math.Floor(float64(n) / SamplesPerStep(tempo)))
	if step < 0 {
		return 0
	}
	if step >= length {
		return length - 1
	}
	return step
}

// PlaybackSeconds is the rendered length of a track of length steps:
// length multiplied by beats per second. Past the last step the final step
// keeps sounding until this bound.
func PlaybackSeconds(length int, tempo float64) float64 {
	return float64(length) * BeatsPerSecond(tempo)
}

func Duration(length int, tempo float64) time.Duration {
	return time.Duration(PlaybackSeconds(length, tempo) * float64(time.Second))
}

// FrameCount is PlaybackSeconds expressed in samples.
func FrameCount(length int, tempo float64) int {
	frames := math.Round(PlaybackSeconds(length, tempo) * SampleRate)
	if frames < 0 {
		return 0
	}
	return int(frames)
}

// Sequencer renders a private copy of a track. It is not safe for
// concurrent use; one goroutine pulls samples from it.
type Sequencer struct {
	engine         *nesapu.Engine
	tempo          float64
	samplesPerStep float64
	length         int
	pos            int
	total          int
	gain           float32
	finished       atomic.Bool
	onEnd          func()
}

func New(tr *track.Track, opts Options) *Sequencer {
	if opts.Tempo <= 0 {
		opts.Tempo = 960
	}
	engine := nesapu.New(tr, opts.Params)
	for _, eff := range opts.Effects {
		engine.AddEffect(eff)
	}
	s := &Sequencer{
		engine:         engine,
		tempo:          opts.Tempo,
		samplesPerStep: SamplesPerStep(opts.Tempo),
		length:         engine.Len(),
		total:          FrameCount(engine.Len(), opts.Tempo),
		gain:           float32(clamp(opts.Gain, 0, 1)),
		onEnd:          opts.OnEnd,
	}
	if s.total == 0 {
		s.finish()
	}
	return s
}

// Process fills dst with the next samples. Once the bound is reached the
// rest of dst is zeroed.
func (s *Sequencer) Process(dst []float32) {
	produced := 0
	for i := range dst {
		if s.pos >= s.total {
			dst[i] = 0
			continue
		}
		step := s.stepAt(s.pos)
		dst[i] = float32(s.engine.RenderFrame(s.pos, step))
		s.pos++
		produced++
	}
	if produced > 0 {
		out := dst[:produced]
		vek32.MulNumber_Inplace(out, s.gain)
		for i, v := range out {
			out[i] = float32(clamp(float64(v), -1, 1))
		}
	}
	if s.pos >= s.total {
		s.finish()
	}
}

func (s *Sequencer) stepAt(n int) int {
	step := int(float64(n) / s.samplesPerStep)
	if step >= s.length {
		return s.length - 1
	}
	return step
}

func (s *Sequencer) finish() {
	if s.finished.CompareAndSwap(false, true) && s.onEnd != nil {
		s.onEnd()
	}
}

// Finished reports whether every frame has been produced.
func (s *Sequencer) Finished() bool { return s.finished.Load() }

// Remaining is the number of frames left before the bound.
func (s *Sequencer) Remaining() int {
	if s.pos >= s.total {
		return 0
	}
	return s.total - s.pos
}

// Position is the index of the next frame.
func (s *Sequencer) Position() int { return s.pos }

func (s *Sequencer) Total() int { return s.total }

// CurrentStep is the step that the next frame belongs to.
func (s *Sequencer) CurrentStep() int { return s.stepAt(s.pos) }

func (s *Sequencer) Tempo() float64 { return s.tempo }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
