package nesapu

import (
	"math"
	"math/rand"

	"github.com/cbegin/nesstep-go/internal/freq"
	"github.com/cbegin/nesstep-go/internal/track"
)

// SampleRate is the fixed output rate of every generator.
const SampleRate = 48000

// levels are the 16 evenly spaced output values of the 4-bit DAC, -1..1.
var levels = func() [16]float64 {
	var l [16]float64
	for i := range l {
		l[i] = -1 + float64(i)*2/15
	}
	return l
}()

// Level returns DAC level i.
func Level(i int) float64 {
	if i < 0 {
		i = 0
	}
	if i > 15 {
		i = 15
	}
	return levels[i]
}

// voice is the per-channel data every generator reads: a copy of the
// channel's steps with their frequencies resolved once.
type voice struct {
	steps []track.Step
	freqs []float64
}

func newVoice(steps []track.Step, table freq.Table, scale float64) voice {
	v := voice{steps: append([]track.Step(nil), steps...), freqs: make([]float64, len(steps))}
	for i, s := range v.steps {
		if note := s.NoteIndex(); note != track.NoNote {
			v.freqs[i] = table.Freq(note) * scale
		}
	}
	return v
}

// at returns the frequency of the note at step, clamping step into the
// channel. ok is false when the step holds no note.
func (v *voice) at(step int) (f float64, ok bool) {
	if len(v.steps) == 0 {
		return 0, false
	}
	if step < 0 {
		step = 0
	}
	if step >= len(v.steps) {
		step = len(v.steps) - 1
	}
	if v.steps[step].Empty() {
		return 0, false
	}
	return v.freqs[step], true
}

// Pulse is a square wave generator that outputs 0 or 1.
type Pulse struct {
	voice
	duty float64
}

func NewPulse(steps []track.Step, table freq.Table, duty float64) *Pulse {
	if duty <= 0 || duty >= 1 {
		duty = 0.5
	}
	return &Pulse{voice: newVoice(steps, table, 1), duty: duty}
}

// Sample returns the output for absolute sample n while step is playing.
// The phase is taken from n itself, so it is not reset per note.
func (p *Pulse) Sample(n int, step int) float64 {
	f, ok := p.at(step)
	if !ok || f <= 0 {
		return 0
	}
	period := SampleRate / f
	if math.Mod(float64(n), period) < period*p.duty {
		return 0
	}
	return 1
}

// Triangle is the 16-step triangle generator. With fold set it runs at half
// the note frequency and folds the ramp with abs(), as the hardware
// sequencer does; without fold the negative half of the ramp sticks at the
// bottom level.
type Triangle struct {
	voice
	fold bool
}

func NewTriangle(steps []track.Step, table freq.Table, fold bool) *Triangle {
	scale := 1.0
	if fold {
		scale = 0.5
	}
	return &Triangle{voice: newVoice(steps, table, scale), fold: fold}
}

func (t *Triangle) Sample(n int, step int) float64 {
	f, ok := t.at(step)
	if !ok || f <= 0 {
		return 0
	}
	return Level(t.index(n, f))
}

func (t *Triangle) index(n int, f float64) int {
	ratio := f / SampleRate
	x := math.Round(math.Mod(float64(n)*30*ratio, 30) - 15)
	if t.fold {
		x = math.Abs(x)
	}
	if x < 0 {
		return 0
	}
	return int(x)
}

// Noise emits a uniformly random DAC level on every sample that has a note.
// It owns its random source so a seed reproduces a render exactly.
type Noise struct {
	voice
	seed int64
	rng  *rand.Rand
}

func NewNoise(steps []track.Step, table freq.Table, seed int64) *Noise {
	return &Noise{voice: newVoice(steps, table, 1), seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (g *Noise) Sample(_ int, step int) float64 {
	if _, ok := g.at(step); !ok {
		return 0
	}
	return levels[g.rng.Intn(len(levels))]
}

// Reseed restarts the random sequence from the construction seed.
func (g *Noise) Reseed() {
	g.rng.Seed(g.seed)
}
