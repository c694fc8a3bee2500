// Package nesapu renders a four channel step grid the way the console's
// audio unit does: two pulses, a stepped triangle, noise, the non-linear
// mixer and the analog output filters.
package nesapu

import (
	"github.com/cbegin/nesstep-go/internal/effects"
	"github.com/cbegin/nesstep-go/internal/freq"
	"github.com/cbegin/nesstep-go/internal/track"
)

type Params struct {
	// Table converts notes to Hz for every generator of one render.
	Table freq.Table
	// FoldTriangle selects the hardware triangle (half frequency, folded
	// ramp). Off reproduces the older unfolded triangle.
	FoldTriangle bool
	PulseDuty    float64
	NoiseSeed    int64
}

// DefaultParams emulates the hardware: quantized periods and the folded
// triangle.
func DefaultParams() Params {
	return Params{
		Table:        freq.Hardware{},
		FoldTriangle: true,
		PulseDuty:    0.5,
		NoiseSeed:    1,
	}
}

// LegacyParams is the simplified mode: equal temperament, unfolded triangle.
func LegacyParams() Params {
	return Params{
		Table:        freq.Equal{},
		FoldTriangle: false,
		PulseDuty:    0.5,
		NoiseSeed:    1,
	}
}

// Engine produces one filtered sample per call from a private copy of a
// track.
type Engine struct {
	params   Params
	length   int
	pulseA   *Pulse
	pulseB   *Pulse
	triangle *Triangle
	noise    *Noise
	chain    *effects.Chain
}

func New(tr *track.Track, params Params) *Engine {
	if params.Table == nil {
		params.Table = freq.Hardware{}
	}
	return &Engine{
		params:   params,
		length:   tr.Len(),
		pulseA:   NewPulse(tr.Channel(track.PulseA), params.Table, params.PulseDuty),
		pulseB:   NewPulse(tr.Channel(track.PulseB), params.Table, params.PulseDuty),
		triangle: NewTriangle(tr.Channel(track.Triangle), params.Table, params.FoldTriangle),
		noise:    NewNoise(tr.Channel(track.Noise), params.Table, params.NoiseSeed),
		chain:    effects.NewOutputChain(),
	}
}

// Len is the number of steps in the captured track.
func (e *Engine) Len() int { return e.length }

func (e *Engine) Params() Params { return e.params }

// AddEffect appends a stage after the output filters.
func (e *Engine) AddEffect(eff effects.Effector) {
	e.chain.Add(eff)
}

// Raw returns the unmixed channel outputs for sample n at step.
func (e *Engine) Raw(n int, step int) (p1, p2, t, nz float64) {
	return e.pulseA.Sample(n, step),
		e.pulseB.Sample(n, step),
		e.triangle.Sample(n, step),
		e.noise.Sample(n, step)
}

// RenderFrame mixes and filters sample n.
func (e *Engine) RenderFrame(n int, step int) float64 {
	p1, p2, t, nz := e.Raw(n, step)
	return e.chain.Process(Mix(p1, p2, t, nz))
}

// Reset zeroes filter state and restarts the noise sequence.
func (e *Engine) Reset() {
	e.chain.Reset()
	e.noise.Reseed()
}
