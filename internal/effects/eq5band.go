package effects

import (
	"math"
	"sync/atomic"
)

// EQGains holds the five band gains of a master EQ. Gains are stored as
// bit-cast float64 so the editor can change them while a render reads them.
type EQGains struct {
	g [5]atomic.Uint64
}

// NewEQGains returns gains at unity.
func NewEQGains() *EQGains {
	gs := &EQGains{}
	for i := range gs.g {
		gs.g[i].Store(math.Float64bits(1.0))
	}
	return gs
}

// SetGain sets the gain for band (0-4). 1.0 = unity, 0.0 = silence, 2.0 = +6dB.
func (gs *EQGains) SetGain(band int, gain float64) {
	if band >= 0 && band < 5 {
		if gain < 0 {
			gain = 0
		}
		gs.g[band].Store(math.Float64bits(gain))
	}
}

// Gain returns the current gain for band (0-4).
func (gs *EQGains) Gain(band int) float64 {
	if band >= 0 && band < 5 {
		return math.Float64frombits(gs.g[band].Load())
	}
	return 1.0
}

// Flat reports whether every band is at unity.
func (gs *EQGains) Flat() bool {
	for i := range gs.g {
		if gs.Gain(i) != 1 {
			return false
		}
	}
	return true
}

// EQ5Band implements a 5-band equalizer.
// Bands are split at 200Hz, 800Hz, 2.5kHz, and 8kHz.
type EQ5Band struct {
	gains  *EQGains
	alphas [4]float64 // crossover filter coefficients
	lp     [4]float64 // lowpass state per crossover
}

var defaultCrossovers = [4]float64{200, 800, 2500, 8000}

// NewEQ5Band creates a 5-band EQ reading its gains from gains. A nil gains
// starts at unity.
func NewEQ5Band(sampleRate int, gains *EQGains) *EQ5Band {
	if gains == nil {
		gains = NewEQGains()
	}
	eq := &EQ5Band{gains: gains}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range defaultCrossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		eq.alphas[i] = dt / (rc + dt)
	}
	return eq
}

func (eq *EQ5Band) Gains() *EQGains { return eq.gains }

func (eq *EQ5Band) Process(x float64) float64 {
	// Four cascaded crossovers peel off one band each; the remainder is
	// the top band.
	var band [5]float64
	rem := x
	for i := 0; i < 4; i++ {
		eq.lp[i] += eq.alphas[i] * (rem - eq.lp[i])
		band[i] = eq.lp[i]
		rem -= band[i]
	}
	band[4] = rem

	var out float64
	for i := 0; i < 5; i++ {
		out += band[i] * eq.gains.Gain(i)
	}
	return out
}

func (eq *EQ5Band) Reset() {
	for i := range eq.lp {
		eq.lp[i] = 0
	}
}
