// Package freq converts note numbers into oscillator frequencies.
package freq

import "math"

// ClockRate is the NTSC console CPU clock in Hz.
const ClockRate = 1789773.0

// Table maps a note number to a frequency in Hz. A result of 0 means silence.
// Key and Note convert between the table's note numbers and MIDI key
// numbers (69 = A4) of the same pitch.
type Table interface {
	Freq(note int) float64
	Key(note int) int
	Note(key int) int
}

// Equal is twelve-tone equal temperament anchored at note 69 = 440 Hz.
type Equal struct{}

func (Equal) Freq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// Equal note numbers are MIDI keys.
func (Equal) Key(note int) int { return note }

func (Equal) Note(key int) int { return key }

// Hardware quantizes pitch to the timer periods the pulse channels can
// actually produce. Index 0 is A1 (55 Hz), one semitone per entry.
type Hardware struct{}

// periods holds the 11-bit timer values for 80 semitones starting at A1.
var periods = [80]uint16{
	2033, 1919, 1811, 1709, 1613, 1523, 1437, 1356, 1280, 1208,
	1140, 1076, 1016, 959, 905, 854, 806, 761, 718, 678,
	640, 604, 570, 538, 507, 479, 452, 427, 403, 380,
	359, 338, 319, 301, 284, 268, 253, 239, 225, 213,
	201, 189, 179, 169, 159, 150, 142, 134, 126, 119,
	112, 106, 100, 94, 89, 84, 79, 75, 70, 66,
	63, 59, 56, 52, 49, 47, 44, 41, 39, 37,
	35, 33, 31, 29, 27, 26, 24, 23, 21, 20,
}

// Period returns the timer period for note, or false if the note is not in
// the table.
func Period(note int) (uint16, bool) {
	if note < 0 || note >= len(periods) {
		return 0, false
	}
	return periods[note], true
}

// hardwareKeyOffset is the MIDI key of period[0] (A1).
const hardwareKeyOffset = 33

// Len returns the number of notes the hardware table covers.
func Len() int { return len(periods) }

func (Hardware) Freq(note int) float64 {
	p, ok := Period(note)
	if !ok {
		return 0
	}
	return ClockRate / (16 * (float64(p) + 1))
}

func (Hardware) Key(note int) int { return note + hardwareKeyOffset }

func (Hardware) Note(key int) int { return key - hardwareKeyOffset }
