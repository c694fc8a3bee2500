// Package track holds the step grid edited by the user and read by the
// renderer: four fixed channels of equal length.
package track

import (
	"errors"
	"fmt"
)

// ChannelKind names one of the four emulated voices.
type ChannelKind int

const (
	PulseA ChannelKind = iota
	PulseB
	Triangle
	Noise
	ChannelCount
)

func (k ChannelKind) String() string {
	switch k {
	case PulseA:
		return "pulse-a"
	case PulseB:
		return "pulse-b"
	case Triangle:
		return "triangle"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("channel(%d)", int(k))
	}
}

func (k ChannelKind) Valid() bool { return k >= 0 && k < ChannelCount }

var (
	ErrCannotShrink = errors.New("cannot shrink track")
	ErrOutOfRange   = errors.New("track position out of range")
)

// Track is the full step sequence. All channels always have the same length.
type Track struct {
	channels [ChannelCount][]Step
}

// New returns an empty track with length steps per channel. Lengths below 1
// are raised to 1.
func New(length int) *Track {
	if length < 1 {
		length = 1
	}
	t := &Track{}
	for i := range t.channels {
		t.channels[i] = make([]Step, length)
	}
	return t
}

// FromChannels builds a track from existing channel data. The slices are
// copied.
func FromChannels(channels [ChannelCount][]Step) (*Track, error) {
	n := len(channels[0])
	if n < 1 {
		return nil, fmt.Errorf("%w: empty channel", ErrOutOfRange)
	}
	t := &Track{}
	for i, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("channel %s has %d steps, want %d", ChannelKind(i), len(ch), n)
		}
		t.channels[i] = append([]Step(nil), ch...)
	}
	return t, nil
}

// Len returns the number of steps in each channel.
func (t *Track) Len() int {
	return len(t.channels[0])
}

// Channel returns a copy of the steps of one channel.
func (t *Track) Channel(k ChannelKind) []Step {
	if !k.Valid() {
		return nil
	}
	return append([]Step(nil), t.channels[k]...)
}

func (t *Track) Step(k ChannelKind, step int) (Step, error) {
	if err := t.check(k, step); err != nil {
		return 0, err
	}
	return t.channels[k][step], nil
}

// Select toggles a slot of one step, see Step.Select.
func (t *Track) Select(k ChannelKind, step int, slot int) error {
	if err := t.check(k, step); err != nil {
		return err
	}
	if slot < 0 || slot >= SlotCount {
		return fmt.Errorf("%w: slot %d", ErrOutOfRange, slot)
	}
	t.channels[k][step].Select(slot)
	return nil
}

func (t *Track) IsSelected(k ChannelKind, step int, slot int) bool {
	if t.check(k, step) != nil {
		return false
	}
	return t.channels[k][step].IsSelected(slot)
}

// NoteIndex returns the note of a step, or NoNote if the step is empty or
// out of range.
func (t *Track) NoteIndex(k ChannelKind, step int) int {
	if t.check(k, step) != nil {
		return NoNote
	}
	return t.channels[k][step].NoteIndex()
}

// Resize sets every channel to length steps. It fails without touching any
// channel when length is below 1.
func (t *Track) Resize(length int) error {
	cur := t.Len()
	switch {
	case length > cur:
		t.Grow(length - cur)
	case length < cur:
		return t.Shrink(cur - length)
	}
	return nil
}

// Grow appends n empty steps to every channel.
func (t *Track) Grow(n int) {
	if n <= 0 {
		return
	}
	for i := range t.channels {
		t.channels[i] = append(t.channels[i], make([]Step, n)...)
	}
}

// Shrink removes n steps from the end of every channel. Every channel must
// keep at least one step, otherwise nothing changes.
func (t *Track) Shrink(n int) error {
	if n <= 0 {
		return nil
	}
	for i := range t.channels {
		if len(t.channels[i]) <= n {
			return fmt.Errorf("%w: removing %d of %d steps", ErrCannotShrink, n, len(t.channels[i]))
		}
	}
	for i := range t.channels {
		t.channels[i] = t.channels[i][:len(t.channels[i])-n]
	}
	return nil
}

// Clone returns a deep copy that shares no memory with t.
func (t *Track) Clone() *Track {
	c := &Track{}
	for i, ch := range t.channels {
		c.channels[i] = append([]Step(nil), ch...)
	}
	return c
}

func (t *Track) Equal(o *Track) bool {
	if t == nil || o == nil {
		return t == o
	}
	for i := range t.channels {
		a, b := t.channels[i], o.channels[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// ActiveSteps counts the steps holding a note across all channels.
func (t *Track) ActiveSteps() int {
	n := 0
	for _, ch := range t.channels {
		for _, s := range ch {
			if !s.Empty() {
				n++
			}
		}
	}
	return n
}

func (t *Track) check(k ChannelKind, step int) error {
	if !k.Valid() {
		return fmt.Errorf("%w: channel %d", ErrOutOfRange, int(k))
	}
	if step < 0 || step >= len(t.channels[k]) {
		return fmt.Errorf("%w: step %d of %d", ErrOutOfRange, step, len(t.channels[k]))
	}
	return nil
}
