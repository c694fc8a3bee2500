package track

import (
	"errors"
	"math/bits"
)

const (
	// SlotCount is the number of candidate notes a single step can hold.
	SlotCount = 16
	// NoteOffset maps slot 0 to a note number. Note numbers index the
	// frequency table, so slot 0 sounds as A4 with the hardware period table
	// and as C2 with the equal tempered one.
	NoteOffset = 36
	// NoNote is returned by NoteIndex for an empty step.
	NoNote = -1
)

var ErrInvalidMask = errors.New("step mask must have at most one valid bit set")

// Step is one time slot in a channel. It holds at most one selected slot:
// the zero value is empty and k stands for slot k-1.
type Step uint8

// Select toggles slot i. Selecting a slot drops whatever was selected before.
func (s *Step) Select(i int) {
	if i < 0 || i >= SlotCount {
		return
	}
	if s.IsSelected(i) {
		*s = 0
		return
	}
	*s = Step(i + 1)
}

func (s Step) IsSelected(i int) bool {
	return i >= 0 && i < SlotCount && int(s) == i+1
}

// Slot returns the selected slot, if any.
func (s Step) Slot() (int, bool) {
	if s == 0 {
		return 0, false
	}
	return int(s) - 1, true
}

// NoteIndex returns the note number for the selected slot, or NoNote.
func (s Step) NoteIndex() int {
	slot, ok := s.Slot()
	if !ok {
		return NoNote
	}
	return slot + NoteOffset
}

func (s Step) Empty() bool { return s == 0 }

// Mask returns the step in the bitmask form used on disk.
func (s Step) Mask() uint16 {
	slot, ok := s.Slot()
	if !ok {
		return 0
	}
	return 1 << slot
}

// StepFromMask converts a bitmask back into a Step.
func StepFromMask(mask uint16) (Step, error) {
	if mask == 0 {
		return 0, nil
	}
	if bits.OnesCount16(mask) != 1 {
		return 0, ErrInvalidMask
	}
	return Step(bits.TrailingZeros16(mask) + 1), nil
}
