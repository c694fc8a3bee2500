package track

import (
	"errors"
	"testing"
)

func TestStepSelectTogglesSameSlot(t *testing.T) {
	var s Step
	s.Select(3)
	if !s.IsSelected(3) {
		t.Fatalf("slot 3 should be selected")
	}
	s.Select(3)
	if !s.Empty() {
		t.Fatalf("second select should clear the step, got %d", s)
	}
}

func TestStepSelectIsExclusive(t *testing.T) {
	for i := 0; i < SlotCount; i++ {
		for j := 0; j < SlotCount; j++ {
			if i == j {
				continue
			}
			var s Step
			s.Select(i)
			s.Select(j)
			if !s.IsSelected(j) || s.IsSelected(i) {
				t.Fatalf("select(%d) then select(%d): want only %d set, got %d", i, j, j, s)
			}
			if s.Mask() != 1<<j {
				t.Fatalf("mask = %016b, want %016b", s.Mask(), uint16(1)<<j)
			}
		}
	}
}

func TestStepSelectIgnoresOutOfRange(t *testing.T) {
	var s Step
	s.Select(2)
	s.Select(-1)
	s.Select(SlotCount)
	if !s.IsSelected(2) {
		t.Fatalf("out of range select changed the step: %d", s)
	}
	if s.IsSelected(SlotCount) {
		t.Fatalf("IsSelected should be false out of range")
	}
}

func TestStepNoteIndex(t *testing.T) {
	var s Step
	if got := s.NoteIndex(); got != NoNote {
		t.Fatalf("empty step note = %d, want %d", got, NoNote)
	}
	for i := 0; i < SlotCount; i++ {
		s = 0
		s.Select(i)
		if got := s.NoteIndex(); got != i+NoteOffset {
			t.Fatalf("slot %d note = %d, want %d", i, got, i+NoteOffset)
		}
	}
}

func TestStepFromMask(t *testing.T) {
	cases := []struct {
		mask    uint16
		want    Step
		wantErr bool
	}{
		{mask: 0, want: 0},
		{mask: 1, want: 1},
		{mask: 1 << 15, want: 16},
		{mask: 0b101, wantErr: true},
		{mask: 0xFFFF, wantErr: true},
	}
	for _, tc := range cases {
		got, err := StepFromMask(tc.mask)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidMask) {
				t.Fatalf("mask %b: want ErrInvalidMask, got %v", tc.mask, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("mask %b: %v", tc.mask, err)
		}
		if got != tc.want {
			t.Fatalf("mask %b = %d, want %d", tc.mask, got, tc.want)
		}
		if got.Mask() != tc.mask {
			t.Fatalf("mask round trip %b -> %b", tc.mask, got.Mask())
		}
	}
}

func TestTrackResizeKeepsChannelsEqual(t *testing.T) {
	tr := New(16)
	if err := tr.Resize(48); err != nil {
		t.Fatalf("grow: %v", err)
	}
	for k := PulseA; k < ChannelCount; k++ {
		if n := len(tr.Channel(k)); n != 48 {
			t.Fatalf("%s length = %d, want 48", k, n)
		}
	}
	if err := tr.Resize(8); err != nil {
		t.Fatalf("shrink: %v", err)
	}
	for k := PulseA; k < ChannelCount; k++ {
		if n := len(tr.Channel(k)); n != 8 {
			t.Fatalf("%s length = %d, want 8", k, n)
		}
	}
}

func TestTrackShrinkPastZeroLeavesTrackUntouched(t *testing.T) {
	tr := New(16)
	if err := tr.Select(Triangle, 15, 4); err != nil {
		t.Fatalf("select: %v", err)
	}
	before := tr.Clone()
	for _, n := range []int{16, 17, 100} {
		if err := tr.Shrink(n); !errors.Is(err, ErrCannotShrink) {
			t.Fatalf("shrink %d: want ErrCannotShrink, got %v", n, err)
		}
	}
	if err := tr.Resize(0); !errors.Is(err, ErrCannotShrink) {
		t.Fatalf("resize 0: want ErrCannotShrink, got %v", err)
	}
	if !tr.Equal(before) {
		t.Fatalf("failed shrink mutated the track")
	}
	if tr.Len() != 16 {
		t.Fatalf("length = %d, want 16", tr.Len())
	}
}

func TestTrackSelectBounds(t *testing.T) {
	tr := New(4)
	if err := tr.Select(Noise, 4, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("step past end: want ErrOutOfRange, got %v", err)
	}
	if err := tr.Select(ChannelCount, 0, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("bad channel: want ErrOutOfRange, got %v", err)
	}
	if err := tr.Select(PulseA, 0, SlotCount); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("bad slot: want ErrOutOfRange, got %v", err)
	}
	if got := tr.NoteIndex(PulseA, 99); got != NoNote {
		t.Fatalf("note out of range = %d, want NoNote", got)
	}
}

func TestTrackCloneIsIndependent(t *testing.T) {
	tr := New(4)
	_ = tr.Select(PulseB, 1, 7)
	snap := tr.Clone()
	_ = tr.Select(PulseB, 1, 7)
	tr.Grow(4)
	if !snap.IsSelected(PulseB, 1, 7) {
		t.Fatalf("clone lost its selection after the original changed")
	}
	if snap.Len() != 4 {
		t.Fatalf("clone length = %d, want 4", snap.Len())
	}
	ch := snap.Channel(PulseB)
	ch[1] = 0
	if !snap.IsSelected(PulseB, 1, 7) {
		t.Fatalf("Channel must return a copy")
	}
}

func TestFromChannelsRejectsUnequalLengths(t *testing.T) {
	var chans [ChannelCount][]Step
	for i := range chans {
		chans[i] = make([]Step, 4)
	}
	chans[Noise] = make([]Step, 3)
	if _, err := FromChannels(chans); err == nil {
		t.Fatalf("expected error for unequal channels")
	}
}
