package project

import (
	"bytes"
	"math"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/nesstep-go/internal/freq"
	"github.com/cbegin/nesstep-go/internal/track"
)

func TestMIDIRoundTrip(t *testing.T) {
	tr := track.New(32)
	_ = tr.Select(track.PulseA, 0, 0)
	_ = tr.Select(track.PulseA, 1, 4)
	_ = tr.Select(track.PulseB, 7, 15)
	_ = tr.Select(track.Triangle, 16, 2)
	_ = tr.Select(track.Noise, 31, 9)

	var buf bytes.Buffer
	if err := ExportMIDI(&buf, tr, 180, freq.Hardware{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, tempo, err := ImportMIDI(&buf, 16, freq.Hardware{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if math.Abs(tempo-180) > 0.01 {
		t.Fatalf("tempo = %v, want 180", tempo)
	}
	if got.Len() != tr.Len() {
		t.Fatalf("length = %d, want %d", got.Len(), tr.Len())
	}
	if !got.Equal(tr) {
		for k := track.PulseA; k < track.ChannelCount; k++ {
			t.Logf("%s want %v got %v", k, tr.Channel(k), got.Channel(k))
		}
		t.Fatalf("imported track differs")
	}
}

func TestMIDIImportRoundsUpToPages(t *testing.T) {
	tr := track.New(5)
	_ = tr.Select(track.Triangle, 4, 1)
	var buf bytes.Buffer
	if err := ExportMIDI(&buf, tr, 960, freq.Equal{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, _, err := ImportMIDI(&buf, 16, freq.Hardware{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Len() != 16 {
		t.Fatalf("length = %d, want 16", got.Len())
	}
	if !got.IsSelected(track.Triangle, 4, 1) {
		t.Fatalf("note lost on import")
	}
}

func TestMIDIImportRejectsGarbage(t *testing.T) {
	if _, _, err := ImportMIDI(bytes.NewReader([]byte("not a midi file")), 16, freq.Hardware{}); err == nil {
		t.Fatalf("expected error")
	}
}

// firstKey returns the key of the first note-on in the file.
func firstKey(t *testing.T, data []byte) uint8 {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			var ch, key, vel uint8
			if midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
				return key
			}
		}
	}
	t.Fatalf("no note in file")
	return 0
}

func TestMIDIKeyIsSoundingPitch(t *testing.T) {
	cases := []struct {
		name  string
		table freq.Table
	}{
		{"hardware", freq.Hardware{}},
		{"equal", freq.Equal{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := track.New(1)
			_ = tr.Select(track.PulseA, 0, 0)
			var buf bytes.Buffer
			if err := ExportMIDI(&buf, tr, 120, tc.table); err != nil {
				t.Fatalf("export: %v", err)
			}
			hz := tc.table.Freq(track.NoteOffset)
			want := math.Round(69 + 12*math.Log2(hz/440))
			if got := firstKey(t, buf.Bytes()); float64(got) != want {
				t.Fatalf("slot 0 exported as key %d, sounds at %.2f Hz = key %v", got, hz, want)
			}
			back, _, err := ImportMIDI(bytes.NewReader(buf.Bytes()), 16, tc.table)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if !back.IsSelected(track.PulseA, 0, 0) {
				t.Fatalf("slot 0 lost on import")
			}
		})
	}
}
