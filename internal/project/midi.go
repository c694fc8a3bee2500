package project

import (
	"errors"
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/nesstep-go/internal/freq"
	"github.com/cbegin/nesstep-go/internal/track"
)

const (
	// ticksPerStep is the MIDI resolution; one step is one quarter note.
	ticksPerStep = 960
	noteVelocity = 100
)

// midiChannels assigns each voice a MIDI channel; noise goes to the
// General MIDI percussion channel.
var midiChannels = [track.ChannelCount]uint8{0, 1, 2, 9}

var ErrNoMetricTime = errors.New("midi file does not use metric ticks")

// ExportMIDI writes t as a type 1 Standard MIDI File: a tempo track and one
// track per voice, each selected step becoming a note one beat long. table
// is the frequency table the track plays with; keys carry the pitch it
// sounds at. Notes whose key falls outside 0..127 are dropped.
func ExportMIDI(w io.Writer, t *track.Track, tempo float64, table freq.Table) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerStep)

	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(tempo))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	end := uint32(t.Len()) * ticksPerStep
	for k := track.PulseA; k < track.ChannelCount; k++ {
		ch := midiChannels[k]
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(k.String()))
		var last uint32
		for i, step := range t.Channel(k) {
			note := step.NoteIndex()
			if note == track.NoNote {
				continue
			}
			key := table.Key(note)
			if key < 0 || key > 127 {
				continue
			}
			start := uint32(i) * ticksPerStep
			tr.Add(start-last, midi.NoteOn(ch, uint8(key), noteVelocity))
			tr.Add(ticksPerStep, midi.NoteOff(ch, uint8(key)))
			last = start + ticksPerStep
		}
		tr.Close(end - last)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("add %s track: %w", k, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// ImportMIDI reads a Standard MIDI File into a track. Notes are placed on
// the step their start falls in; notes outside the slot range and channels
// without a voice are skipped. The length is rounded up to whole pages of
// stepsPerPage. Keys are mapped back to notes of table. The returned tempo
// is 0 if the file has none.
func ImportMIDI(r io.Reader, stepsPerPage int, table freq.Table) (*track.Track, float64, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read midi: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || mt == 0 {
		return nil, 0, ErrNoMetricTime
	}
	perStep := uint64(mt)

	type hit struct {
		kind track.ChannelKind
		step int
		slot int
	}
	var hits []hit
	var endTicks uint64
	for _, tr := range s.Tracks {
		var abs uint64
		for _, ev := range tr {
			abs += uint64(ev.Delta)
			var ch, key, vel uint8
			if !midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
				continue
			}
			kind, ok := voiceForChannel(ch)
			if !ok {
				continue
			}
			slot := table.Note(int(key)) - track.NoteOffset
			if slot < 0 || slot >= track.SlotCount {
				continue
			}
			hits = append(hits, hit{kind: kind, step: int(abs / perStep), slot: slot})
		}
		if abs > endTicks {
			endTicks = abs
		}
	}

	length := int((endTicks + perStep - 1) / perStep)
	for _, h := range hits {
		if h.step+1 > length {
			length = h.step + 1
		}
	}
	if stepsPerPage > 0 {
		pages := (length + stepsPerPage - 1) / stepsPerPage
		if pages < 1 {
			pages = 1
		}
		length = pages * stepsPerPage
	}
	if length > MaxSteps {
		return nil, 0, fmt.Errorf("%w: midi file spans %d steps", ErrCorrupt, length)
	}

	t := track.New(length)
	for _, h := range hits {
		if !t.IsSelected(h.kind, h.step, h.slot) {
			if err := t.Select(h.kind, h.step, h.slot); err != nil {
				return nil, 0, err
			}
		}
	}

	var tempo float64
	if changes := s.TempoChanges(); len(changes) > 0 {
		tempo = changes[0].BPM
	}
	return t, tempo, nil
}

func voiceForChannel(ch uint8) (track.ChannelKind, bool) {
	for k, c := range midiChannels {
		if c == ch {
			return track.ChannelKind(k), true
		}
	}
	return 0, false
}
