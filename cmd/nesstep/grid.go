package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cbegin/nesstep-go"
	"github.com/cbegin/nesstep-go/internal/freq"
	"github.com/cbegin/nesstep-go/internal/track"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle   = lipgloss.NewStyle().Width(10).Align(lipgloss.Left)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	measureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(4))
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteName names the pitch a note of table sounds at.
func noteName(table freq.Table, note int) string {
	if note < 0 {
		return "--"
	}
	key := table.Key(note)
	if key < 0 {
		return "--"
	}
	return fmt.Sprintf("%s%d", noteNames[key%12], key/12-1)
}

// renderGrid prints one block per page with a row per channel. A cell shows
// the slot of the step in hex, or a dot when the step is empty.
func renderGrid(t *track.Track, stepsPerPage, stepsPerMeasure int) string {
	var b strings.Builder
	pages := (t.Len() + stepsPerPage - 1) / stepsPerPage
	for page := 0; page < pages; page++ {
		b.WriteString(titleStyle.Render(fmt.Sprintf("page %d/%d", page+1, pages)) + "\n")
		for k := track.PulseA; k < track.ChannelCount; k++ {
			steps := t.Channel(k)
			b.WriteString(labelStyle.Render(k.String()))
			for i := page * stepsPerPage; i < (page+1)*stepsPerPage && i < len(steps); i++ {
				if i%stepsPerMeasure == 0 && i%stepsPerPage != 0 {
					b.WriteString(measureStyle.Render("|"))
				}
				if slot, ok := steps[i].Slot(); ok {
					b.WriteString(activeStyle.Render(fmt.Sprintf(" %X", slot)))
				} else {
					b.WriteString(idleStyle.Render(" ."))
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderStatus(pl *nesstep.Player) string {
	table := pl.Table()
	first := "--"
	for k := track.PulseA; k < track.ChannelCount && first == "--"; k++ {
		for i := 0; i < pl.Length(); i++ {
			if n := pl.NoteIndex(k, i); n != track.NoNote {
				first = noteName(table, n)
				break
			}
		}
	}
	return statusStyle.Render(fmt.Sprintf("%d steps, %d pages, %.0f BPM, volume %.0f, first note %s, plays %s",
		pl.Length(), pl.Pages(), pl.Tempo(), pl.Volume(), first, pl.PlaybackDuration()))
}
