package nesstep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	intaudio "github.com/cbegin/nesstep-go/internal/audio"
	"github.com/cbegin/nesstep-go/internal/config"
	intfx "github.com/cbegin/nesstep-go/internal/effects"
	"github.com/cbegin/nesstep-go/internal/freq"
	intnes "github.com/cbegin/nesstep-go/internal/nesapu"
	"github.com/cbegin/nesstep-go/internal/project"
	intseq "github.com/cbegin/nesstep-go/internal/sequencer"
	"github.com/cbegin/nesstep-go/internal/track"
)

// SampleRate is the fixed output rate.
const SampleRate = intnes.SampleRate

// Channel identifies one of the four voices of a track.
type Channel = track.ChannelKind

const (
	PulseA   = track.PulseA
	PulseB   = track.PulseB
	Triangle = track.Triangle
	Noise    = track.Noise
)

// ErrTrackFull is returned when growing the track past the configured page
// limit.
var ErrTrackFull = errors.New("track is at its maximum length")

// PlaybackEvent carries playback events from Watch().
type PlaybackEvent struct {
	Kind int // EventPlaybackEnded or EventPlaybackError
	Err  error
}

const (
	EventPlaybackEnded int = iota
	EventPlaybackError
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	cfg       config.Config
	newSink   func() (intaudio.Sink, error)
	sampleTap func([]float32)
}

func WithConfig(cfg config.Config) PlayerOption {
	return func(pc *playerConfig) {
		pc.cfg = cfg
	}
}

// WithSink replaces the audio output. The factory is called once per Play;
// an error from it aborts that Play.
func WithSink(newSink func() (intaudio.Sink, error)) PlayerOption {
	return func(pc *playerConfig) {
		pc.newSink = newSink
	}
}

// WithSampleTap installs a callback invoked with each generated mono buffer.
// The callback runs on the playback goroutine; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(pc *playerConfig) {
		pc.sampleTap = tap
	}
}

// Player owns the live track edited by the UI and at most one playback
// session. Every playback renders a private copy of the track, so the track
// can be edited while it plays.
type Player struct {
	mu        sync.Mutex
	cfg       config.Config
	track     *track.Track
	tempo     float64
	volume    float64
	eq        *intfx.EQGains
	newSink   func() (intaudio.Sink, error)
	sampleTap func([]float32)
	session   *session
	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

// session is one background playback.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	seq    *intseq.Sequencer
}

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	pc := playerConfig{cfg: config.Default()}
	for _, opt := range opts {
		opt(&pc)
	}
	if err := pc.cfg.Validate(); err != nil {
		return nil, err
	}
	if pc.newSink == nil {
		backend, err := intaudio.ParseBackend(pc.cfg.Backend)
		if err != nil {
			return nil, err
		}
		pc.newSink = func() (intaudio.Sink, error) {
			return intaudio.NewSink(backend, SampleRate)
		}
	}
	return &Player{
		cfg:       pc.cfg,
		track:     track.New(pc.cfg.StepsPerPage()),
		tempo:     pc.cfg.Tempo,
		volume:    pc.cfg.Volume,
		eq:        intfx.NewEQGains(),
		newSink:   pc.newSink,
		sampleTap: pc.sampleTap,
	}, nil
}

// Config returns the session settings the player was built with.
func (p *Player) Config() config.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// tappedSource forwards every rendered buffer to a tap.
type tappedSource struct {
	*intseq.Sequencer
	tap func([]float32)
}

func (s tappedSource) Process(dst []float32) {
	s.Sequencer.Process(dst)
	s.tap(dst)
}

// Play stops any running playback and starts rendering the current track in
// the background. It does not wait for the previous playback to wind down.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	sink, err := p.newSink()
	if err != nil {
		return fmt.Errorf("acquire audio output: %w", err)
	}

	seq := intseq.New(p.track.Clone(), p.renderOptionsLocked())
	var src intaudio.SampleSource = seq
	if p.sampleTap != nil {
		src = tappedSource{Sequencer: seq, tap: p.sampleTap}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{ctx: ctx, cancel: cancel, done: make(chan struct{}), seq: seq}
	p.session = s
	go p.run(s, sink, src)
	return nil
}

func (p *Player) run(s *session, sink intaudio.Sink, src intaudio.SampleSource) {
	defer close(s.done)
	err := sink.Play(s.ctx, src)
	s.cancel()

	p.mu.Lock()
	// A session cancelled by a later Play has been replaced, not ended.
	replaced := p.session != nil && p.session != s
	if p.session == s {
		p.session = nil
	}
	p.mu.Unlock()

	if err != nil {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackError, Err: err})
	}
	if !replaced {
		p.sendEvent(PlaybackEvent{Kind: EventPlaybackEnded})
	}
}

func (p *Player) renderOptionsLocked() intseq.Options {
	params := paramsFor(p.cfg.Frequency)
	params.NoiseSeed = p.cfg.NoiseSeed
	if params.NoiseSeed == 0 {
		params.NoiseSeed = time.Now().UnixNano()
	}
	opts := intseq.Options{
		Tempo:  p.tempo,
		Gain:   p.volume / 100,
		Params: params,
	}
	if !p.eq.Flat() {
		opts.Effects = append(opts.Effects, intfx.NewEQ5Band(SampleRate, p.eq))
	}
	return opts
}

func paramsFor(mode config.FrequencyMode) intnes.Params {
	if mode == config.FrequencyEqual {
		return intnes.LegacyParams()
	}
	return intnes.DefaultParams()
}

// Table is the note-to-frequency table the track plays with.
func (p *Player) Table() freq.Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	return paramsFor(p.cfg.Frequency).Table
}

// Stop signals the running playback to end. It returns immediately; the
// playback goroutine notices at its next buffer.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.session == nil {
		return
	}
	p.session.cancel()
	p.session = nil
}

// Playing reports whether a playback session is active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// Wait blocks until the current playback ends. It returns immediately if
// nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s != nil {
		<-s.done
	}
}

// Watch returns a channel that receives playback events. EventPlaybackEnded
// is sent when playback finishes or is stopped, not when Play replaces a
// running playback. The channel is
// buffered (cap 8) and events are dropped when it is full. Only the most
// recent Watch() channel receives events; call Watch before Play.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

func (p *Player) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// PlaybackDuration is how long Play renders the current track for.
func (p *Player) PlaybackDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return intseq.Duration(p.track.Len(), p.tempo)
}

// SetVolume sets the master volume, 0..100. It applies from the next Play.
func (p *Player) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetTempo sets beats per minute. One step lasts one beat.
func (p *Player) SetTempo(bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", bpm)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tempo = bpm
	return nil
}

func (p *Player) Tempo() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo
}

// SetEQBand sets the gain for a master EQ band (0-4). 1.0 = unity.
// Band frequencies: 0=<200Hz, 1=200-800Hz, 2=800-2.5kHz, 3=2.5-8kHz, 4=>8kHz.
// While the EQ is flat it is left out of the render; a change takes effect
// immediately if the EQ was already engaged, otherwise on the next Play.
func (p *Player) SetEQBand(band int, gain float64) {
	p.eq.SetGain(band, gain)
}

// EQBand returns the current gain for a master EQ band (0-4).
func (p *Player) EQBand(band int) float64 {
	return p.eq.Gain(band)
}

// Select toggles a slot of one step of the live track.
func (p *Player) Select(ch Channel, step int, slot int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.Select(ch, step, slot)
}

func (p *Player) IsSelected(ch Channel, step int, slot int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.IsSelected(ch, step, slot)
}

// NoteIndex returns the note at a step, or track.NoNote.
func (p *Player) NoteIndex(ch Channel, step int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.NoteIndex(ch, step)
}

// Length is the number of steps per channel.
func (p *Player) Length() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.Len()
}

// Pages is the number of editor pages the track spans.
func (p *Player) Pages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	spp := p.cfg.StepsPerPage()
	return (p.track.Len() + spp - 1) / spp
}

// Snapshot returns a copy of the live track.
func (p *Player) Snapshot() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.Clone()
}

// Resize sets the track length, bounded by the page limit.
func (p *Player) Resize(length int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if length > p.cfg.MaxSteps() {
		return fmt.Errorf("%w: %d steps requested, limit %d", ErrTrackFull, length, p.cfg.MaxSteps())
	}
	return p.track.Resize(length)
}

// AddPage appends n empty pages.
func (p *Player) AddPage(n int) error {
	if n <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	add := n * p.cfg.StepsPerPage()
	if p.track.Len()+add > p.cfg.MaxSteps() {
		return fmt.Errorf("%w: %d pages", ErrTrackFull, p.cfg.MaxPages)
	}
	p.track.Grow(add)
	return nil
}

// RemovePage drops the last n pages. At least one step must remain.
func (p *Player) RemovePage(n int) error {
	if n <= 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track.Shrink(n * p.cfg.StepsPerPage())
}

// NewTrack replaces the track with one empty page.
func (p *Player) NewTrack() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.track = track.New(p.cfg.StepsPerPage())
}

// SaveTrack writes the live track to a project file.
func (p *Player) SaveTrack(path string) error {
	return project.Save(path, p.Snapshot())
}

// LoadTrack replaces the live track with a project file. On error the
// current track is kept.
func (p *Player) LoadTrack(path string) error {
	t, err := project.Open(path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.track = t
	return nil
}

// ExportMIDI writes the live track as a Standard MIDI File.
func (p *Player) ExportMIDI(path string) error {
	p.mu.Lock()
	t, tempo := p.track.Clone(), p.tempo
	table := paramsFor(p.cfg.Frequency).Table
	p.mu.Unlock()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export midi: %w", err)
	}
	if err := project.ExportMIDI(f, t, tempo, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ImportMIDI replaces the live track with the notes of a MIDI file and
// takes over its tempo when it has one. On error nothing changes.
func (p *Player) ImportMIDI(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("import midi: %w", err)
	}
	defer f.Close()
	p.mu.Lock()
	spp := p.cfg.StepsPerPage()
	table := paramsFor(p.cfg.Frequency).Table
	p.mu.Unlock()
	t, tempo, err := project.ImportMIDI(f, spp, table)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.track = t
	if tempo > 0 {
		p.tempo = tempo
	}
	return nil
}

// ExportNSF is not supported.
func (p *Player) ExportNSF(string) error {
	return errors.ErrUnsupported
}

// ImportNSF is not supported.
func (p *Player) ImportNSF(string) error {
	return errors.ErrUnsupported
}
