package audio

import (
	"context"
	"fmt"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				audioContextErr = fmt.Errorf("audio context: %v", r)
			}
		}()
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// EbitenSink plays through ebiten's audio context. Ebiten only takes stereo
// float32, so mono samples are duplicated.
type EbitenSink struct {
	ctx *ebitaudio.Context
}

func NewEbitenSink(sampleRate int) (*EbitenSink, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &EbitenSink{ctx: ctx}, nil
}

func (s *EbitenSink) Play(ctx context.Context, src SampleSource) error {
	reader := NewStreamReader(ctx, src, 2)
	pl, err := s.ctx.NewPlayerF32(reader)
	if err != nil {
		return fmt.Errorf("ebiten player: %w", err)
	}
	defer pl.Close()
	pl.Play()
	waitPlayback(ctx, reader, pl)
	pl.Pause()
	return nil
}
