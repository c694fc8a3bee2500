package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

var (
	otoOnce       sync.Once
	otoContext    *oto.Context
	otoErr        error
	otoSampleRate int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("oto context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

// OtoSink plays mono float32 directly through oto.
type OtoSink struct {
	ctx *oto.Context
}

func NewOtoSink(sampleRate int) (*OtoSink, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &OtoSink{ctx: ctx}, nil
}

func (s *OtoSink) Play(ctx context.Context, src SampleSource) error {
	reader := NewStreamReader(ctx, src, 1)
	pl := s.ctx.NewPlayer(reader)
	defer pl.Close()
	pl.Play()
	waitPlayback(ctx, reader, pl)
	pl.Pause()
	if err := pl.Err(); err != nil {
		return fmt.Errorf("oto player: %w", err)
	}
	return nil
}
