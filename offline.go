package nesstep

import (
	"encoding/binary"
	"math"

	"github.com/viterin/vek/vek32"

	intnes "github.com/cbegin/nesstep-go/internal/nesapu"
	intseq "github.com/cbegin/nesstep-go/internal/sequencer"
	"github.com/cbegin/nesstep-go/internal/track"
)

// RenderSamples renders the whole playback of t as mono float32 at
// SampleRate, the same stream Play would send to the device.
func RenderSamples(t *track.Track, tempo, volume float64, params intnes.Params) []float32 {
	seq := intseq.New(t.Clone(), intseq.Options{
		Tempo:  tempo,
		Gain:   volume / 100,
		Params: params,
	})
	out := make([]float32, seq.Total())
	seq.Process(out)
	return out
}

// Render renders the live track with the player's tempo, volume and EQ.
func (p *Player) Render() []float32 {
	p.mu.Lock()
	seq := intseq.New(p.track.Clone(), p.renderOptionsLocked())
	p.mu.Unlock()
	out := make([]float32, seq.Total())
	seq.Process(out)
	return out
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	abs := vek32.Abs(samples)
	return vek32.Max(abs)
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
