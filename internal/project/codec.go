// Package project reads and writes tracks: the native binary project file,
// Standard MIDI Files, and the unsupported NSF format.
package project

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cbegin/nesstep-go/internal/track"
)

const (
	magic   = "NSTK"
	version = 1

	headerSize = len(magic) + 1 + 1 + 4

	// MaxSteps bounds the length read from a file so a corrupt header
	// cannot ask for an unbounded allocation.
	MaxSteps = 1 << 20
)

var (
	ErrBadMagic           = errors.New("not a track file")
	ErrUnsupportedVersion = errors.New("unsupported track file version")
	ErrTruncated          = errors.New("track file truncated")
	ErrCorrupt            = errors.New("track file corrupt")
	ErrTooLong            = errors.New("track too long to save")
)

// Encode serializes a track. The layout is little endian:
//
//	"NSTK" | version u8 | channels u8 | length u32 | channels*length u16 masks
//
// Tracks longer than MaxSteps are rejected, since Decode would refuse them.
func Encode(t *track.Track) ([]byte, error) {
	n := t.Len()
	if n > MaxSteps {
		return nil, fmt.Errorf("%w: %d steps, limit %d", ErrTooLong, n, MaxSteps)
	}
	out := make([]byte, headerSize+int(track.ChannelCount)*n*2)
	copy(out, magic)
	out[4] = version
	out[5] = byte(track.ChannelCount)
	binary.LittleEndian.PutUint32(out[6:], uint32(n))
	off := headerSize
	for k := track.PulseA; k < track.ChannelCount; k++ {
		for _, s := range t.Channel(k) {
			binary.LittleEndian.PutUint16(out[off:], s.Mask())
			off += 2
		}
	}
	return out, nil
}

// Decode parses data produced by Encode.
func Decode(data []byte) (*track.Track, error) {
	if len(data) < headerSize {
		if len(data) >= len(magic) && string(data[:len(magic)]) != magic {
			return nil, ErrBadMagic
		}
		return nil, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	if string(data[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}
	if data[4] != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[4])
	}
	if int(data[5]) != int(track.ChannelCount) {
		return nil, fmt.Errorf("%w: %d channels", ErrCorrupt, data[5])
	}
	n := binary.LittleEndian.Uint32(data[6:])
	if n == 0 || n > MaxSteps {
		return nil, fmt.Errorf("%w: length %d", ErrCorrupt, n)
	}
	body := data[headerSize:]
	want := int(track.ChannelCount) * int(n) * 2
	if len(body) < want {
		return nil, fmt.Errorf("%w: have %d of %d step bytes", ErrTruncated, len(body), want)
	}
	if len(body) > want {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(body)-want)
	}

	var chans [track.ChannelCount][]track.Step
	off := 0
	for k := range chans {
		chans[k] = make([]track.Step, n)
		for i := range chans[k] {
			mask := binary.LittleEndian.Uint16(body[off:])
			off += 2
			s, err := track.StepFromMask(mask)
			if err != nil {
				return nil, fmt.Errorf("%w: %s step %d: %v", ErrCorrupt, track.ChannelKind(k), i, err)
			}
			chans[k][i] = s
		}
	}
	return track.FromChannels(chans)
}
