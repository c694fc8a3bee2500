package project

import (
	"errors"
	"io"

	"github.com/cbegin/nesstep-go/internal/track"
)

// ExportNSF is not implemented.
func ExportNSF(io.Writer, *track.Track, float64) error {
	return errors.ErrUnsupported
}

// ImportNSF is not implemented.
func ImportNSF(io.Reader) (*track.Track, error) {
	return nil, errors.ErrUnsupported
}
