package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cbegin/nesstep-go/internal/track"
)

// Extension is the file extension of native project files.
const Extension = ".rsf"

// Save writes t to path. The file is written next to its destination first
// and renamed, so a failed save leaves any existing file intact.
func Save(path string, t *track.Track) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save track: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save track: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save track: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save track: %w", err)
	}
	return nil
}

// Open reads a track from path.
func Open(path string) (*track.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("open track %s: %w", filepath.Base(path), err)
	}
	return t, nil
}
