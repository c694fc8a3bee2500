package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.StepsPerPage() != 16 {
		t.Fatalf("steps per page = %d, want 16", cfg.StepsPerPage())
	}
	if cfg.MaxSteps() != 128 {
		t.Fatalf("max steps = %d, want 128", cfg.MaxSteps())
	}
}

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte("tempo: 180\nfrequency: Equal\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Tempo != 180 {
		t.Fatalf("tempo = %v, want 180", cfg.Tempo)
	}
	if cfg.Frequency != FrequencyEqual {
		t.Fatalf("frequency = %q, want equal", cfg.Frequency)
	}
	if cfg.Volume != 100 || cfg.MaxPages != 8 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := []string{
		"tempo: 0\n",
		"volume: 101\n",
		"max_pages: -1\n",
		"frequency: just\n",
		"tempo: [1, 2]\n",
	}
	for _, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("Parse(%q) should fail", in)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	cfg := Default()
	cfg.Tempo = 240
	cfg.NoiseSeed = 99
	cfg.Backend = "oto"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch\nwant %+v\ngot  %+v", cfg, got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("missing file should surface a not-exist error, got %v", err)
	}
}

