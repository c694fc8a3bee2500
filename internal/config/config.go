// Package config holds the session settings that live outside the track:
// tempo, volume, page geometry and output choices.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type FrequencyMode string

const (
	// FrequencyHardware quantizes pitch to the console's period table.
	FrequencyHardware FrequencyMode = "hardware"
	// FrequencyEqual is the simplified equal temperament mode.
	FrequencyEqual FrequencyMode = "equal"
)

type Config struct {
	Tempo           float64       `yaml:"tempo"`
	Volume          float64       `yaml:"volume"`
	StepsPerMeasure int           `yaml:"steps_per_measure"`
	MeasuresPerPage int           `yaml:"measures_per_page"`
	MaxPages        int           `yaml:"max_pages"`
	Frequency       FrequencyMode `yaml:"frequency"`
	Backend         string        `yaml:"backend"`
	// NoiseSeed seeds the noise channel; 0 picks a new seed per playback.
	NoiseSeed int64 `yaml:"noise_seed"`
}

// Default returns the settings a new session starts with. A step lasts one
// beat, so 960 BPM plays sixteen steps per second.
func Default() Config {
	return Config{
		Tempo:           960,
		Volume:          100,
		StepsPerMeasure: 4,
		MeasuresPerPage: 4,
		MaxPages:        8,
		Frequency:       FrequencyHardware,
		Backend:         "ebiten",
	}
}

// StepsPerPage is the number of steps one editor page shows.
func (c Config) StepsPerPage() int {
	return c.StepsPerMeasure * c.MeasuresPerPage
}

// MaxSteps is the longest track the geometry allows.
func (c Config) MaxSteps() int {
	return c.StepsPerPage() * c.MaxPages
}

func (c Config) Validate() error {
	var errs []error
	if c.Tempo <= 0 {
		errs = append(errs, fmt.Errorf("tempo must be positive, got %v", c.Tempo))
	}
	if c.Volume < 0 || c.Volume > 100 {
		errs = append(errs, fmt.Errorf("volume must be within 0..100, got %v", c.Volume))
	}
	if c.StepsPerMeasure <= 0 || c.MeasuresPerPage <= 0 || c.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("page geometry must be positive, got %dx%dx%d", c.StepsPerMeasure, c.MeasuresPerPage, c.MaxPages))
	}
	switch c.Frequency {
	case FrequencyHardware, FrequencyEqual:
	default:
		errs = append(errs, fmt.Errorf("unknown frequency mode %q (expected hardware|equal)", c.Frequency))
	}
	return errors.Join(errs...)
}

// Parse decodes YAML on top of the defaults, so a file only needs the keys
// it changes.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Frequency = FrequencyMode(strings.ToLower(string(cfg.Frequency)))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
