package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/cbegin/nesstep-go"
	"github.com/cbegin/nesstep-go/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML session config")
		projPath   = flag.String("file", "", "project file (.rsf) to load")
		midiIn     = flag.String("import-midi", "", "standard MIDI file to import instead of -file")
		tempo      = flag.Float64("tempo", 0, "tempo in BPM, one step per beat (overrides config)")
		volume     = flag.Float64("volume", -1, "master volume 0..100 (overrides config)")
		backend    = flag.String("backend", "", "audio backend: ebiten|oto|headless (overrides config)")
		freqMode   = flag.String("freq", "", "frequency table: hardware|equal (overrides config)")
		seed       = flag.Int64("seed", 0, "noise seed, 0 = random")
		wavOut     = flag.String("wav", "", "render to a mono float WAV file instead of playing")
		midiOut    = flag.String("midi", "", "export the track as a standard MIDI file")
		saveOut    = flag.String("save", "", "save the track as a project file")
		showGrid   = flag.Bool("grid", false, "print the step grid")
		play       = flag.Bool("play", false, "play even when an output file is requested")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *tempo > 0 {
		cfg.Tempo = *tempo
	}
	if *volume >= 0 {
		cfg.Volume = *volume
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *freqMode != "" {
		cfg.Frequency = config.FrequencyMode(strings.ToLower(*freqMode))
	}
	if *seed != 0 {
		cfg.NoiseSeed = *seed
	}

	pl, err := nesstep.NewPlayer(nesstep.WithConfig(cfg))
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *midiIn != "":
		if err := pl.ImportMIDI(*midiIn); err != nil {
			log.Fatal(err)
		}
	case *projPath != "":
		if err := pl.LoadTrack(*projPath); err != nil {
			log.Fatal(err)
		}
	default:
		if err := loadDemo(pl); err != nil {
			log.Fatal(err)
		}
	}

	if *showGrid {
		fmt.Print(renderGrid(pl.Snapshot(), cfg.StepsPerPage(), cfg.StepsPerMeasure))
	}
	fmt.Println(renderStatus(pl))

	wrote := false
	if *saveOut != "" {
		if err := pl.SaveTrack(*saveOut); err != nil {
			log.Fatal(err)
		}
		log.Printf("saved %s", *saveOut)
		wrote = true
	}
	if *midiOut != "" {
		if err := pl.ExportMIDI(*midiOut); err != nil {
			log.Fatal(err)
		}
		log.Printf("exported %s", *midiOut)
		wrote = true
	}
	if *wavOut != "" {
		samples := pl.Render()
		if err := os.WriteFile(*wavOut, nesstep.EncodeWAVFloat32LE(samples, nesstep.SampleRate, 1), 0o644); err != nil {
			log.Fatal(err)
		}
		log.Printf("rendered %d samples (peak %.3f) to %s", len(samples), nesstep.Peak(samples), *wavOut)
		wrote = true
	}
	if wrote && !*play {
		return
	}

	events := pl.Watch()
	if err := pl.Play(); err != nil {
		log.Fatal(err)
	}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	for {
		select {
		case <-interrupt:
			pl.Stop()
		case ev := <-events:
			switch ev.Kind {
			case nesstep.EventPlaybackError:
				log.Printf("playback error: %v", ev.Err)
			case nesstep.EventPlaybackEnded:
				fmt.Println("playback completed")
				return
			}
		}
	}
}

// loadDemo writes a short arpeggio so the binary makes a sound with no
// arguments.
func loadDemo(pl *nesstep.Player) error {
	lead := []int{0, 3, 7, 12, 7, 3, 0, -1, 5, 8, 12, 15, 12, 8, 5, -1}
	for step, slot := range lead {
		if step >= pl.Length() {
			break
		}
		if slot < 0 {
			continue
		}
		if err := pl.Select(nesstep.PulseA, step, slot); err != nil {
			return err
		}
	}
	for step := 0; step < pl.Length(); step += 4 {
		if err := pl.Select(nesstep.Triangle, step, 0); err != nil {
			return err
		}
		if step+2 >= pl.Length() {
			break
		}
		if err := pl.Select(nesstep.Noise, step+2, 10); err != nil {
			return err
		}
	}
	return nil
}
