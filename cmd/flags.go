package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/0xlemi/livetuner/internal/engine"
	"github.com/0xlemi/livetuner/internal/pitch"
)

// options holds every command-line setting.
type options struct {
	// Engine
	fftSize    int
	reference  float64
	hpCutoff   float64
	lpCutoff   float64
	noFilter   bool
	noiseFloor float64
	target     string

	// Capture
	backend    string
	sampleRate int
	chunkSize  int
	channels   int
	gain       float32
	toneFreq   float64

	// Logging
	logLevel string
	logFile  string

	// analyze
	every int
}

func addEngineFlags(fs *pflag.FlagSet, o *options) {
	def := engine.DefaultConfig()
	fs.IntVar(&o.fftSize, "fft-size", def.FFTSize, "analysis window length (power of two)")
	fs.Float64Var(&o.reference, "reference", def.ReferencePitch, "reference pitch for A4 in Hz")
	fs.Float64Var(&o.hpCutoff, "hp-cutoff", def.HighPassCutoff, "high-pass cutoff in Hz")
	fs.Float64Var(&o.lpCutoff, "lp-cutoff", def.LowPassCutoff, "low-pass cutoff in Hz, also the highest frequency scored")
	fs.BoolVar(&o.noFilter, "no-filter", false, "bypass the high-pass/low-pass noise filter")
	fs.Float64Var(&o.noiseFloor, "noise-floor", def.NoiseFloor, "spectral magnitude treated as silence (0 disables)")
	fs.StringVar(&o.target, "target", "", "start in manual mode tuning to this note (e.g. E, F#, Bb)")
	fs.IntVar(&o.chunkSize, "chunk-size", 1024, "samples per capture chunk")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func addCaptureFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVar(&o.backend, "backend", "portaudio", "capture backend: portaudio, malgo, tone")
	fs.IntVar(&o.sampleRate, "sample-rate", 44100, "capture sample rate in Hz")
	fs.IntVar(&o.channels, "channels", 1, "input channels, averaged to mono")
	fs.Float32Var(&o.gain, "gain", 1, "input amplification factor")
	fs.Float64Var(&o.toneFreq, "tone-freq", 440, "frequency of the tone backend in Hz")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to this file (discarded when empty)")
}

// engineConfig builds the engine configuration and the initial mode.
func (o *options) engineConfig(logger *slog.Logger) (engine.Config, pitch.Mode, error) {
	cfg := engine.Config{
		FFTSize:        o.fftSize,
		HighPassCutoff: o.hpCutoff,
		LowPassCutoff:  o.lpCutoff,
		ReferencePitch: o.reference,
		FilterEnabled:  !o.noFilter,
		NoiseFloor:     o.noiseFloor,
		Logger:         logger,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	if o.chunkSize < 1 {
		return cfg, nil, fmt.Errorf("chunk size must be positive, got %d", o.chunkSize)
	}

	var mode pitch.Mode = pitch.Auto{}
	if o.target != "" {
		pc, err := pitch.ParsePitchClass(o.target)
		if err != nil {
			return cfg, nil, fmt.Errorf("--target: %w", err)
		}
		mode = pitch.Manual{Target: pc}
	}
	return cfg, mode, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
