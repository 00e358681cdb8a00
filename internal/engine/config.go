package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Errors
var (
	ErrInvalidConfig  = errors.New("invalid engine configuration")
	ErrAlreadyRunning = errors.New("engine session already running")
)

// Recommended reference pitch bounds; values outside are accepted with a warning.
const (
	MinRecommendedReference = 415.0
	MaxRecommendedReference = 466.0
)

// Config holds the engine settings fixed for its lifetime, plus the initial
// values of the settings that may change mid-session.
type Config struct {
	FFTSize        int     // analysis window length, power of two
	HighPassCutoff float64 // Hz
	LowPassCutoff  float64 // Hz; also bounds harmonic scoring
	ReferencePitch float64 // A4 in Hz
	FilterEnabled  bool
	NoiseFloor     float64 // spectral magnitude gate, 0 disables
	Logger         *slog.Logger
}

// DefaultConfig returns the settings used by the CLI when no flags are given.
func DefaultConfig() Config {
	return Config{
		FFTSize:        2048,
		HighPassCutoff: 40,
		LowPassCutoff:  1800,
		ReferencePitch: 440,
		FilterEnabled:  true,
	}
}

// Validate checks the static settings.
func (c Config) Validate() error {
	if c.FFTSize < 4 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: fft size %d is not a power of two >= 4", ErrInvalidConfig, c.FFTSize)
	}
	if !positive(c.HighPassCutoff) {
		return fmt.Errorf("%w: high-pass cutoff %v Hz", ErrInvalidConfig, c.HighPassCutoff)
	}
	if !positive(c.LowPassCutoff) {
		return fmt.Errorf("%w: low-pass cutoff %v Hz", ErrInvalidConfig, c.LowPassCutoff)
	}
	if err := validateReference(c.ReferencePitch); err != nil {
		return err
	}
	if c.NoiseFloor < 0 || math.IsNaN(c.NoiseFloor) {
		return fmt.Errorf("%w: noise floor %v", ErrInvalidConfig, c.NoiseFloor)
	}
	return nil
}

func validateReference(hz float64) error {
	if !positive(hz) {
		return fmt.Errorf("%w: reference pitch %v Hz", ErrInvalidConfig, hz)
	}
	return nil
}

func validateSampleRate(rate float64) error {
	if !positive(rate) {
		return fmt.Errorf("%w: sample rate %v Hz", ErrInvalidConfig, rate)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
