package pitch

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Harmonic weights for the fundamental, second and third partial.
const (
	weightFundamental = 1.0
	weightSecond      = 0.5
	weightThird       = 0.33
)

// flatPeakRatio is the parabola curvature, relative to the tallest of the
// three bins, below which a peak is treated as flat and left unrefined.
const flatPeakRatio = 1e-9

// ErrInvalidSize is returned for an analysis size that is not a power of two.
var ErrInvalidSize = errors.New("fft size must be a power of two >= 4")

// Analyzer estimates the fundamental frequency of a full analysis window.
// It keeps its scratch buffers between passes and is not safe for
// concurrent use.
type Analyzer struct {
	size          int
	sampleRate    float64
	lowPassCutoff float64
	noiseFloor    float64

	taper      []float64 // Hann coefficients
	input      []float64
	magnitudes []float64
}

// NewAnalyzer creates an analyzer for windows of size samples. Bins above
// lowPassCutoff are never scored. A pass whose largest scored magnitude is
// at or below noiseFloor reports no pitch.
func NewAnalyzer(size int, sampleRate, lowPassCutoff, noiseFloor float64) (*Analyzer, error) {
	if size < 4 || size&(size-1) != 0 {
		return nil, ErrInvalidSize
	}
	return &Analyzer{
		size:          size,
		sampleRate:    sampleRate,
		lowPassCutoff: lowPassCutoff,
		noiseFloor:    noiseFloor,
		taper:         window.Hann(size),
		input:         make([]float64, size),
		magnitudes:    make([]float64, size/2),
	}, nil
}

// Size returns the expected window length.
func (a *Analyzer) Size() int { return a.size }

// Analyze returns the refined fundamental in Hz, or 0 when the window holds
// no usable pitch. samples must hold exactly Size() values.
func (a *Analyzer) Analyze(samples []float32) float64 {
	if len(samples) != a.size {
		return 0
	}

	for i, s := range samples {
		a.input[i] = float64(s) * a.taper[i]
	}
	spectrum := fft.FFTReal(a.input)
	for i := range a.magnitudes {
		a.magnitudes[i] = cmplx.Abs(spectrum[i])
	}

	limit := ScoreLimit(a.size, a.sampleRate, a.lowPassCutoff)
	if a.noiseFloor > 0 && maxMagnitude(a.magnitudes, limit) <= a.noiseFloor {
		return 0
	}

	best := HarmonicPeak(a.magnitudes, limit)
	if best == 0 {
		return 0
	}
	freq := RefineBin(a.magnitudes, best) * a.sampleRate / float64(a.size)
	if !(freq > 0) || math.IsInf(freq, 0) {
		return 0
	}
	return freq
}

// Spectrum returns the magnitudes of the last pass, DC at index 0. The
// slice is overwritten by the next call to Analyze.
func (a *Analyzer) Spectrum() []float64 { return a.magnitudes }

// ScoreLimit is the exclusive upper bin for harmonic scoring:
// min(size/2, floor(cutoff*size/sampleRate)).
func ScoreLimit(size int, sampleRate, cutoff float64) int {
	bins := size / 2
	if sampleRate <= 0 {
		return bins
	}
	limit := math.Floor(cutoff * float64(size) / sampleRate)
	if limit >= float64(bins) || math.IsNaN(limit) {
		return bins
	}
	if limit < 0 {
		return 0
	}
	return int(limit)
}

// HarmonicPeak returns the bin in [1, limit) with the highest harmonic
// product score. Ties keep the lowest bin; 0 means no bin scored above zero.
func HarmonicPeak(mags []float64, limit int) int {
	n := len(mags)
	if limit > n {
		limit = n
	}

	best, bestScore := 0, 0.0
	for i := 1; i < limit; i++ {
		score := weightFundamental * mags[i]
		if 2*i < n {
			score += weightSecond * mags[2*i]
		}
		if 3*i < n {
			score += weightThird * mags[3*i]
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// RefineBin returns a fractional bin index from a parabola through
// mags[i-1], mags[i], mags[i+1]. Bins next to DC or the last bin, flat
// peaks, and vertices more than one bin away return i.
func RefineBin(mags []float64, i int) float64 {
	if i <= 1 || i >= len(mags)-1 {
		return float64(i)
	}
	a, b, c := mags[i-1], mags[i], mags[i+1]
	denom := a - 2*b + c
	scale := math.Max(a, math.Max(b, c))
	if !(scale > 0) || math.Abs(denom) <= flatPeakRatio*scale {
		return float64(i)
	}
	p := 0.5 * (a - c) / denom
	if math.IsNaN(p) || math.Abs(p) > 1 {
		return float64(i)
	}
	return float64(i) + p
}

func maxMagnitude(mags []float64, limit int) float64 {
	m := 0.0
	for i := 1; i < limit && i < len(mags); i++ {
		m = math.Max(m, mags[i])
	}
	return m
}
