package audio

import "math"

// SilenceDB is reported for an empty or all-zero buffer.
const SilenceDB = -100

// Level calculates RMS and dB level
func Level(samples []float32) (rms, db float32) {
	if len(samples) == 0 {
		return 0, SilenceDB
	}

	sumSquares := float64(0)
	for _, sample := range samples {
		sumSquares += float64(sample) * float64(sample)
	}
	rms = float32(math.Sqrt(sumSquares / float64(len(samples))))

	// dB = 20 * log10(amplitude), guarded against log(0)
	if rms > 0.0000001 {
		db = 20 * float32(math.Log10(float64(rms)))
	} else {
		db = SilenceDB
	}
	return rms, db
}
