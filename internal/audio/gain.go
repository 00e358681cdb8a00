package audio

import (
	"math"
	"sync/atomic"
)

// MinAmplification is the smallest accepted gain factor.
const MinAmplification = 0.1

// amplifier holds a gain factor readable from a capture callback without
// locking.
type amplifier struct {
	bits atomic.Uint32 // math.Float32bits
}

// SetAmplification sets the audio amplification factor
func (a *amplifier) SetAmplification(factor float32) {
	// Ensure amplification is positive
	if factor < MinAmplification || math.IsNaN(float64(factor)) {
		factor = MinAmplification
	}
	a.bits.Store(math.Float32bits(factor))
}

// Amplification returns the current gain factor.
func (a *amplifier) Amplification() float32 {
	return math.Float32frombits(a.bits.Load())
}
