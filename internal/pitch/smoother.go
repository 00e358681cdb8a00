package pitch

import "math"

// Smooth blends a new estimate into the previous value with fixed weights.
func Smooth(previous, estimate float64) float64 {
	return previous*0.8 + estimate*0.2
}

// Smoother is the running frequency accumulator.
type Smoother struct {
	value float64
}

// Update blends estimate in and returns the new value. Non-finite estimates
// are ignored.
func (s *Smoother) Update(estimate float64) float64 {
	if math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		return s.value
	}
	s.value = Smooth(s.value, estimate)
	return s.value
}

// Value returns the current smoothed frequency.
func (s *Smoother) Value() float64 { return s.value }

// Reset clears the accumulator.
func (s *Smoother) Reset() { s.value = 0 }
