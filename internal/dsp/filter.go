package dsp

import "math"

// FilterState holds the running state of a one-pole filter.
type FilterState struct {
	PrevInput  float32
	PrevOutput float32
}

// Reset zeroes the filter memory.
func (s *FilterState) Reset() {
	s.PrevInput = 0
	s.PrevOutput = 0
}

// HighPassAlpha returns the one-pole high-pass coefficient rc/(rc+dt).
// A non-positive cutoff or sample rate yields 1, which passes the input through.
func HighPassAlpha(cutoff, sampleRate float32) float32 {
	if cutoff <= 0 || sampleRate <= 0 {
		return 1
	}
	rc := 1 / (2 * math.Pi * float64(cutoff))
	dt := 1 / float64(sampleRate)
	return float32(rc / (rc + dt))
}

// LowPassAlpha returns the one-pole low-pass coefficient dt/(rc+dt).
// A non-positive cutoff or sample rate yields 1, which passes the input through.
func LowPassAlpha(cutoff, sampleRate float32) float32 {
	if cutoff <= 0 || sampleRate <= 0 {
		return 1
	}
	rc := 1 / (2 * math.Pi * float64(cutoff))
	dt := 1 / float64(sampleRate)
	return float32(dt / (rc + dt))
}

// HighPass runs one sample through a one-pole high-pass filter.
func HighPass(in float32, s *FilterState, cutoff, sampleRate float32) float32 {
	if cutoff <= 0 || sampleRate <= 0 {
		return in
	}
	return highPassStep(in, s, HighPassAlpha(cutoff, sampleRate))
}

// LowPass runs one sample through a one-pole low-pass filter.
func LowPass(in float32, s *FilterState, cutoff, sampleRate float32) float32 {
	if cutoff <= 0 || sampleRate <= 0 {
		return in
	}
	return lowPassStep(in, s, LowPassAlpha(cutoff, sampleRate))
}

// FilterSample applies the high-pass then the low-pass stage to raw. A
// non-finite raw sample leaves both states untouched and repeats the last
// stage output.
func FilterSample(raw float32, hp, lp *FilterState, cutoffHP, cutoffLP, sampleRate float32) float32 {
	if !finite(raw) {
		return lp.PrevOutput
	}
	return LowPass(HighPass(raw, hp, cutoffHP, sampleRate), lp, cutoffLP, sampleRate)
}

// A non-finite input or result leaves the state untouched and repeats the
// last valid output.
func highPassStep(in float32, s *FilterState, alpha float32) float32 {
	if !finite(in) {
		return s.PrevOutput
	}
	out := alpha * (s.PrevOutput + in - s.PrevInput)
	if !finite(out) {
		return s.PrevOutput
	}
	s.PrevInput = in
	s.PrevOutput = out
	return out
}

func lowPassStep(in float32, s *FilterState, alpha float32) float32 {
	if !finite(in) {
		return s.PrevOutput
	}
	out := s.PrevOutput + alpha*(in-s.PrevOutput)
	if !finite(out) {
		return s.PrevOutput
	}
	s.PrevOutput = out
	return out
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Stage is the high-pass + low-pass pair with coefficients computed once
// per session. Call Configure before use.
type Stage struct {
	HP FilterState
	LP FilterState

	hpAlpha float32
	lpAlpha float32
}

// Configure sets the coefficients for the given cutoffs and sample rate and
// zeroes both filters.
func (st *Stage) Configure(cutoffHP, cutoffLP, sampleRate float32) {
	st.hpAlpha = HighPassAlpha(cutoffHP, sampleRate)
	st.lpAlpha = LowPassAlpha(cutoffLP, sampleRate)
	st.Reset()
}

// Reset zeroes both filters.
func (st *Stage) Reset() {
	st.HP.Reset()
	st.LP.Reset()
}

// Process filters src into dst, which must be at least len(src) long, and
// returns how many non-finite samples were replaced by the previous output.
// dst may alias src.
func (st *Stage) Process(dst, src []float32) (replaced int) {
	for i, x := range src {
		if !finite(x) {
			dst[i] = st.LP.PrevOutput
			replaced++
			continue
		}
		dst[i] = lowPassStep(highPassStep(x, &st.HP, st.hpAlpha), &st.LP, st.lpAlpha)
	}
	return replaced
}
