package engine

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/0xlemi/livetuner/internal/dsp"
	"github.com/0xlemi/livetuner/internal/pitch"
)

// Reading is the published result of one analysis pass.
type Reading struct {
	Frequency float64 // smoothed, Hz
	Note      pitch.NoteInfo
}

var silentReading = &Reading{Note: pitch.NoteInfo{Name: pitch.NoPitch}}

type modeSetting struct {
	mode pitch.Mode
}

// Engine turns a stream of sample chunks into tuner readings.
//
// Process must only be called from the capture context. Latest, Waveform
// and the setters may be called from any goroutine. Start must not overlap
// with Process; stop the capture source first.
type Engine struct {
	cfg Config
	log *slog.Logger

	// Settings, written by any goroutine.
	reference     atomic.Uint64 // math.Float64bits
	filterEnabled atomic.Bool
	mode          atomic.Pointer[modeSetting]

	// Session control.
	running atomic.Bool
	session atomic.Uint64

	// Published snapshots.
	latest atomic.Pointer[Reading]
	waveMu sync.Mutex
	wave   []float32 // guarded by waveMu

	// Capture-context state, reset on Start.
	sampleRate float64
	filters    dsp.Stage
	window     *dsp.Window
	scope      *dsp.Window
	analyzer   *pitch.Analyzer
	smoother   pitch.Smoother
	scratch    []float32 // filtered chunk
	snapshot   []float32 // analysis window copy
	lastValid  float32   // last finite raw sample, used when filtering is off
	replaced   int
}

// New validates cfg and returns a stopped engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		cfg:      cfg,
		log:      logger.With("component", "engine"),
		window:   dsp.NewWindow(cfg.FFTSize),
		scope:    dsp.NewWindow(cfg.FFTSize / 2),
		snapshot: make([]float32, cfg.FFTSize),
		wave:     make([]float32, 0, cfg.FFTSize/2),
	}
	e.reference.Store(math.Float64bits(cfg.ReferencePitch))
	e.filterEnabled.Store(cfg.FilterEnabled)
	e.mode.Store(&modeSetting{mode: pitch.Auto{}})
	e.latest.Store(silentReading)
	return e, nil
}

// Start begins a new session at sampleRate, reinitialising filters, window
// and smoother.
func (e *Engine) Start(sampleRate float64) error {
	if err := validateSampleRate(sampleRate); err != nil {
		return err
	}
	if e.running.Load() {
		return ErrAlreadyRunning
	}
	if e.cfg.LowPassCutoff >= sampleRate/2 {
		e.log.Warn("low-pass cutoff at or above nyquist, scoring the full spectrum",
			"cutoff", e.cfg.LowPassCutoff, "sample_rate", sampleRate)
	}

	analyzer, err := pitch.NewAnalyzer(e.cfg.FFTSize, sampleRate, e.cfg.LowPassCutoff, e.cfg.NoiseFloor)
	if err != nil {
		return err
	}
	e.analyzer = analyzer
	e.sampleRate = sampleRate
	e.filters.Configure(float32(e.cfg.HighPassCutoff), float32(e.cfg.LowPassCutoff), float32(sampleRate))
	e.window.Reset()
	e.scope.Reset()
	e.smoother.Reset()
	e.lastValid = 0
	e.replaced = 0

	e.latest.Store(silentReading)
	e.waveMu.Lock()
	e.wave = e.wave[:0]
	e.waveMu.Unlock()

	e.session.Add(1)
	e.running.Store(true)
	e.log.Info("session started",
		"sample_rate", sampleRate,
		"fft_size", e.cfg.FFTSize,
		"reference", e.ReferencePitch(),
		"filter", e.FilterEnabled(),
		"mode", e.Mode().String())
	return nil
}

// Stop ends the session. A chunk being processed concurrently is discarded.
func (e *Engine) Stop() {
	if !e.running.Swap(false) {
		return
	}
	e.session.Add(1)
	e.log.Info("session stopped")
}

// Running reports whether a session is active.
func (e *Engine) Running() bool { return e.running.Load() }

// Process consumes one chunk of raw samples. When the analysis window is
// full it runs one analysis pass and publishes a new reading.
func (e *Engine) Process(chunk []float32) {
	if !e.running.Load() || len(chunk) == 0 {
		return
	}
	session := e.session.Load()

	if cap(e.scratch) < len(chunk) {
		e.scratch = make([]float32, len(chunk))
	}
	filtered := e.scratch[:len(chunk)]
	if e.filterEnabled.Load() {
		e.replaced += e.filters.Process(filtered, chunk)
	} else {
		e.bypass(filtered, chunk)
	}
	if e.replaced > 0 {
		e.log.Debug("replaced non-finite samples", "count", e.replaced)
		e.replaced = 0
	}

	e.window.Push(filtered)
	e.scope.Push(filtered)

	var reading *Reading
	if e.window.IsFull() {
		e.snapshot = e.window.Snapshot(e.snapshot)
		estimate := e.analyzer.Analyze(e.snapshot)
		freq := e.smoother.Update(estimate)
		ref := e.ReferencePitch()
		reading = &Reading{
			Frequency: freq,
			Note:      e.Mode().Map(freq, ref),
		}
	}

	if !e.running.Load() || e.session.Load() != session {
		return
	}
	// Readers hold waveMu only for a bounded copy.
	e.waveMu.Lock()
	e.wave = e.scope.Snapshot(e.wave)
	e.waveMu.Unlock()
	if reading != nil {
		e.latest.Store(reading)
	}
}

func (e *Engine) bypass(dst, src []float32) {
	for i, x := range src {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			x = e.lastValid
			e.replaced++
		}
		e.lastValid = x
		dst[i] = x
	}
}

// Latest returns the most recently published reading.
func (e *Engine) Latest() Reading { return *e.latest.Load() }

// Waveform copies the last FFTSize/2 filtered samples, oldest first, into
// dst and returns the filled slice. dst is grown if it is too short.
func (e *Engine) Waveform(dst []float32) []float32 {
	e.waveMu.Lock()
	defer e.waveMu.Unlock()
	if cap(dst) < len(e.wave) {
		dst = make([]float32, len(e.wave))
	}
	dst = dst[:len(e.wave)]
	copy(dst, e.wave)
	return dst
}

// SampleRate returns the sample rate of the current or last session.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// FFTSize returns the analysis window length.
func (e *Engine) FFTSize() int { return e.cfg.FFTSize }

// SetMode switches between auto and manual note naming from the next pass.
func (e *Engine) SetMode(m pitch.Mode) {
	if m == nil {
		m = pitch.Auto{}
	}
	if man, ok := m.(pitch.Manual); ok && !man.Target.Valid() {
		e.log.Warn("ignoring manual mode with invalid target", "target", int(man.Target))
		return
	}
	e.mode.Store(&modeSetting{mode: m})
	e.log.Debug("mode changed", "mode", m.String())
}

// Mode returns the current tuning mode.
func (e *Engine) Mode() pitch.Mode { return e.mode.Load().mode }

// SetReferencePitch changes the A4 reference. Non-positive values are
// rejected and the previous reference is kept.
func (e *Engine) SetReferencePitch(hz float64) error {
	if err := validateReference(hz); err != nil {
		e.log.Warn("rejected reference pitch", "hz", hz)
		return err
	}
	if hz < MinRecommendedReference || hz > MaxRecommendedReference {
		e.log.Warn("reference pitch outside recommended range", "hz", hz,
			"min", MinRecommendedReference, "max", MaxRecommendedReference)
	}
	e.reference.Store(math.Float64bits(hz))
	return nil
}

// ReferencePitch returns the current A4 reference in Hz.
func (e *Engine) ReferencePitch() float64 {
	return math.Float64frombits(e.reference.Load())
}

// SetFilterEnabled turns the high-pass/low-pass stage on or off.
func (e *Engine) SetFilterEnabled(on bool) { e.filterEnabled.Store(on) }

// FilterEnabled reports whether raw samples are filtered.
func (e *Engine) FilterEnabled() bool { return e.filterEnabled.Load() }
