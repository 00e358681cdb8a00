package audio

import (
	"errors"
	"math"
	"sync"
	"time"
)

// Errors
var (
	ErrAlreadyCapturing = errors.New("audio capture already started")
	ErrNotCapturing     = errors.New("audio capture not started")
)

// ChunkHandler receives each captured chunk of mono samples in [-1,1].
// It runs on the capture context; the slice is only valid for the call.
type ChunkHandler func(chunk []float32)

// Capturer defines the interface for push-based audio capture
type Capturer interface {
	// Start begins audio capture, delivering chunks to handler
	Start(handler ChunkHandler) error

	// Stop ends audio capture. No handler call is in flight once it returns.
	Stop() error

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool

	// SampleRate returns the capture sample rate in Hz
	SampleRate() int
}

// ToneCapturer synthesizes a sine wave at real-time pace. It stands in for
// a microphone when no input device is available.
type ToneCapturer struct {
	amplifier

	mu          sync.Mutex
	isCapturing bool
	frequency   float64
	amplitude   float32
	chunkSize   int
	sampleRate  int
	phase       float64
	stop        chan struct{}
	done        chan struct{}
}

// NewToneCapturer creates a tone source.
func NewToneCapturer(frequency float64, chunkSize, sampleRate int) *ToneCapturer {
	c := &ToneCapturer{
		frequency:  frequency,
		amplitude:  0.5,
		chunkSize:  chunkSize,
		sampleRate: sampleRate,
	}
	c.SetAmplification(1)
	return c
}

// Start begins emitting chunks every chunkSize/sampleRate seconds.
func (c *ToneCapturer) Start(handler ChunkHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isCapturing {
		return ErrAlreadyCapturing
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.isCapturing = true

	interval := time.Duration(float64(time.Second) * float64(c.chunkSize) / float64(c.sampleRate))
	go c.run(handler, interval, c.stop, c.done)
	return nil
}

func (c *ToneCapturer) run(handler ChunkHandler, interval time.Duration, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	chunk := make([]float32, c.chunkSize)
	step := 2 * math.Pi * c.frequency / float64(c.sampleRate)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			level := c.amplitude * c.Amplification()
			for i := range chunk {
				chunk[i] = level * float32(math.Sin(c.phase))
				c.phase = math.Mod(c.phase+step, 2*math.Pi)
			}
			handler(chunk)
		}
	}
}

// Stop ends the tone and waits for the generator goroutine.
func (c *ToneCapturer) Stop() error {
	c.mu.Lock()
	if !c.isCapturing {
		c.mu.Unlock()
		return ErrNotCapturing
	}
	c.isCapturing = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done
	return nil
}

// IsCapturing returns true if currently capturing audio
func (c *ToneCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// SampleRate returns the synthesis sample rate.
func (c *ToneCapturer) SampleRate() int { return c.sampleRate }
