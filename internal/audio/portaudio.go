package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioCapturer implements audio capture using PortAudio
type PortAudioCapturer struct {
	amplifier

	mu          sync.Mutex
	isCapturing bool
	stream      *portaudio.Stream
	handler     ChunkHandler
	chunkSize   int
	sampleRate  int
	channels    int
	mono        []float32
}

// NewPortAudioCapturer creates a new audio capturer using PortAudio.
// chunkSize is the number of frames delivered per callback.
func NewPortAudioCapturer(chunkSize, sampleRate, channels int) (*PortAudioCapturer, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	c := &PortAudioCapturer{
		chunkSize:  chunkSize,
		sampleRate: sampleRate,
		channels:   channels,
		mono:       make([]float32, chunkSize),
	}
	c.SetAmplification(1)
	return c, nil
}

// Start begins audio capture
func (c *PortAudioCapturer) Start(handler ChunkHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.handler = handler

	// Open default input stream
	stream, err := portaudio.OpenDefaultStream(
		c.channels, // input channels
		0,          // output channels (we don't need output)
		float64(c.sampleRate),
		c.chunkSize,    // frames per buffer
		c.processAudio, // callback function
	)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start input stream: %w", err)
	}

	c.stream = stream
	c.isCapturing = true
	return nil
}

// Stop ends audio capture. PortAudio lets the running callback finish
// before the stream stops.
func (c *PortAudioCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("stop input stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("close input stream: %w", err)
	}
	return nil
}

// Close stops capture if needed and terminates PortAudio.
func (c *PortAudioCapturer) Close() error {
	if c.IsCapturing() {
		if err := c.Stop(); err != nil {
			return err
		}
	}
	return portaudio.Terminate()
}

// processAudio is the callback function for audio processing. It must not
// take c.mu: Stop holds it while the callback drains.
func (c *PortAudioCapturer) processAudio(in, _ []float32) {
	c.mono = Downmix(c.mono, in, c.channels, c.Amplification())
	c.handler(c.mono)
}

// IsCapturing returns true if currently capturing audio
func (c *PortAudioCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// SampleRate returns the stream sample rate.
func (c *PortAudioCapturer) SampleRate() int { return c.sampleRate }
