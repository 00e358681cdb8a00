package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// MalgoCapturer captures from the default input device through miniaudio.
type MalgoCapturer struct {
	amplifier

	mu          sync.Mutex
	isCapturing bool
	ctx         *malgo.AllocatedContext
	device      *malgo.Device
	handler     ChunkHandler
	chunkSize   int
	sampleRate  int
	channels    int
	raw         []float32
	mono        []float32
}

// NewMalgoCapturer initialises a miniaudio context. Backend messages are
// forwarded to logger.
func NewMalgoCapturer(chunkSize, sampleRate, channels int, logger *slog.Logger) (*MalgoCapturer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("init malgo context: %w", err)
	}

	c := &MalgoCapturer{
		ctx:        ctx,
		chunkSize:  chunkSize,
		sampleRate: sampleRate,
		channels:   channels,
		raw:        make([]float32, chunkSize*channels),
		mono:       make([]float32, chunkSize),
	}
	c.SetAmplification(1)
	return c, nil
}

// Start begins audio capture
func (c *MalgoCapturer) Start(handler ChunkHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.handler = handler

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatF32
	config.Capture.Channels = uint32(c.channels)
	config.SampleRate = uint32(c.sampleRate)
	config.PeriodSizeInFrames = uint32(c.chunkSize)
	config.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(c.ctx.Context, config, malgo.DeviceCallbacks{
		Data: c.processAudio,
	})
	if err != nil {
		return fmt.Errorf("init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start capture device: %w", err)
	}

	c.device = device
	c.isCapturing = true
	return nil
}

// processAudio runs on the miniaudio callback thread and must not take c.mu.
func (c *MalgoCapturer) processAudio(_, input []byte, _ uint32) {
	if len(input) == 0 {
		return
	}
	c.raw = DecodeFloat32LE(c.raw, input)
	c.mono = Downmix(c.mono, c.raw, c.channels, c.Amplification())
	c.handler(c.mono)
}

// Stop ends audio capture
func (c *MalgoCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false

	err := c.device.Stop()
	c.device.Uninit()
	c.device = nil
	if err != nil {
		return fmt.Errorf("stop capture device: %w", err)
	}
	return nil
}

// Close stops capture if needed and frees the miniaudio context.
func (c *MalgoCapturer) Close() error {
	if c.IsCapturing() {
		if err := c.Stop(); err != nil {
			return err
		}
	}
	if err := c.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninit malgo context: %w", err)
	}
	c.ctx.Free()
	return nil
}

// IsCapturing returns true if currently capturing audio
func (c *MalgoCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// SampleRate returns the device sample rate.
func (c *MalgoCapturer) SampleRate() int { return c.sampleRate }
