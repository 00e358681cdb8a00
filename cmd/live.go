package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/0xlemi/livetuner/internal/audio"
	"github.com/0xlemi/livetuner/internal/engine"
	"github.com/0xlemi/livetuner/internal/ui"
)

type amplified interface {
	SetAmplification(factor float32)
}

// newCapturer opens the selected backend. The returned closer releases it.
func newCapturer(o *options, logger *slog.Logger) (audio.Capturer, func() error, error) {
	noop := func() error { return nil }
	switch o.backend {
	case "portaudio":
		c, err := audio.NewPortAudioCapturer(o.chunkSize, o.sampleRate, o.channels)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	case "malgo":
		c, err := audio.NewMalgoCapturer(o.chunkSize, o.sampleRate, o.channels, logger)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	case "tone":
		return audio.NewToneCapturer(o.toneFreq, o.chunkSize, o.sampleRate), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend %q", o.backend)
	}
}

func runLive(ctx context.Context, o *options) error {
	logOut := io.Discard
	if o.logFile != "" {
		f, err := tea.LogToFile(o.logFile, "livetuner")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(logOut, o.logLevel)
	if err != nil {
		return err
	}

	cfg, mode, err := o.engineConfig(logger)
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	eng.SetMode(mode)

	capturer, closeCapturer, err := newCapturer(o, logger)
	if err != nil {
		return fmt.Errorf("create audio capturer: %w", err)
	}
	defer func() {
		if err := closeCapturer(); err != nil {
			logger.Warn("closing capturer", "err", err)
		}
	}()
	if a, ok := capturer.(amplified); ok {
		a.SetAmplification(o.gain)
	}

	if err := eng.Start(float64(capturer.SampleRate())); err != nil {
		return err
	}
	if err := capturer.Start(eng.Process); err != nil {
		eng.Stop()
		return fmt.Errorf("start audio capture: %w", err)
	}
	logger.Info("capture started", "backend", o.backend, "sample_rate", capturer.SampleRate(), "chunk", o.chunkSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(ui.NewModel(eng), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		eng.Stop()
		if err := capturer.Stop(); err != nil && !errors.Is(err, audio.ErrNotCapturing) {
			return fmt.Errorf("stop audio capture: %w", err)
		}
		logger.Info("capture stopped")
		return nil
	})

	return g.Wait()
}
