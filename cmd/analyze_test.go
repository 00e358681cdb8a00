package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTone(t *testing.T, freq float64, seconds float64) string {
	t.Helper()
	const rate = 44100
	data := make([]int, int(seconds*rate))
	for i := range data {
		data[i] = int(12000 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeReportsNote(t *testing.T) {
	path := writeTone(t, 440, 2)
	out, err := runCLI(t, "analyze", path, "--every", "20", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	last := lines[len(lines)-1]
	assert.Contains(t, last, "passes over 2.00s")
	assert.Contains(t, last, "A4")
}

func TestAnalyzeManualTarget(t *testing.T) {
	path := writeTone(t, 440, 1)
	out, err := runCLI(t, "analyze", path, "--target", "E", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "E4")
}

func TestAnalyzeRejectsBadFlags(t *testing.T) {
	path := writeTone(t, 440, 0.1)
	tests := [][]string{
		{"analyze", path, "--reference", "0"},
		{"analyze", path, "--hp-cutoff", "-1"},
		{"analyze", path, "--fft-size", "1000"},
		{"analyze", path, "--target", "H"},
		{"analyze", path, "--every", "0"},
		{"analyze", path, "--log-level", "loud"},
		{"analyze", filepath.Join(t.TempDir(), "missing.wav")},
	}
	for _, args := range tests {
		_, err := runCLI(t, args...)
		assert.Error(t, err, strings.Join(args, " "))
	}
}
