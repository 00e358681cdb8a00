package audio

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, rate, channels int, frames []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           frames,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}

func TestFileSourceStreamsMonoChunks(t *testing.T) {
	const rate = 8000
	data := make([]int, 1000)
	for i := range data {
		data[i] = int(16384 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	path := writeWAV(t, rate, 1, data)

	src, err := OpenWAV(path, 256)
	require.NoError(t, err)
	assert.Equal(t, rate, src.SampleRate())
	assert.Equal(t, 1, src.Channels())

	var got []float32
	var sizes []int
	require.NoError(t, src.Stream(context.Background(), func(chunk []float32) {
		got = append(got, chunk...)
		sizes = append(sizes, len(chunk))
	}))

	assert.Equal(t, []int{256, 256, 256, 232}, sizes)
	require.Len(t, got, len(data))
	for i, v := range data {
		require.InDelta(t, float32(v)/32768, got[i], 1e-6, "sample %d", i)
	}
}

func TestFileSourceDownmixesStereo(t *testing.T) {
	data := []int{16384, 0, -16384, -16384, 8192, 8192, 0, 16384}
	path := writeWAV(t, 8000, 2, data)

	src, err := OpenWAV(path, 16)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Channels())

	var got []float32
	require.NoError(t, src.Stream(context.Background(), func(chunk []float32) {
		got = append(got, chunk...)
	}))
	assert.Equal(t, []float32{0.25, -0.5, 0.25, 0.25}, got)
}

func TestFileSourceHonoursCancellation(t *testing.T) {
	path := writeWAV(t, 8000, 1, make([]int, 4096))
	src, err := OpenWAV(path, 128)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err = src.Stream(ctx, func([]float32) {
		calls++
		cancel()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestOpenWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not RIFF data"), 0o644))

	_, err := OpenWAV(path, 128)
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = OpenWAV(filepath.Join(t.TempDir(), "missing.wav"), 128)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
