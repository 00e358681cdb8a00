package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned when a file is not a readable PCM WAV.
var ErrInvalidWAV = errors.New("not a valid PCM wav file")

// FileSource replays a PCM WAV file as a stream of mono chunks.
type FileSource struct {
	path       string
	chunkSize  int
	sampleRate int
	channels   int
	bitDepth   int
}

// OpenWAV validates the header of the WAV file at path.
func OpenWAV(path string, chunkSize int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() || d.NumChans < 1 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &FileSource{
		path:       path,
		chunkSize:  chunkSize,
		sampleRate: int(d.SampleRate),
		channels:   int(d.NumChans),
		bitDepth:   int(d.BitDepth),
	}, nil
}

// SampleRate returns the file sample rate.
func (s *FileSource) SampleRate() int { return s.sampleRate }

// Channels returns the number of interleaved channels in the file.
func (s *FileSource) Channels() int { return s.channels }

// Stream decodes the file and calls handler with each mono chunk, as fast
// as the handler returns. The last chunk may be short. It stops early when
// ctx is cancelled.
func (s *FileSource) Stream(ctx context.Context, handler ChunkHandler) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return fmt.Errorf("%w: %s", ErrInvalidWAV, s.path)
	}

	buf := &goaudio.IntBuffer{
		Format:         d.Format(),
		Data:           make([]int, s.chunkSize*s.channels),
		SourceBitDepth: s.bitDepth,
	}
	interleaved := make([]float32, len(buf.Data))
	mono := make([]float32, s.chunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := d.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode %s: %w", s.path, err)
		}
		if n >= s.channels {
			for i, v := range buf.Data[:n] {
				if s.bitDepth == 8 {
					v -= 128 // 8-bit PCM is unsigned
				}
				interleaved[i] = NormalizeInt(v, s.bitDepth)
			}
			mono = Downmix(mono, interleaved[:n], s.channels, 1)
			handler(mono)
		}
		if n == 0 || err != nil {
			return nil
		}
	}
}
