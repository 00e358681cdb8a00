package audio

import (
	"encoding/binary"
	"math"
)

// NormalizeInt scales a signed integer sample of the given bit depth into [-1,1).
func NormalizeInt(v, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(v) / float64(int64(1)<<(bitDepth-1)))
}

// Downmix averages interleaved frames into mono and applies gain. dst is
// grown when it cannot hold len(in)/channels samples.
func Downmix(dst, in []float32, channels int, gain float32) []float32 {
	if channels < 1 {
		channels = 1
	}
	frames := len(in) / channels
	if cap(dst) < frames {
		dst = make([]float32, frames)
	}
	dst = dst[:frames]
	if channels == 1 {
		for i, s := range in[:frames] {
			dst[i] = s * gain
		}
		return dst
	}
	for i := range dst {
		sum := float32(0)
		for ch := 0; ch < channels; ch++ {
			sum += in[i*channels+ch]
		}
		dst[i] = sum / float32(channels) * gain
	}
	return dst
}

// DecodeFloat32LE decodes little-endian IEEE-754 samples from raw device bytes.
func DecodeFloat32LE(dst []float32, raw []byte) []float32 {
	n := len(raw) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return dst
}
