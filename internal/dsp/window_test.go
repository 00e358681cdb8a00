package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(from, to int) []float32 {
	out := make([]float32, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, float32(i))
	}
	return out
}

func TestWindowFillsInOrder(t *testing.T) {
	w := NewWindow(8)
	w.Push(seq(0, 3))
	assert.False(t, w.IsFull())
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, seq(0, 3), w.Snapshot(nil))

	w.Push(seq(3, 8))
	assert.True(t, w.IsFull())
	assert.Equal(t, seq(0, 8), w.Snapshot(nil))
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(8)
	for i := 0; i < 20; i += 3 {
		w.Push(seq(i, i+3))
	}
	assert.Equal(t, 8, w.Len())
	assert.Equal(t, seq(13, 21), w.Snapshot(nil))
}

func TestWindowChunkLargerThanCapacity(t *testing.T) {
	w := NewWindow(4)
	w.Push(seq(0, 2))
	w.Push(seq(10, 20))
	assert.True(t, w.IsFull())
	assert.Equal(t, seq(16, 20), w.Snapshot(nil))

	w.Push(seq(20, 21))
	assert.Equal(t, seq(17, 21), w.Snapshot(nil))
}

func TestWindowSnapshotReusesDst(t *testing.T) {
	w := NewWindow(4)
	w.Push(seq(0, 4))
	dst := make([]float32, 4)
	got := w.Snapshot(dst)
	assert.Equal(t, &dst[0], &got[0])
}

func TestWindowReset(t *testing.T) {
	w := NewWindow(4)
	w.Push(seq(0, 6))
	w.Reset()
	assert.Zero(t, w.Len())
	assert.False(t, w.IsFull())
	assert.Empty(t, w.Snapshot(nil))

	w.Push(seq(1, 2))
	assert.Equal(t, seq(1, 2), w.Snapshot(nil))
}
