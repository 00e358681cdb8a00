package dsp

// Window is a fixed-capacity FIFO of the most recent samples, kept as a
// ring over a single backing array.
type Window struct {
	buf    []float32
	cursor int // next write position
	count  int
}

// NewWindow returns an empty window holding at most capacity samples.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float32, capacity)}
}

// Push appends samples, evicting the oldest ones once the window is full.
func (w *Window) Push(samples []float32) {
	size := len(w.buf)
	// Only the tail can survive when the chunk is larger than the window.
	if len(samples) >= size {
		copy(w.buf, samples[len(samples)-size:])
		w.cursor = 0
		w.count = size
		return
	}
	for _, s := range samples {
		w.buf[w.cursor] = s
		w.cursor++
		if w.cursor == size {
			w.cursor = 0
		}
	}
	w.count += len(samples)
	if w.count > size {
		w.count = size
	}
}

// Len returns the number of buffered samples.
func (w *Window) Len() int { return w.count }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// IsFull reports whether the window holds Cap() samples.
func (w *Window) IsFull() bool { return w.count == len(w.buf) }

// Snapshot copies the buffered samples, oldest first, into dst and returns
// the filled slice. dst is grown if it is too short.
func (w *Window) Snapshot(dst []float32) []float32 {
	if cap(dst) < w.count {
		dst = make([]float32, w.count)
	}
	dst = dst[:w.count]
	start := w.cursor - w.count
	if start < 0 {
		start += len(w.buf)
	}
	n := copy(dst, w.buf[start:min(start+w.count, len(w.buf))])
	copy(dst[n:], w.buf[:w.count-n])
	return dst
}

// Reset empties the window.
func (w *Window) Reset() {
	clear(w.buf)
	w.cursor = 0
	w.count = 0
}
