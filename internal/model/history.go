package model

import "time"

const defaultHistoryCap = 60

// HashratePoint is a single timestamped hashrate reading stored in the ring buffer.
type HashratePoint struct {
	Timestamp   time.Time
	CPUHashrate float64
	GPUHashrate float64
}

// HashrateHistory is a fixed-size ring buffer of HashratePoints.
// When the buffer is full, new pushes overwrite the oldest entry.
type HashrateHistory struct {
	buf  []HashratePoint
	head int // index of the next write position
	size int // number of valid entries
}

// NewHashrateHistory creates a HashrateHistory with the given capacity.
// If capacity <= 0, defaultHistoryCap (60) is used.
func NewHashrateHistory(capacity int) *HashrateHistory {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}
	return &HashrateHistory{
		buf: make([]HashratePoint, capacity),
	}
}

// Push appends a new point to the history, overwriting the oldest if full.
func (h *HashrateHistory) Push(p HashratePoint) {
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *HashrateHistory) Len() int {
	return h.size
}

// Clear resets the history to empty.
func (h *HashrateHistory) Clear() {
	h.head = 0
	h.size = 0
}

// Clone returns an independent copy of the history.
func (h *HashrateHistory) Clone() *HashrateHistory {
	out := &HashrateHistory{
		buf:  make([]HashratePoint, len(h.buf)),
		head: h.head,
		size: h.size,
	}
	copy(out.buf, h.buf)
	return out
}

// Values returns the named series in chronological order (oldest first).
// Valid field names: "cpu", "gpu", "total".
func (h *HashrateHistory) Values(field string) []float64 {
	out := make([]float64, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		p := h.buf[(start+i)%len(h.buf)]
		switch field {
		case "cpu":
			out[i] = p.CPUHashrate
		case "gpu":
			out[i] = p.GPUHashrate
		case "total":
			out[i] = p.CPUHashrate + p.GPUHashrate
		}
	}
	return out
}
