package gesture

import (
	"sync"
)

// CaptureHistory keeps the most recent captures in a fixed-size ring for the
// debug API and chart endpoints. It is bounded and in-memory only; nothing
// here survives a restart. Safe for concurrent use: the pipeline goroutine
// writes while API handlers read.
type CaptureHistory struct {
	mu       sync.Mutex
	captures []*Capture
	capacity int
	head     int // next write position
	size     int // captures currently stored
}

// NewCaptureHistory creates a ring holding up to capacity captures.
func NewCaptureHistory(capacity int) *CaptureHistory {
	if capacity < 1 {
		capacity = 32
	}
	return &CaptureHistory{
		captures: make([]*Capture, capacity),
		capacity: capacity,
	}
}

// Add stores a capture, overwriting the oldest when full.
func (h *CaptureHistory) Add(c *Capture) {
	if c == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captures[h.head] = c
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Recent returns up to n captures, newest first. n <= 0 returns everything
// stored.
func (h *CaptureHistory) Recent(n int) []*Capture {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > h.size {
		n = h.size
	}
	out := make([]*Capture, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.head - i + h.capacity) % h.capacity
		out = append(out, h.captures[idx])
	}
	return out
}

// Get returns the capture with the given ID, or nil if it has been evicted.
func (h *CaptureHistory) Get(id string) *Capture {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 1; i <= h.size; i++ {
		idx := (h.head - i + h.capacity) % h.capacity
		if c := h.captures[idx]; c != nil && c.ID == id {
			return c
		}
	}
	return nil
}

// Len returns the number of captures currently stored.
func (h *CaptureHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}
