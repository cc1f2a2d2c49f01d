// Package eventbus provides a small non-blocking publish/subscribe hub used
// to fan pipeline events out to debug consumers such as websocket clients.
package eventbus

import (
	crand "crypto/rand"
	"encoding/hex"
	"sync"
)

// Bus fans published values out to every subscriber. Publish never blocks:
// a subscriber that cannot keep up loses events instead of stalling the
// pipeline goroutine.
type Bus[T any] struct {
	mu          sync.Mutex
	subscribers map[string]chan T
	buffer      int
	closed      bool
}

// New creates a bus whose subscriber channels buffer up to buffer events.
func New[T any](buffer int) *Bus[T] {
	if buffer < 1 {
		buffer = 16
	}
	return &Bus[T]{
		subscribers: make(map[string]chan T),
		buffer:      buffer,
	}
}

// randomID generates a subscriber ID (8 byte random hex encoded value).
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe registers a new subscriber and returns its ID and channel. The
// channel is closed by Unsubscribe or Close. Subscribing to a closed bus
// returns an already-closed channel.
func (b *Bus[T]) Subscribe() (string, <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := randomID()
	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Publish delivers v to every subscriber that has buffer room. Subscribers
// with full buffers are skipped so the publisher never blocks.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- v:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel and marks the bus closed. Publish
// becomes a no-op afterwards.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
