package idempotency

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultWindow is how long an id is remembered when no window is given.
	DefaultWindow = 10 * time.Minute
	// DefaultSize bounds the number of remembered ids when no size is given.
	DefaultSize = 4096
)

// IdempotencyManager tracks recently processed ids so redelivered messages
// can be dropped. Entries expire after the window or when the size bound
// evicts the oldest one.
type IdempotencyManager[K comparable] struct {
	mu      sync.Mutex
	tracked *expirable.LRU[K, time.Time]
}

// NewIdempotencyManager creates a manager remembering up to size ids for window.
func NewIdempotencyManager[K comparable](size int, window time.Duration) *IdempotencyManager[K] {
	if size <= 0 {
		size = DefaultSize
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &IdempotencyManager[K]{
		tracked: expirable.NewLRU[K, time.Time](size, nil, window),
	}
}

// MarkAsProcessed marks an event with the given trackingID as processed.
func (m *IdempotencyManager[K]) MarkAsProcessed(trackingID K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.Add(trackingID, time.Now())
}

// IsProcessed checks if an event with the given trackingID has already been processed.
func (m *IdempotencyManager[K]) IsProcessed(trackingID K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tracked.Peek(trackingID)
	return ok
}

// CheckAndMark reports whether trackingID was seen before and marks it as seen.
// The check and the mark happen under one lock so two concurrent deliveries
// cannot both pass.
func (m *IdempotencyManager[K]) CheckAndMark(trackingID K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tracked.Peek(trackingID); ok {
		return true
	}
	m.tracked.Add(trackingID, time.Now())
	return false
}

// Forget drops trackingID so a later delivery is processed again.
func (m *IdempotencyManager[K]) Forget(trackingID K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.Remove(trackingID)
}

// Len returns the number of tracked ids.
func (m *IdempotencyManager[K]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracked.Len()
}

// Close releases all tracked ids.
func (m *IdempotencyManager[K]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked.Purge()
}
