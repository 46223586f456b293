package concurrentMap

import (
	"sync"
)

// ConcurrentMap is a concurrent-safe map.
type ConcurrentMap[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewConcurrentMap creates a new ConcurrentMap.
func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{
		items: make(map[K]V),
	}
}

// Get retrieves the value associated with the given key.
func (m *ConcurrentMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[key]
	return value, ok
}

// Set sets the value associated with the given key.
func (m *ConcurrentMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
}

// Delete removes the key-value pair associated with the given key.
func (m *ConcurrentMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
}

// Range iterates over the map under the read lock; f must not write to the map.
func (m *ConcurrentMap[K, V]) Range(f func(key K, value V)) {
	m.mu.RLock() // Read lock for consistent iteration
	defer m.mu.RUnlock()

	for key, value := range m.items {
		f(key, value)
	}
}

// Len returns the number of items in the map.
func (m *ConcurrentMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Items returns a copy of all items in the map. This is safer for concurrent access, but uses more memory.
func (m *ConcurrentMap[K, V]) Items() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	itemsCopy := make(map[K]V, len(m.items))
	for k, v := range m.items {
		itemsCopy[k] = v
	}
	return itemsCopy
}

// SetIfAbsent stores value under key only when the key is not present.
// It reports whether the value was stored.
func (m *ConcurrentMap[K, V]) SetIfAbsent(key K, value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; exists {
		return false
	}
	m.items[key] = value
	return true
}

// Pop removes key and returns its value. Exactly one concurrent caller
// observes ok == true for a given stored value.
func (m *ConcurrentMap[K, V]) Pop(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.items[key]
	if ok {
		delete(m.items, key)
	}
	return value, ok
}

// PopIf removes key only when match accepts its current value.
func (m *ConcurrentMap[K, V]) PopIf(key K, match func(V) bool) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.items[key]
	if !ok || !match(value) {
		var zero V
		return zero, false
	}
	delete(m.items, key)
	return value, true
}

// Drain removes and returns every item.
func (m *ConcurrentMap[K, V]) Drain() map[K]V {
	m.mu.Lock()
	defer m.mu.Unlock()

	drained := m.items
	m.items = make(map[K]V)
	return drained
}

// Has reports whether key is present.
func (m *ConcurrentMap[K, V]) Has(key K) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.items[key]
	return ok
}
