package concurrentMap_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhissng/synapse/utils/concurrent/concurrentMap"
)

func TestSetIfAbsent(t *testing.T) {
	m := concurrentMap.NewConcurrentMap[string, int]()

	assert.True(t, m.SetIfAbsent("a", 1))
	assert.False(t, m.SetIfAbsent("a", 2))

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestPopSettlesOnce(t *testing.T) {
	m := concurrentMap.NewConcurrentMap[string, int]()
	m.Set("id", 42)

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.Pop("id"); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	assert.False(t, m.Has("id"))
}

func TestDrain(t *testing.T) {
	m := concurrentMap.NewConcurrentMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)

	drained := m.Drain()
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, drained)
	assert.Equal(t, 0, m.Len())

	m.Set("c", 3)
	assert.Equal(t, map[string]int{"c": 3}, m.Items())
}

func TestPopIf(t *testing.T) {
	m := concurrentMap.NewConcurrentMap[string, int]()
	m.Set("a", 1)

	_, ok := m.PopIf("a", func(v int) bool { return v == 2 })
	assert.False(t, ok)
	assert.True(t, m.Has("a"))

	v, ok := m.PopIf("a", func(v int) bool { return v == 1 })
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, m.Has("a"))

	_, ok = m.PopIf("missing", func(int) bool { return true })
	assert.False(t, ok)
}
