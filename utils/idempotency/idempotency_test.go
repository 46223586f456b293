package idempotency_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhissng/synapse/utils/idempotency"
)

func TestCheckAndMark(t *testing.T) {
	m := idempotency.NewIdempotencyManager[string](16, time.Minute)
	defer m.Close()

	assert.False(t, m.CheckAndMark("a"))
	assert.True(t, m.CheckAndMark("a"))
	assert.True(t, m.IsProcessed("a"))

	m.Forget("a")
	assert.False(t, m.IsProcessed("a"))
}

func TestCheckAndMarkConcurrent(t *testing.T) {
	m := idempotency.NewIdempotencyManager[string](16, time.Minute)

	var firsts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !m.CheckAndMark("same") {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), firsts.Load())
}

func TestEntriesExpire(t *testing.T) {
	m := idempotency.NewIdempotencyManager[string](16, 30*time.Millisecond)
	m.MarkAsProcessed("a")

	assert.Eventually(t, func() bool { return !m.IsProcessed("a") }, time.Second, 10*time.Millisecond)
}

func TestSizeBound(t *testing.T) {
	m := idempotency.NewIdempotencyManager[int](2, time.Minute)
	m.MarkAsProcessed(1)
	m.MarkAsProcessed(2)
	m.MarkAsProcessed(3)

	assert.Equal(t, 2, m.Len())
	assert.False(t, m.IsProcessed(1))
}

func TestDefaultsForNonPositiveArguments(t *testing.T) {
	m := idempotency.NewIdempotencyManager[int](0, 0)
	defer m.Close()

	for i := 0; i <= idempotency.DefaultSize; i++ {
		m.MarkAsProcessed(i)
	}
	assert.Equal(t, idempotency.DefaultSize, m.Len())
	assert.False(t, m.IsProcessed(0))
	assert.True(t, m.IsProcessed(idempotency.DefaultSize))
}
