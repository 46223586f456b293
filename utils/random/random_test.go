package random_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhissng/synapse/utils/random"
)

func TestGenerateMessageIDIsUnique(t *testing.T) {
	const workers, perWorker = 8, 500

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := random.GenerateMessageID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestGenerateMessageIDIsUUID(t *testing.T) {
	id, err := uuid.Parse(random.GenerateMessageID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestGenerateTokenID(t *testing.T) {
	id, err := random.GenerateTokenID()
	require.NoError(t, err)
	assert.Len(t, id, 32)
}
