// Package secrets defines the secret store contract used to publish and
// fetch service signing keys, plus an in-process implementation.
package secrets

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/types"
)

// Store is a path-addressed key/value secret store.
type Store interface {
	// GetSecrets returns the fields stored under path. An absent path yields
	// an empty map and a nil error.
	GetSecrets(ctx context.Context, path types.SecretPath) (map[string]string, error)

	// SetSecrets writes fields under path, merging with whatever is there.
	SetSecrets(ctx context.Context, path types.SecretPath, fields map[string]string) error
}

// PrivateKeyPath is where a service's signing key lives.
func PrivateKeyPath(service string) types.SecretPath {
	return types.SecretPath(constant.PrivateKeyPathPrefix + service)
}

// PublicKeyPath is where a service's verification key lives.
func PublicKeyPath(service string) types.SecretPath {
	return types.SecretPath(constant.PublicKeyPathPrefix + service)
}

// Normalize trims surrounding slashes and whitespace.
func Normalize(path types.SecretPath) types.SecretPath {
	return types.SecretPath(strings.Trim(strings.TrimSpace(path.String()), "/"))
}

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[types.SecretPath]map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[types.SecretPath]map[string]string)}
}

// GetSecrets returns a copy of the fields stored at path. An unknown path
// yields an empty map, not an error.
func (m *MemoryStore) GetSecrets(ctx context.Context, path types.SecretPath) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data[Normalize(path)]))
	maps.Copy(out, m.data[Normalize(path)])
	return out, nil
}

// SetSecrets merges fields into the secret at path, overwriting keys that
// already exist.
func (m *MemoryStore) SetSecrets(ctx context.Context, path types.SecretPath, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = Normalize(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[path] == nil {
		m.data[path] = make(map[string]string, len(fields))
	}
	maps.Copy(m.data[path], fields)
	return nil
}

// Delete drops everything under path.
func (m *MemoryStore) Delete(path types.SecretPath) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, Normalize(path))
}

// Merge overlays update onto current without mutating either.
func Merge(current, update map[string]string) map[string]string {
	out := make(map[string]string, len(current)+len(update))
	maps.Copy(out, current)
	maps.Copy(out, update)
	return out
}
