package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAbsentPathIsEmpty(t *testing.T) {
	s := NewMemoryStore()
	fields, err := s.GetSecrets(context.Background(), "missing/path")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestMemoryStoreMergesAndCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SetSecrets(ctx, "/a/b/", map[string]string{"x": "1"}))
	require.NoError(t, s.SetSecrets(ctx, "a/b", map[string]string{"y": "2"}))

	fields, err := s.GetSecrets(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, fields)

	fields["x"] = "mutated"
	again, _ := s.GetSecrets(ctx, "a/b")
	assert.Equal(t, "1", again["x"])

	s.Delete("a/b")
	again, _ = s.GetSecrets(ctx, "a/b")
	assert.Empty(t, again)
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().GetSecrets(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyPaths(t *testing.T) {
	assert.Equal(t, "secretkey/jwt-service/orders", PrivateKeyPath("orders").String())
	assert.Equal(t, "publickey/jwt-service/orders", PublicKeyPath("orders").String())
	assert.Equal(t, map[string]string{"a": "1", "b": "3"}, Merge(map[string]string{"a": "1", "b": "2"}, map[string]string{"b": "3"}))
}

func TestMemoryStoreOverwritesExistingFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SetSecrets(ctx, "svc/key", map[string]string{"k": "old", "keep": "1"}))
	require.NoError(t, s.SetSecrets(ctx, "svc/key", map[string]string{"k": "new"}))

	fields, err := s.GetSecrets(ctx, "svc/key")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "new", "keep": "1"}, fields)
}
