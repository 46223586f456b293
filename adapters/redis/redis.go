// Package redis provides a secrets.Store kept in Redis hashes, one hash per path.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/abhissng/synapse/adapters/secrets"
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/types"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "synapse:secrets:"

// Config holds the configuration for the Redis wrapper.
type Config struct {
	Addr      string `mapstructure:"addr"`     // e.g., "localhost:6379"
	Password  string `mapstructure:"password"` // Leave empty if no password
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func NewConfig() *Config {
	return &Config{
		KeyPrefix: defaultKeyPrefix,
	}
}

// RedisManager is a hash-per-path secret store over go-redis.
type RedisManager struct {
	client    redis.Cmdable
	closer    func() error
	keyPrefix string
}

var _ secrets.Store = (*RedisManager)(nil)

// NewRedisWrapper creates and initializes a new RedisManager.
// It pings the Redis server to ensure connectivity.
func NewRedisWrapper(ctx context.Context, cfg Config) (*RedisManager, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	m := NewRedisStore(rdb, cfg.KeyPrefix)
	m.closer = rdb.Close
	return m, nil
}

// NewRedisStore wraps an existing client, cluster client or pipeline.
func NewRedisStore(client redis.Cmdable, keyPrefix string) *RedisManager {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisManager{client: client, keyPrefix: keyPrefix}
}

// Close closes the underlying Redis client connection if this store owns it.
func (rw *RedisManager) Close() error {
	if rw.closer != nil {
		return rw.closer()
	}
	return nil
}

func (rw *RedisManager) key(path types.SecretPath) string {
	return rw.keyPrefix + secrets.Normalize(path).String()
}

func (rw *RedisManager) GetSecrets(ctx context.Context, path types.SecretPath) (map[string]string, error) {
	fields, err := rw.client.HGetAll(ctx, rw.key(path)).Result()
	if err != nil {
		return nil, blame.SecretStoreError(path.String(), err)
	}
	return fields, nil
}

func (rw *RedisManager) SetSecrets(ctx context.Context, path types.SecretPath, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := rw.client.HSet(ctx, rw.key(path), fields).Err(); err != nil {
		return blame.SecretStoreError(path.String(), err)
	}
	return nil
}
