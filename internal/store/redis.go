package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores each document as a plain string value under prefix+key.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV creates a Redis backend. An empty prefix defaults to "frontdesk:".
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	if client == nil {
		panic("store: redis client required")
	}
	if prefix == "" {
		prefix = "frontdesk:"
	}
	return &RedisKV{client: client, prefix: prefix}
}

func (r *RedisKV) key(k string) string {
	return r.prefix + k
}

// Get reads one document.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: redis get %s: %w", key, err)
	}
	return data, nil
}

// Commit writes every key inside MULTI/EXEC.
func (r *RedisKV) Commit(ctx context.Context, writes map[string][]byte) error {
	if len(writes) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range sortedKeys(writes) {
			pipe.Set(ctx, r.key(k), writes[k], 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis commit: %w", err)
	}
	return nil
}
