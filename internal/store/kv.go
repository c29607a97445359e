// Package store persists front-desk collections as whole JSON documents in a
// key-value backend. Reads always return fresh copies; writes replace whole
// collections, and multi-key writes commit atomically.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrKeyNotFound is returned by KV.Get for an absent key.
var ErrKeyNotFound = errors.New("store: key not found")

// KV is the minimal backend contract: read one key, atomically replace a set of keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Commit(ctx context.Context, writes map[string][]byte) error
}

// MemoryKV keeps documents in process memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory backend.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get returns a copy of the stored document.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Commit replaces every key in writes under one lock.
func (m *MemoryKV) Commit(_ context.Context, writes map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range writes {
		m.data[k] = append([]byte(nil), v...)
	}
	return nil
}

// sortedKeys gives backends a deterministic write order.
func sortedKeys(writes map[string][]byte) []string {
	keys := make([]string, 0, len(writes))
	for k := range writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
