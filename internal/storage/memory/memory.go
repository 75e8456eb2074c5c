// Package memory provides an in-process storage.KV used by engine tests and
// local experimentation. It mirrors the host store's semantics: opaque
// values, read-your-writes, no expiry.
package memory

import (
	"context"

	"github.com/Lingz450/receiptsplit/internal/storage"
)

// Ensure KVStore implements storage.KV
var _ storage.KV = (*KVStore)(nil)

// KVStore is a map-backed storage.KV. Safe only under the host's command
// serialization, like every other implementation.
type KVStore struct {
	data map[string][]byte
}

// New returns an empty store.
func New() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns the value stored under key, or storage.ErrNotFound.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores value under key, replacing any previous value.
func (s *KVStore) Put(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}
