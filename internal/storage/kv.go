// Package storage abstracts the replicated key-value store the engine runs
// against. The host guarantees a single global total order of commands and
// read-your-writes within one command; implementations here only need to be
// correct under that serialization, not under concurrent access.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for an absent key.
var ErrNotFound = errors.New("key not found")

// KV is the minimal store surface the engine consumes. Values are opaque
// JSON documents.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// GetJSON loads and decodes the value under key into dst.
// Returns ErrNotFound unchanged when the key is absent.
func GetJSON(ctx context.Context, kv KV, key string, dst any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// PutJSON encodes src and stores it under key.
func PutJSON(ctx context.Context, kv KV, key string, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return kv.Put(ctx, key, raw)
}
