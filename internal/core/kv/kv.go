// Package kv is the key-value abstraction behind the bot's client-keyed
// maps: last quotes, pending approvals, tier assignments and echo ids.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a flat key-value store. A zero ttl means no expiry; stores that
// cannot expire keys ignore it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Keys lists live keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON reads key and decodes it into a T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var zero T
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
