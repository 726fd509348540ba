package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
)

// DurableStore keeps every key in memory and rewrites one docstore document
// on each mutation. Values must be valid JSON so the document stays a
// readable {"key": value} object. TTLs are ignored.
//
// When the write fails the in-memory value is kept and the error returned;
// callers log it and carry on.
type DurableStore struct {
	mu    sync.RWMutex
	docs  docstore.Store
	name  string
	items map[string]json.RawMessage
}

// NewDurableStore loads document name from docs, starting empty if absent.
func NewDurableStore(ctx context.Context, docs docstore.Store, name string) (*DurableStore, error) {
	items := make(map[string]json.RawMessage)
	if _, err := docs.Load(ctx, name, &items); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if items == nil {
		items = make(map[string]json.RawMessage)
	}
	return &DurableStore{docs: docs, name: name, items: items}, nil
}

func (d *DurableStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (d *DurableStore) Set(ctx context.Context, key string, value []byte, _ time.Duration) error {
	if !json.Valid(value) {
		return fmt.Errorf("durable store %s: value for %s is not JSON", d.name, key)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.items[key] = append(json.RawMessage(nil), value...)
	return d.persistLocked(ctx)
}

func (d *DurableStore) Delete(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.items[key]; !ok {
		return nil
	}
	delete(d.items, key)
	return d.persistLocked(ctx)
}

func (d *DurableStore) Keys(_ context.Context, prefix string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	keys := make([]string, 0, len(d.items))
	for k := range d.items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (d *DurableStore) persistLocked(ctx context.Context) error {
	if err := d.docs.Save(ctx, d.name, d.items); err != nil {
		return fmt.Errorf("persist %s: %w", d.name, err)
	}
	return nil
}
