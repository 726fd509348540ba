package whatsapp

import (
	"context"
	"time"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
)

const echoPrefix = "echo:"

// DefaultEchoTTL bounds how long a sent message id is remembered.
const DefaultEchoTTL = 10 * time.Minute

// EchoFilter remembers ids of messages the bot sent to third parties so the
// copy delivered back to the bot's own account is ignored exactly once.
type EchoFilter struct {
	store kv.Store
	ttl   time.Duration
}

func NewEchoFilter(store kv.Store, ttl time.Duration) *EchoFilter {
	if ttl <= 0 {
		ttl = DefaultEchoTTL
	}
	return &EchoFilter{store: store, ttl: ttl}
}

// Mark records an outgoing message id.
func (f *EchoFilter) Mark(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return f.store.Set(ctx, echoPrefix+id, []byte("1"), f.ttl)
}

// Seen reports whether id was marked and forgets it.
func (f *EchoFilter) Seen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, ok, err := f.store.Get(ctx, echoPrefix+id)
	if err != nil || !ok {
		return false, err
	}
	return true, f.store.Delete(ctx, echoPrefix+id)
}
