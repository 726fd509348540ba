// Package clients stores the tier assigned to each client number.
package clients

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
)

// Registry maps client numbers to tiers. Values are stored as JSON strings
// so the backing document reads {"584121234567": "tienda"}.
type Registry struct {
	store       kv.Store
	labels      pricing.Labels
	defaultTier pricing.Tier
	logger      zerolog.Logger
}

func NewRegistry(store kv.Store, labels pricing.Labels, defaultTier pricing.Tier, logger zerolog.Logger) *Registry {
	if defaultTier == "" {
		defaultTier = pricing.TierGeneral
	}
	return &Registry{store: store, labels: labels, defaultTier: defaultTier, logger: logger}
}

func (r *Registry) DefaultTier() pricing.Tier {
	return r.defaultTier
}

// Tier returns the stored tier. Older documents may hold a display label
// instead of the canonical key; both are accepted.
func (r *Registry) Tier(ctx context.Context, clientID string) (pricing.Tier, bool) {
	raw, ok, err := kv.GetJSON[string](ctx, r.store, clientID)
	if err != nil {
		r.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to read client tier")
		return "", false
	}
	if !ok {
		return "", false
	}
	t, ok := r.labels.Parse(raw)
	if !ok {
		r.logger.Warn().Str("client", clientID).Str("value", raw).Msg("⚠️ Unknown stored tier, using default")
		return "", false
	}
	return t, true
}

// Resolve returns the stored tier or the default one.
func (r *Registry) Resolve(ctx context.Context, clientID string) pricing.Tier {
	if t, ok := r.Tier(ctx, clientID); ok {
		return t
	}
	return r.defaultTier
}

// Known reports whether the client has any assignment yet.
func (r *Registry) Known(ctx context.Context, clientID string) bool {
	_, ok, err := r.store.Get(ctx, clientID)
	if err != nil {
		r.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to read client tier")
	}
	return ok
}

// SetTier assigns t to the client. The in-memory value survives a failed
// write; the error is returned for logging.
func (r *Registry) SetTier(ctx context.Context, clientID string, t pricing.Tier) error {
	if err := kv.SetJSON(ctx, r.store, clientID, string(t), 0); err != nil {
		return fmt.Errorf("set tier for %s: %w", clientID, err)
	}
	return nil
}

// Count returns the number of clients with an assignment.
func (r *Registry) Count(ctx context.Context) int {
	keys, err := r.store.Keys(ctx, "")
	if err != nil {
		return 0
	}
	return len(keys)
}
