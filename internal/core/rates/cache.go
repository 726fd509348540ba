// Package rates caches the BCV dollar and euro rates and decides, per
// request, whether a fresh fetch is due.
package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/metrics"
)

// ErrFetch wraps any failure to obtain a rate from the source.
var ErrFetch = errors.New("rate fetch failed")

// Source fetches a single currency value.
type Source interface {
	Fetch(ctx context.Context, c Currency) (decimal.Decimal, error)
}

type Option func(*Cache)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLocation sets the business time zone the window is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(c *Cache) { c.loc = loc }
}

// WithWindow sets the publish window [startHour, endHour).
func WithWindow(startHour, endHour int) Option {
	return func(c *Cache) {
		c.windowStart = startHour
		c.windowEnd = endHour
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// Cache holds the single process-wide Snapshot.
type Cache struct {
	source Source
	docs   docstore.Store

	now         func() time.Time
	loc         *time.Location
	windowStart int
	windowEnd   int
	logger      zerolog.Logger

	mu       sync.Mutex
	snapshot Snapshot
}

func NewCache(source Source, docs docstore.Store, opts ...Option) *Cache {
	c := &Cache{
		source:      source,
		docs:        docs,
		now:         time.Now,
		loc:         time.UTC,
		windowStart: 15,
		windowEnd:   18,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load restores the persisted snapshot. A missing document is not an error.
func (c *Cache) Load(ctx context.Context) error {
	var snap Snapshot
	found, err := c.docs.Load(ctx, docstore.RateCache, &snap)
	if err != nil {
		return fmt.Errorf("load rate cache: %w", err)
	}
	if !found {
		c.logger.Info().Msg("📭 No rate cache found, it will be created on the first successful fetch")
		return nil
	}
	if snap.LastUpdated != nil {
		t := snap.LastUpdated.In(c.loc)
		snap.LastUpdated = &t
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	c.logger.Info().Msg("✅ Rate cache loaded")
	return nil
}

// Snapshot returns the cached values without refreshing.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// ShouldRefresh applies the freshness policy, in priority order:
// empty cache, different local day, inside the publish window, and
// after the window with a snapshot taken before it opened.
func (c *Cache) ShouldRefresh(now time.Time, snap Snapshot) bool {
	if snap.IsZero() {
		return true
	}

	now = now.In(c.loc)
	last := snap.LastUpdated.In(c.loc)

	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()
	if ny != ly || nm != lm || nd != ld {
		return true
	}

	hour := now.Hour()
	if hour >= c.windowStart && hour < c.windowEnd {
		return true
	}
	return hour >= c.windowEnd && last.Hour() < c.windowStart
}

// Rates returns the current snapshot, refreshing first when the policy
// says so. Fetch failures never surface: the previous complete snapshot is
// returned, or Unavailable when there is none.
func (c *Cache) Rates(ctx context.Context) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ShouldRefresh(c.now(), c.snapshot) {
		c.logger.Debug().Msg("📦 Using cached rates")
		return c.snapshot
	}

	snap, err := c.refreshLocked(ctx)
	if err != nil {
		if c.snapshot.Complete() {
			c.logger.Warn().Err(err).Msg("⚠️ Rate refresh failed, returning cached values")
			return c.snapshot
		}
		c.logger.Warn().Err(err).Msg("⚠️ Rate refresh failed and no cached values exist")
		return Unavailable()
	}
	return snap
}

// Refresh fetches both rates now, regardless of the policy.
func (c *Cache) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// refreshLocked fans out both fetches and commits only when both succeed.
func (c *Cache) refreshLocked(ctx context.Context) (Snapshot, error) {
	c.logger.Info().Msg("🔄 Fetching new rates...")

	var dollar, euro decimal.Decimal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.source.Fetch(gctx, Dollar)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFetch, Dollar, err)
		}
		dollar = v
		return nil
	})
	g.Go(func() error {
		v, err := c.source.Fetch(gctx, Euro)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFetch, Euro, err)
		}
		euro = v
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.RateRefreshTotal.WithLabelValues("failure").Inc()
		return c.snapshot, err
	}

	now := c.now().In(c.loc)
	c.snapshot = Snapshot{
		Dollar:      decimal.NewNullDecimal(dollar),
		Euro:        decimal.NewNullDecimal(euro),
		LastUpdated: &now,
	}
	metrics.RateRefreshTotal.WithLabelValues("success").Inc()

	if err := c.docs.Save(ctx, docstore.RateCache, c.snapshot); err != nil {
		c.logger.Error().Err(err).Msg("❌ Failed to persist rate cache")
	}

	c.logger.Info().
		Str("dolar", dollar.StringFixed(2)).
		Str("euro", euro.StringFixed(2)).
		Msg("✅ Rates updated")
	return c.snapshot, nil
}
