// Package quote turns "/precio" and "/divisas" arguments into a priced,
// rendered quotation.
package quote

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/stats"
)

// Catalog is the product lookup the engine needs.
type Catalog interface {
	ByCode(code string) (catalog.Product, bool)
}

type RateProvider interface {
	Rates(ctx context.Context) rates.Snapshot
}

// TierSource returns a client's stored tier, if any.
type TierSource interface {
	Tier(ctx context.Context, clientID string) (pricing.Tier, bool)
}

type StatsRecorder interface {
	Record(ctx context.Context, t stats.QuoteType)
}

// Requester identifies who asked for the quote.
type Requester struct {
	ID   string
	Name string
}

type Config struct {
	MaxQuantity  int
	MaxItems     int
	LastQuoteTTL time.Duration
	DefaultTier  pricing.Tier
	Labels       pricing.Labels
	Location     *time.Location
}

// Kind tells the caller what BuildQuote produced.
type Kind int

const (
	KindQuote Kind = iota
	KindGuidance
	KindEmpty
)

// Line is one priced item of a quote.
type Line struct {
	Item      LineItem
	Product   catalog.Product
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Result struct {
	Kind       Kind
	Text       string
	Mode       pricing.Mode
	Tier       pricing.Tier
	Lines      []Line
	Invalid    []InvalidEntry
	NotFound   []string
	Omitted    []LineItem
	GrandTotal decimal.Decimal
	TotalUnits int
	DollarRate decimal.NullDecimal
	Date       time.Time
}

// Found reports whether at least one product was priced.
func (r Result) Found() bool {
	return len(r.Lines) > 0
}

type Engine struct {
	catalog  Catalog
	resolver *pricing.Resolver
	rates    RateProvider
	tiers    TierSource
	session  kv.Store
	stats    StatsRecorder
	cfg      Config
	now      func() time.Time
	logger   zerolog.Logger
}

func NewEngine(cat Catalog, resolver *pricing.Resolver, rp RateProvider, tiers TierSource,
	session kv.Store, rec StatsRecorder, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultTier == "" {
		cfg.DefaultTier = pricing.TierGeneral
	}
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = 1000
	}
	return &Engine{
		catalog:  cat,
		resolver: resolver,
		rates:    rp,
		tiers:    tiers,
		session:  session,
		stats:    rec,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// ResolveTier picks the override, then the stored tier, then the default.
func (e *Engine) ResolveTier(ctx context.Context, clientID string, override *pricing.Tier) pricing.Tier {
	if override != nil {
		return *override
	}
	if t, ok := e.tiers.Tier(ctx, clientID); ok {
		return t
	}
	return e.cfg.DefaultTier
}

// BuildQuote parses args, prices the valid items and renders the reply.
// Only quotes with at least one priced product are remembered and counted.
func (e *Engine) BuildQuote(ctx context.Context, args []string, req Requester, override *pricing.Tier, mode pricing.Mode) Result {
	parsed := Parse(args, e.cfg.MaxQuantity, func(code string) bool {
		_, ok := e.catalog.ByCode(code)
		return ok
	})

	res := Result{
		Mode:    mode,
		Invalid: parsed.Invalid,
		Date:    e.now().In(e.cfg.Location),
	}

	switch {
	case len(parsed.Items) == 0 && len(parsed.Invalid) > 0:
		res.Kind = KindGuidance
		res.Text = renderGuidance(mode, parsed.Invalid)
		return res
	case len(parsed.Items) == 0:
		res.Kind = KindEmpty
		res.Text = renderEmpty(mode)
		return res
	}

	res.Kind = KindQuote
	res.Tier = e.ResolveTier(ctx, req.ID, override)

	items := parsed.Items
	if e.cfg.MaxItems > 0 && len(items) > e.cfg.MaxItems {
		res.Omitted = items[e.cfg.MaxItems:]
		items = items[:e.cfg.MaxItems]
	}

	res.GrandTotal = decimal.Zero
	for _, item := range items {
		p, ok := e.catalog.ByCode(item.Code)
		if !ok {
			res.NotFound = append(res.NotFound, item.Code)
			continue
		}
		unit := e.resolver.Price(p, res.Tier, mode)
		sub := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		res.Lines = append(res.Lines, Line{Item: item, Product: p, UnitPrice: unit, Subtotal: sub})
		res.GrandTotal = res.GrandTotal.Add(sub)
		res.TotalUnits += item.Quantity
	}

	if mode == pricing.ModeList && res.Found() {
		snap := e.rates.Rates(ctx)
		res.DollarRate = snap.Dollar
	}

	res.Text = e.render(res, override != nil)

	if !res.Found() {
		return res
	}

	if err := kv.SetJSON(ctx, e.session, lastQuoteKey(req.ID), res.Text, e.cfg.LastQuoteTTL); err != nil {
		e.logger.Error().Err(err).Str("client", req.ID).Msg("❌ Failed to store last quote")
	}

	quoteType := stats.CodigoQuotes
	if mode == pricing.ModeRaw {
		quoteType = stats.DivisasQuotes
	}
	e.stats.Record(ctx, quoteType)
	metrics.QuotesTotal.WithLabelValues(mode.String()).Inc()

	e.logger.Info().
		Str("client", req.ID).
		Str("mode", mode.String()).
		Str("tier", string(res.Tier)).
		Int("items", len(res.Lines)).
		Str("total", res.GrandTotal.StringFixed(2)).
		Msg("📝 Quote generated")
	return res
}

// LastQuote returns the last rendered quote for the client.
func (e *Engine) LastQuote(ctx context.Context, clientID string) (string, bool, error) {
	return kv.GetJSON[string](ctx, e.session, lastQuoteKey(clientID))
}

func (e *Engine) ClearLastQuote(ctx context.Context, clientID string) error {
	return e.session.Delete(ctx, lastQuoteKey(clientID))
}

func lastQuoteKey(clientID string) string {
	return "lastquote:" + clientID
}
