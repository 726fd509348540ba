// Package stats keeps the bot's quote counters and their history.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
)

// QuoteType names the counter a quote increments.
type QuoteType string

const (
	CodigoQuotes  QuoteType = "codigoQuotes"
	DivisasQuotes QuoteType = "divisasQuotes"
)

type HistoryEntry struct {
	Type      QuoteType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the persisted bot_stats document.
type Stats struct {
	TotalQuotes   int            `json:"totalQuotes"`
	CodigoQuotes  int            `json:"codigoQuotes"`
	DivisasQuotes int            `json:"divisasQuotes"`
	QuoteHistory  []HistoryEntry `json:"quoteHistory"`
}

// Recorder counts quotes and persists the document on every increment.
// A historyLimit of zero keeps the whole history.
type Recorder struct {
	docs         docstore.Store
	historyLimit int
	now          func() time.Time
	logger       zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

func NewRecorder(docs docstore.Store, historyLimit int, logger zerolog.Logger) *Recorder {
	return &Recorder{
		docs:         docs,
		historyLimit: historyLimit,
		now:          time.Now,
		logger:       logger,
		stats:        Stats{QuoteHistory: []HistoryEntry{}},
	}
}

// Load restores the counters. Unreadable documents start from zero.
func (r *Recorder) Load(ctx context.Context) {
	var s Stats
	found, err := r.docs.Load(ctx, docstore.BotStats, &s)
	switch {
	case err != nil:
		r.logger.Error().Err(err).Msg("❌ Failed to load bot stats, starting from zero")
		return
	case !found:
		r.logger.Info().Msg("📭 No bot stats found, a new document will be created")
		return
	}
	if s.QuoteHistory == nil {
		s.QuoteHistory = []HistoryEntry{}
	}

	r.mu.Lock()
	r.stats = s
	r.mu.Unlock()
	r.logger.Info().Int("total_quotes", s.TotalQuotes).Msg("✅ Bot stats loaded")
}

// Record increments the total and the per-type counter and appends a
// history entry.
func (r *Recorder) Record(ctx context.Context, t QuoteType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.TotalQuotes++
	switch t {
	case CodigoQuotes:
		r.stats.CodigoQuotes++
	case DivisasQuotes:
		r.stats.DivisasQuotes++
	}
	r.stats.QuoteHistory = append(r.stats.QuoteHistory, HistoryEntry{Type: t, Timestamp: r.now().UTC()})
	if r.historyLimit > 0 && len(r.stats.QuoteHistory) > r.historyLimit {
		trimmed := make([]HistoryEntry, r.historyLimit)
		copy(trimmed, r.stats.QuoteHistory[len(r.stats.QuoteHistory)-r.historyLimit:])
		r.stats.QuoteHistory = trimmed
	}

	if err := r.docs.Save(ctx, docstore.BotStats, r.stats); err != nil {
		r.logger.Error().Err(err).Msg("❌ Failed to save bot stats")
	}

	r.logger.Info().
		Int("total", r.stats.TotalQuotes).
		Str("type", string(t)).
		Msg("📈 Quote recorded")
}

// Snapshot returns a copy of the counters.
func (r *Recorder) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.stats
	out.QuoteHistory = append([]HistoryEntry(nil), r.stats.QuoteHistory...)
	return out
}
