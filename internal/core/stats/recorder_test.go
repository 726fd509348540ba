package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
)

func TestRecordPersistsCounters(t *testing.T) {
	ctx := context.Background()
	docs, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := NewRecorder(docs, 0, zerolog.Nop())
	r.Record(ctx, CodigoQuotes)
	r.Record(ctx, CodigoQuotes)
	r.Record(ctx, DivisasQuotes)

	reloaded := NewRecorder(docs, 0, zerolog.Nop())
	reloaded.Load(ctx)
	s := reloaded.Snapshot()
	assert.Equal(t, 3, s.TotalQuotes)
	assert.Equal(t, 2, s.CodigoQuotes)
	assert.Equal(t, 1, s.DivisasQuotes)
	require.Len(t, s.QuoteHistory, 3)
	assert.Equal(t, DivisasQuotes, s.QuoteHistory[2].Type)
}

func TestHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	docs, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	r := NewRecorder(docs, 2, zerolog.Nop())
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	n := 0
	r.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }

	for i := 0; i < 5; i++ {
		r.Record(ctx, CodigoQuotes)
	}

	s := r.Snapshot()
	assert.Equal(t, 5, s.TotalQuotes)
	require.Len(t, s.QuoteHistory, 2)
	assert.Equal(t, base.Add(5*time.Minute), s.QuoteHistory[1].Timestamp)
}

type brokenDocs struct{}

func (brokenDocs) Load(context.Context, string, any) (bool, error) {
	return false, errors.New("corrupt")
}
func (brokenDocs) Save(context.Context, string, any) error { return errors.New("read-only") }

func TestWriteFailureKeepsMemory(t *testing.T) {
	r := NewRecorder(brokenDocs{}, 0, zerolog.Nop())
	r.Load(context.Background())
	r.Record(context.Background(), DivisasQuotes)
	assert.Equal(t, 1, r.Snapshot().DivisasQuotes)
}
