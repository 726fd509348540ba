package rates

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
)

var caracas = mustLocation("America/Caracas")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, caracas)
}

func snapshotAt(t time.Time) Snapshot {
	return Snapshot{
		Dollar:      decimal.NewNullDecimal(decimal.RequireFromString("36.50")),
		Euro:        decimal.NewNullDecimal(decimal.RequireFromString("39.80")),
		LastUpdated: &t,
	}
}

// stubSource returns fixed values or errors per currency.
type stubSource struct {
	mu     sync.Mutex
	values map[Currency]decimal.Decimal
	errs   map[Currency]error
	calls  int
}

func (s *stubSource) Fetch(_ context.Context, c Currency) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.errs[c]; err != nil {
		return decimal.Zero, err
	}
	return s.values[c], nil
}

func newDocs(t *testing.T) docstore.Store {
	t.Helper()
	docs, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return docs
}

func TestShouldRefresh(t *testing.T) {
	c := NewCache(&stubSource{}, newDocs(t), WithLocation(caracas))

	cases := []struct {
		name string
		now  time.Time
		snap Snapshot
		want bool
	}{
		{"no snapshot", at(10, 10), Snapshot{}, true},
		{"snapshot from yesterday", at(10, 10), snapshotAt(at(9, 16)), true},
		{"inside publish window", at(10, 16), snapshotAt(at(10, 10)), true},
		{"after window with same-day capture", at(10, 19), snapshotAt(at(10, 16)), false},
		{"after window with morning capture", at(10, 19), snapshotAt(at(10, 10)), true},
		{"morning with morning capture", at(10, 11), snapshotAt(at(10, 9)), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.ShouldRefresh(tc.now, tc.snap))
		})
	}
}

func TestShouldRefreshUsesBusinessDate(t *testing.T) {
	c := NewCache(&stubSource{}, newDocs(t), WithLocation(caracas))

	// 22:00 in Caracas is already the next day in UTC.
	last := at(10, 16)
	now := at(10, 22).UTC()
	assert.False(t, c.ShouldRefresh(now, snapshotAt(last)))
}

func TestRatesRefreshesAndPersists(t *testing.T) {
	docs := newDocs(t)
	src := &stubSource{values: map[Currency]decimal.Decimal{
		Dollar: decimal.RequireFromString("36.72"),
		Euro:   decimal.RequireFromString("40.01"),
	}}
	now := at(10, 16)
	c := NewCache(src, docs, WithLocation(caracas), WithClock(func() time.Time { return now }))

	snap := c.Rates(context.Background())
	require.True(t, snap.Complete())
	assert.Equal(t, "36.72", snap.Dollar.Decimal.StringFixed(2))
	assert.Equal(t, "40.01", snap.Euro.Decimal.StringFixed(2))
	assert.Equal(t, 2, src.calls)

	reloaded := NewCache(src, docs, WithLocation(caracas))
	require.NoError(t, reloaded.Load(context.Background()))
	got := reloaded.Snapshot()
	require.NotNil(t, got.LastUpdated)
	assert.True(t, got.LastUpdated.Equal(now))
	assert.True(t, got.Dollar.Decimal.Equal(decimal.RequireFromString("36.72")))
}

func TestRatesSkipsFetchWhenFresh(t *testing.T) {
	src := &stubSource{values: map[Currency]decimal.Decimal{
		Dollar: decimal.NewFromInt(36),
		Euro:   decimal.NewFromInt(40),
	}}
	now := at(10, 16)
	c := NewCache(src, newDocs(t), WithLocation(caracas), WithClock(func() time.Time { return now }))

	c.Rates(context.Background())
	now = at(10, 20)
	c.Rates(context.Background())
	assert.Equal(t, 2, src.calls)
}

func TestPartialFailureKeepsSnapshot(t *testing.T) {
	docs := newDocs(t)
	prev := snapshotAt(at(9, 16))
	require.NoError(t, docs.Save(context.Background(), docstore.RateCache, prev))

	src := &stubSource{
		values: map[Currency]decimal.Decimal{Dollar: decimal.NewFromInt(99)},
		errs:   map[Currency]error{Euro: errors.New("timeout")},
	}
	c := NewCache(src, docs, WithLocation(caracas), WithClock(func() time.Time { return at(10, 16) }))
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)

	got := c.Snapshot()
	assert.True(t, got.Dollar.Decimal.Equal(prev.Dollar.Decimal))
	assert.True(t, got.LastUpdated.Equal(*prev.LastUpdated))

	// Rates falls back to the previous complete snapshot.
	snap := c.Rates(context.Background())
	assert.True(t, snap.Dollar.Decimal.Equal(decimal.RequireFromString("36.50")))

	var stored Snapshot
	found, err := docs.Load(context.Background(), docstore.RateCache, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, stored.LastUpdated.Equal(*prev.LastUpdated))
}

func TestFailureWithoutSnapshotIsUnavailable(t *testing.T) {
	src := &stubSource{errs: map[Currency]error{
		Dollar: errors.New("boom"),
		Euro:   errors.New("boom"),
	}}
	c := NewCache(src, newDocs(t), WithLocation(caracas), WithClock(func() time.Time { return at(10, 16) }))

	snap := c.Rates(context.Background())
	assert.False(t, snap.Dollar.Valid)
	assert.False(t, snap.Euro.Valid)
	assert.True(t, snap.IsZero())
}
