package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyBucketsByLocalDay(t *testing.T) {
	caracas, err := time.LoadLocation("America/Caracas")
	require.NoError(t, err)

	end := time.Date(2024, 3, 10, 9, 0, 0, 0, caracas)
	history := []HistoryEntry{
		{Type: CodigoQuotes, Timestamp: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		{Type: DivisasQuotes, Timestamp: time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)},
		// 02:00 UTC on the 10th is still the 9th in Caracas.
		{Type: CodigoQuotes, Timestamp: time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)},
		{Type: CodigoQuotes, Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}

	days := Daily(history, end, 3)
	require.Len(t, days, 3)

	assert.Equal(t, 8, days[0].Day.Day())
	assert.Zero(t, days[0].Total())

	assert.Equal(t, 9, days[1].Day.Day())
	assert.Equal(t, 1, days[1].Codigo)

	assert.Equal(t, 10, days[2].Day.Day())
	assert.Equal(t, 1, days[2].Codigo)
	assert.Equal(t, 1, days[2].Divisas)
	assert.Equal(t, 2, days[2].Total())
}

func TestDailyWithoutDays(t *testing.T) {
	assert.Nil(t, Daily(nil, time.Now(), 0))
}
