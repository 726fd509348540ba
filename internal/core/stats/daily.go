package stats

import "time"

// DayCount is the number of quotes recorded on one local calendar day.
type DayCount struct {
	Day     time.Time `json:"day"`
	Codigo  int       `json:"codigoQuotes"`
	Divisas int       `json:"divisasQuotes"`
}

func (d DayCount) Total() int {
	return d.Codigo + d.Divisas
}

// Daily buckets history into the last days calendar days ending on the day
// of end, oldest first. Days without quotes are included with zero counts.
func Daily(history []HistoryEntry, end time.Time, days int) []DayCount {
	if days <= 0 {
		return nil
	}
	loc := end.Location()
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	first := last.AddDate(0, 0, -(days - 1))

	out := make([]DayCount, days)
	for i := range out {
		out[i].Day = first.AddDate(0, 0, i)
	}

	for _, h := range history {
		ts := h.Timestamp.In(loc)
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		if day.Before(first) || day.After(last) {
			continue
		}
		i := 0
		for !out[i].Day.Equal(day) {
			i++
		}
		switch h.Type {
		case CodigoQuotes:
			out[i].Codigo++
		case DivisasQuotes:
			out[i].Divisas++
		}
	}
	return out
}
