package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency identifies one of the two published rates.
type Currency int

const (
	Dollar Currency = iota
	Euro
)

func (c Currency) String() string {
	if c == Euro {
		return "euro"
	}
	return "dolar"
}

// Snapshot is the cached pair of rates plus the capture time. Unset values
// mean "rate unavailable".
type Snapshot struct {
	Dollar      decimal.NullDecimal `json:"dolar"`
	Euro        decimal.NullDecimal `json:"euro"`
	LastUpdated *time.Time          `json:"lastUpdated"`
}

// IsZero reports whether no rate was ever captured.
func (s Snapshot) IsZero() bool {
	return s.LastUpdated == nil
}

// Complete reports whether both rates are present.
func (s Snapshot) Complete() bool {
	return s.Dollar.Valid && s.Euro.Valid
}

func (s Snapshot) DollarRate() (decimal.Decimal, bool) {
	return s.Dollar.Decimal, s.Dollar.Valid
}

func (s Snapshot) EuroRate() (decimal.Decimal, bool) {
	return s.Euro.Decimal, s.Euro.Valid
}

// Unavailable is returned when no good snapshot exists.
func Unavailable() Snapshot {
	return Snapshot{}
}
