package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
)

// Mode selects how a quote is priced.
type Mode int

const (
	// ModeList applies the global multiplier (/precio, /preciog).
	ModeList Mode = iota
	// ModeRaw uses the stored base price as-is (/divisas).
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "list"
}

// Resolver maps a (product, tier) pair to a unit price.
type Resolver struct {
	multiplier decimal.Decimal
}

func NewResolver(multiplier float64) *Resolver {
	if multiplier <= 0 {
		multiplier = 1
	}
	return &Resolver{multiplier: decimal.NewFromFloat(multiplier)}
}

func (r *Resolver) Multiplier() decimal.Decimal {
	return r.multiplier
}

// BasePrice is the stored price for the tier; zero means unavailable.
func (r *Resolver) BasePrice(p catalog.Product, t Tier) decimal.Decimal {
	var base decimal.Decimal
	switch t {
	case TierStore:
		base = p.StorePrice
	case TierInstaller:
		base = p.InstallerPrice
	default:
		base = p.GeneralPrice
	}
	if !base.IsPositive() {
		return decimal.Zero
	}
	return base
}

// MarkedUpPrice is BasePrice times the global multiplier.
func (r *Resolver) MarkedUpPrice(p catalog.Product, t Tier) decimal.Decimal {
	base := r.BasePrice(p, t)
	if base.IsZero() {
		return decimal.Zero
	}
	return base.Mul(r.multiplier)
}

// Price dispatches on mode.
func (r *Resolver) Price(p catalog.Product, t Tier, mode Mode) decimal.Decimal {
	if mode == ModeRaw {
		return r.BasePrice(p, t)
	}
	return r.MarkedUpPrice(p, t)
}

// AllowsRaw reports whether a tier may use raw (negotiated) pricing.
func AllowsRaw(t Tier) bool {
	return t == TierStore || t == TierInstaller
}
