package pricing

import (
	"strings"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"
)

// Tier is a client pricing category. The value is the canonical key stored
// in tier assignments.
type Tier string

const (
	TierGeneral   Tier = "general"
	TierStore     Tier = "tienda"
	TierInstaller Tier = "instalador"
)

// Tiers lists every tier in display order.
var Tiers = []Tier{TierGeneral, TierStore, TierInstaller}

// Labels are the display names configured for each tier.
type Labels struct {
	General   string
	Store     string
	Installer string
}

func DefaultLabels() Labels {
	return Labels{General: "general", Store: "tienda", Installer: "instalador"}
}

// Label returns the display name for t.
func (l Labels) Label(t Tier) string {
	switch t {
	case TierStore:
		return l.Store
	case TierInstaller:
		return l.Installer
	default:
		return l.General
	}
}

// Upper is the label in capitals, as shown in replies.
func (l Labels) Upper(t Tier) string {
	return strings.ToUpper(l.Label(t))
}

// Parse resolves a tier from its canonical key, a configured label, or an
// English alias. Matching ignores case and accents.
func (l Labels) Parse(s string) (Tier, bool) {
	key := utils.Fold(s)
	if key == "" {
		return "", false
	}
	for _, t := range Tiers {
		if key == string(t) || key == utils.Fold(l.Label(t)) {
			return t, true
		}
	}
	switch key {
	case "store":
		return TierStore, true
	case "installer":
		return TierInstaller, true
	}
	return "", false
}
