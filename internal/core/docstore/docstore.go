// Package docstore persists whole JSON documents by name. Each concern of
// the bot (tier assignments, stats, rate cache, approver directory) owns
// one document and overwrites it on every change.
package docstore

import (
	"context"
	"errors"
)

// ErrInvalidName is returned for names that cannot be used as a document key.
var ErrInvalidName = errors.New("invalid document name")

// Store loads and saves named documents.
type Store interface {
	// Load decodes the document into v. It reports false when the
	// document does not exist yet.
	Load(ctx context.Context, name string, v any) (bool, error)
	// Save overwrites the document with the JSON encoding of v.
	Save(ctx context.Context, name string, v any) error
}

// Document names used by the bot.
const (
	ClientData = "client_data"
	BotStats   = "bot_stats"
	RateCache  = "bcv_cache"
	Approvers  = "vendedores"
)

func validName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
