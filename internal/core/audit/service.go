// Package audit keeps the trail of tier requests and decisions.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// Sink stores audit events.
type Sink interface {
	Write(ctx context.Context, e *Event) error
	History(ctx context.Context, f Filter) ([]Event, error)
}

// Service stamps events and hands them to a sink. Write failures are
// logged and never block the workflow.
type Service struct {
	sink   Sink
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(sink Sink, logger zerolog.Logger) *Service {
	return &Service{sink: sink, now: time.Now, logger: logger}
}

// Log records e, filling ID and CreatedAt when unset.
func (s *Service) Log(ctx context.Context, e Event) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	if err := s.sink.Write(ctx, &e); err != nil {
		s.logger.Error().Err(err).
			Str("action", e.Action).
			Str("client", e.ClientID).
			Msg("❌ Failed to write audit event")
	}
}

// LogWithMetadata is Log with an arbitrary JSON payload attached.
func (s *Service) LogWithMetadata(ctx context.Context, e Event, metadata any) {
	raw, err := toJSON(metadata)
	if err != nil {
		s.logger.Warn().Err(err).Msg("⚠️ Failed to serialize audit metadata")
	}
	e.Metadata = raw
	s.Log(ctx, e)
}

// History returns events matching f, newest first.
func (s *Service) History(ctx context.Context, f Filter) ([]Event, error) {
	if f.Limit < 1 {
		f.Limit = 100
	}
	events, err := s.sink.History(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("audit history: %w", err)
	}
	return events, nil
}

func toJSON(value any) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes), nil
}
