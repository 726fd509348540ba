// Package notification delivers bot-initiated WhatsApp messages to
// approvers and clients.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Sender sends a text message and returns the message id.
type Sender interface {
	SendText(ctx context.Context, to, text string) (string, error)
}

// EchoMarker remembers ids of messages sent to third parties so their
// echoes can be ignored when they come back.
type EchoMarker interface {
	Mark(ctx context.Context, messageID string) error
}

// Recipient is a named WhatsApp number.
type Recipient struct {
	Name  string
	Phone string
}

type Service struct {
	sender Sender
	echoes EchoMarker
	logger zerolog.Logger
}

func NewService(sender Sender, echoes EchoMarker, logger zerolog.Logger) *Service {
	return &Service{sender: sender, echoes: echoes, logger: logger}
}

// Send delivers one message and marks it for echo suppression.
func (s *Service) Send(ctx context.Context, to, message string) (string, error) {
	if s.sender == nil {
		return "", fmt.Errorf("whatsapp service not configured")
	}
	id, err := s.sender.SendText(ctx, to, message)
	if err != nil {
		return "", fmt.Errorf("send to %s: %w", to, err)
	}
	if id != "" && s.echoes != nil {
		if err := s.echoes.Mark(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("id", id).Msg("⚠️ Could not mark echo")
		}
	}
	return id, nil
}

// Broadcast sends every message, in order, to every recipient. A failure
// for one recipient skips its remaining messages but not the other
// recipients. It returns how many recipients got all messages.
func (s *Service) Broadcast(ctx context.Context, recipients []Recipient, messages ...string) (int, error) {
	var errs []error
	delivered := 0

	for _, r := range recipients {
		ok := true
		for _, msg := range messages {
			if _, err := s.Send(ctx, r.Phone, msg); err != nil {
				s.logger.Error().Err(err).Str("recipient", r.Name).Msg("❌ Failed to notify")
				errs = append(errs, err)
				ok = false
				break
			}
		}
		if ok {
			delivered++
			s.logger.Info().Str("recipient", r.Name).Msg("✅ Notification sent")
		}
	}

	return delivered, errors.Join(errs...)
}
