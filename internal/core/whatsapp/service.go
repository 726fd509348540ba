package whatsapp

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Service is the layer the rest of the application uses. It logs every
// send and exposes the connection state to the status API.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	started  time.Time
}

func NewService(provider Provider, logger zerolog.Logger) *Service {
	logger.Info().Str("provider", provider.Name()).Msg("✅ Using WhatsApp provider")
	return &Service{provider: provider, logger: logger, started: time.Now()}
}

func (s *Service) Connect(ctx context.Context) error {
	return s.provider.Connect(ctx)
}

func (s *Service) Disconnect() {
	s.provider.Disconnect()
}

func (s *Service) SendText(ctx context.Context, to, text string) (string, error) {
	id, err := s.provider.SendText(ctx, to, text)
	if err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("❌ Failed to send message")
		return "", err
	}
	s.logger.Debug().Str("to", to).Str("id", id).Msg("📤 Message sent")
	return id, nil
}

func (s *Service) SendMedia(ctx context.Context, to string, data []byte, mimeType, caption string) (string, error) {
	id, err := s.provider.SendMedia(ctx, to, data, mimeType, caption)
	if err != nil {
		s.logger.Error().Err(err).Str("to", to).Msg("❌ Failed to send media")
		return "", err
	}
	s.logger.Debug().Str("to", to).Str("id", id).Str("mime", mimeType).Msg("📤 Media sent")
	return id, nil
}

func (s *Service) StartListening(handler func(InboundMessage)) error {
	return s.provider.StartListening(handler)
}

func (s *Service) GenerateQR() ([]byte, error) {
	return s.provider.GenerateQR()
}

func (s *Service) IsConnected() bool {
	return s.provider.IsConnected()
}

func (s *Service) QRGenerated() bool {
	return s.provider.QRGenerated()
}

// StartedAt is when the service was created. Inbound messages older than
// this are stale.
func (s *Service) StartedAt() time.Time {
	return s.started
}

func (s *Service) StartKeepAlive(ctx context.Context) {
	s.provider.StartKeepAlive(ctx)
}
