package whatsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Provider is the transport the bot talks through.
type Provider interface {
	// Connect opens the session, pairing with a QR code when the store has
	// no device yet. It returns once the client is connected or pairing
	// failed.
	Connect(ctx context.Context) error
	Disconnect()

	SendText(ctx context.Context, to, text string) (string, error)
	// SendMedia sends an image with a caption.
	SendMedia(ctx context.Context, to string, data []byte, mimeType, caption string) (string, error)

	// StartListening registers handler for every inbound text message.
	StartListening(handler func(InboundMessage)) error

	// GenerateQR returns the pending pairing code as a PNG.
	GenerateQR() ([]byte, error)

	IsConnected() bool
	QRGenerated() bool

	StartKeepAlive(ctx context.Context)
	Name() string
}

// InboundMessage is a provider-neutral inbound text message.
type InboundMessage struct {
	ID string
	// ChatID is where a reply goes: the sender for direct chats, the group
	// for group chats.
	ChatID      string
	SenderID    string
	DisplayName string
	Body        string
	IsGroup     bool
	IsStatus    bool
	FromMe      bool
	Timestamp   time.Time
}

type ProviderType string

const (
	ProviderWhatsmeow ProviderType = "whatsmeow"
)

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Type ProviderType

	// StoreURL is a Postgres DSN for the session store. When empty the
	// SQLite file at SQLitePath is used.
	StoreURL   string
	SQLitePath string
	// QRPath, when set, also writes each pairing code to this PNG file.
	QRPath string
}

// NewProvider builds the provider named by cfg.Type.
func NewProvider(cfg ProviderConfig, logger zerolog.Logger) (Provider, error) {
	switch cfg.Type {
	case ProviderWhatsmeow, "":
		return NewWhatsmeowProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
