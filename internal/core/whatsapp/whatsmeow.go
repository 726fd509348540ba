package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

type WhatsmeowProvider struct {
	cfg    ProviderConfig
	logger zerolog.Logger

	mu      sync.RWMutex
	client  *whatsmeow.Client
	qrCode  string
	handler func(InboundMessage)
}

func NewWhatsmeowProvider(cfg ProviderConfig, logger zerolog.Logger) *WhatsmeowProvider {
	return &WhatsmeowProvider{cfg: cfg, logger: logger.With().Str("provider", "whatsmeow").Logger()}
}

func (w *WhatsmeowProvider) Name() string {
	return "Whatsmeow"
}

func (w *WhatsmeowProvider) currentClient() *whatsmeow.Client {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.client
}

func (w *WhatsmeowProvider) setQR(code string) {
	w.mu.Lock()
	w.qrCode = code
	w.mu.Unlock()
}

func (w *WhatsmeowProvider) Connect(ctx context.Context) error {
	container, err := w.initStore(ctx)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Zerolog(w.logger.With().Str("module", "whatsapp-client").Logger()))
	client.AddEventHandler(w.handleEvent)
	w.mu.Lock()
	w.client = client
	w.mu.Unlock()

	if client.Store.ID != nil {
		if err := client.Connect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
		w.logger.Info().Msg("✅ Reconnected to WhatsApp")
		return nil
	}

	qrChan, err := client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("get QR channel: %w", err)
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			w.setQR(evt.Code)
			w.logger.Info().Str("code", evt.Code).Msg("🔗 Scan this QR code in WhatsApp")
			if w.cfg.QRPath != "" {
				if err := WriteQRFile(evt.Code, w.cfg.QRPath); err != nil {
					w.logger.Warn().Err(err).Msg("⚠️ Failed to write QR image")
				} else {
					w.logger.Info().Str("file", w.cfg.QRPath).Msg("🖼️ QR code saved")
				}
			}
		case "success":
			w.setQR("")
			w.logger.Info().Msg("✅ Login successful")
			return nil
		case "timeout":
			return fmt.Errorf("QR code timeout")
		default:
			if evt.Error != nil {
				return fmt.Errorf("pairing failed: %w", evt.Error)
			}
		}
	}
	return nil
}

func (w *WhatsmeowProvider) Disconnect() {
	if client := w.currentClient(); client != nil {
		client.Disconnect()
		w.logger.Info().Msg("🔌 Whatsmeow client disconnected")
	}
}

func (w *WhatsmeowProvider) connectedClient() (*whatsmeow.Client, error) {
	client := w.currentClient()
	if client == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	return client, nil
}

func (w *WhatsmeowProvider) SendText(ctx context.Context, to, text string) (string, error) {
	client, err := w.connectedClient()
	if err != nil {
		return "", err
	}
	jid, err := ParseJID(to)
	if err != nil {
		return "", err
	}

	resp, err := client.SendMessage(ctx, jid, &waProto.Message{Conversation: proto.String(text)})
	if err != nil {
		return "", fmt.Errorf("send text: %w", err)
	}
	return string(resp.ID), nil
}

func (w *WhatsmeowProvider) SendMedia(ctx context.Context, to string, data []byte, mimeType, caption string) (string, error) {
	client, err := w.connectedClient()
	if err != nil {
		return "", err
	}
	jid, err := ParseJID(to)
	if err != nil {
		return "", err
	}

	up, err := client.Upload(ctx, data, whatsmeow.MediaImage)
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}

	msg := &waProto.Message{ImageMessage: &waProto.ImageMessage{
		Caption:       proto.String(caption),
		Mimetype:      proto.String(mimeType),
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
	}}
	resp, err := client.SendMessage(ctx, jid, msg)
	if err != nil {
		return "", fmt.Errorf("send media: %w", err)
	}
	return string(resp.ID), nil
}

// StartListening sets the handler for inbound text messages. It may be
// called before Connect.
func (w *WhatsmeowProvider) StartListening(handler func(InboundMessage)) error {
	if handler == nil {
		return fmt.Errorf("nil message handler")
	}
	w.mu.Lock()
	w.handler = handler
	w.mu.Unlock()
	return nil
}

func (w *WhatsmeowProvider) handleEvent(evt interface{}) {
	switch e := evt.(type) {
	case *events.Message:
		w.mu.RLock()
		handler := w.handler
		w.mu.RUnlock()
		if handler == nil {
			return
		}
		if msg, ok := toInbound(e); ok {
			handler(msg)
		}
	case *events.Connected:
		w.logger.Info().Msg("✅ WhatsApp connected")
	case *events.Disconnected:
		w.logger.Warn().Msg("⚠️ WhatsApp disconnected")
	case *events.LoggedOut:
		w.logger.Error().Msg("❌ WhatsApp session logged out, a new QR scan is needed")
	}
}

// toInbound flattens a whatsmeow message event. Messages without text are
// dropped.
func toInbound(e *events.Message) (InboundMessage, bool) {
	body := e.Message.GetConversation()
	if body == "" {
		body = e.Message.GetExtendedTextMessage().GetText()
	}
	if body == "" {
		return InboundMessage{}, false
	}

	return InboundMessage{
		ID:          string(e.Info.ID),
		ChatID:      e.Info.Chat.String(),
		SenderID:    senderJID(e.Info).ToNonAD().String(),
		DisplayName: e.Info.PushName,
		Body:        body,
		IsGroup:     e.Info.IsGroup,
		IsStatus:    e.Info.Chat == types.StatusBroadcastJID,
		FromMe:      e.Info.IsFromMe,
		Timestamp:   e.Info.Timestamp,
	}, true
}

// senderJID returns the phone-number address of the sender. LID-addressed
// messages carry it in SenderAlt.
func senderJID(info types.MessageInfo) types.JID {
	lid := info.Sender.Server == types.HiddenUserServer || info.AddressingMode == types.AddressingModeLID
	if lid && !info.SenderAlt.IsEmpty() && info.SenderAlt.Server == types.DefaultUserServer {
		return info.SenderAlt
	}
	return info.Sender
}

func (w *WhatsmeowProvider) GenerateQR() ([]byte, error) {
	w.mu.RLock()
	code := w.qrCode
	w.mu.RUnlock()

	if code == "" {
		return nil, ErrNoQR
	}
	return RenderQR(code)
}

func (w *WhatsmeowProvider) IsConnected() bool {
	client := w.currentClient()
	return client != nil && client.IsConnected()
}

func (w *WhatsmeowProvider) QRGenerated() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.qrCode != ""
}

// ParseJID accepts a full JID ("584141234567@s.whatsapp.net") or a bare
// phone number, with or without a leading "+".
func ParseJID(to string) (types.JID, error) {
	if strings.Contains(to, "@") {
		jid, err := types.ParseJID(to)
		if err != nil {
			return types.JID{}, fmt.Errorf("invalid JID %q: %w", to, err)
		}
		return jid, nil
	}

	phone := strings.TrimPrefix(strings.TrimSpace(to), "+")
	if phone == "" {
		return types.JID{}, fmt.Errorf("empty recipient")
	}
	return types.NewJID(phone, types.DefaultUserServer), nil
}
