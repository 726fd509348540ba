// Package agent handles inbound WhatsApp messages: suppression rules,
// first-contact welcome, command dispatch and keyword auto-responses.
package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/approval"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/quote"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/stats"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/whatsapp"
)

// Transport sends replies and forwarded quotes.
type Transport interface {
	SendText(ctx context.Context, to, text string) (string, error)
	SendMedia(ctx context.Context, to string, data []byte, mimeType, caption string) (string, error)
}

type EchoFilter interface {
	Mark(ctx context.Context, id string) error
	Seen(ctx context.Context, id string) (bool, error)
}

type Catalog interface {
	ByCode(code string) (catalog.Product, bool)
	Search(term string) []catalog.Product
	Categories() []string
	Stats() catalog.Stats
}

type Quoter interface {
	BuildQuote(ctx context.Context, args []string, req quote.Requester, override *pricing.Tier, mode pricing.Mode) quote.Result
	ResolveTier(ctx context.Context, clientID string, override *pricing.Tier) pricing.Tier
	LastQuote(ctx context.Context, clientID string) (string, bool, error)
	ClearLastQuote(ctx context.Context, clientID string) error
}

type Clients interface {
	Known(ctx context.Context, clientID string) bool
	Resolve(ctx context.Context, clientID string) pricing.Tier
	SetTier(ctx context.Context, clientID string, t pricing.Tier) error
}

type Approvals interface {
	Request(ctx context.Context, client approval.Client, tier pricing.Tier) (approval.Pending, error)
	Approve(ctx context.Context, actorID, clientID string, tier pricing.Tier) error
	Reject(ctx context.Context, actorID, clientID string) error
}

// Sellers is the approver directory as seen by /enviar and /aprobar.
type Sellers interface {
	IsApprover(number string) bool
	Lookup(name string) (string, bool)
	Names() []string
}

type RateProvider interface {
	Rates(ctx context.Context) rates.Snapshot
}

type StatsSource interface {
	Snapshot() stats.Stats
}

type ConversationLog interface {
	Append(number, contact, message string, fromBot bool, messageType string) error
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Transport Transport
	Echoes    EchoFilter
	Catalog   Catalog
	Resolver  *pricing.Resolver
	Quotes    Quoter
	Clients   Clients
	Approvals Approvals
	Sellers   Sellers
	Rates     RateProvider
	Stats     StatsSource
	// Conversations may be nil.
	Conversations ConversationLog
}

type Config struct {
	Labels      pricing.Labels
	DefaultTier pricing.Tier
	Profile     Profile
	ImagesDir   string
	Location    *time.Location
	// StartedAt drops messages sent before the bot came up. Zero disables
	// the check.
	StartedAt time.Time
}

// Contact is the sender of a message.
type Contact struct {
	Number string
	Name   string
}

// Reply is the bot's answer: text, or an image with a caption.
type Reply struct {
	Text     string
	Media    []byte
	MimeType string
	Caption  string
}

func (r Reply) IsMedia() bool {
	return len(r.Media) > 0
}

type Engine struct {
	deps   Deps
	cfg    Config
	logger zerolog.Logger

	// mu serializes message handling: one command runs to completion
	// before the next starts.
	mu sync.Mutex
}

func NewEngine(deps Deps, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.DefaultTier == "" {
		cfg.DefaultTier = pricing.TierGeneral
	}
	return &Engine{deps: deps, cfg: cfg, logger: logger}
}

// HandleMessage is the entry point for every inbound message.
func (e *Engine) HandleMessage(ctx context.Context, msg whatsapp.InboundMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if reason, skip := e.suppress(ctx, msg); skip {
		metrics.MessagesIgnoredTotal.WithLabelValues(reason).Inc()
		e.logger.Debug().Str("reason", reason).Str("id", msg.ID).Str("chat", msg.ChatID).Msg("🙈 Message ignored")
		return
	}

	timer := prometheus.NewTimer(metrics.MessageHandlingDuration)
	defer timer.ObserveDuration()

	contact := Contact{Number: phoneNumber(msg.SenderID), Name: msg.DisplayName}
	if contact.Name == "" {
		contact.Name = contact.Number
	}
	to := msg.ChatID
	if to == "" {
		to = msg.SenderID
	}

	e.logger.Info().Str("from", contact.Name).Str("number", contact.Number).Str("body", msg.Body).Msg("📩 Message received")

	if !e.deps.Clients.Known(ctx, contact.Number) {
		if _, err := e.deps.Transport.SendText(ctx, to, welcomeText(e.cfg.Profile)); err != nil {
			e.logger.Error().Err(err).Str("number", contact.Number).Msg("❌ Failed to send welcome message")
		} else {
			e.logger.Info().Str("number", contact.Number).Msg("👋 Welcome message sent to new client")
		}
		if err := e.deps.Clients.SetTier(ctx, contact.Number, e.cfg.DefaultTier); err != nil {
			e.logger.Error().Err(err).Str("number", contact.Number).Msg("❌ Failed to persist default tier")
		}
	}

	e.logConversation(contact, msg.Body, false, "chat")

	reply := e.Respond(ctx, contact, msg.Body)

	var logged string
	if reply.IsMedia() {
		if _, err := e.deps.Transport.SendMedia(ctx, to, reply.Media, reply.MimeType, reply.Caption); err != nil {
			e.logger.Error().Err(err).Str("number", contact.Number).Msg("❌ Failed to send image")
			return
		}
		logged = "[Imagen: " + reply.Caption + "]"
	} else {
		if _, err := e.deps.Transport.SendText(ctx, to, reply.Text); err != nil {
			e.logger.Error().Err(err).Str("number", contact.Number).Msg("❌ Failed to send reply")
			return
		}
		logged = reply.Text
	}

	e.logger.Info().Str("to", contact.Name).Msg("📤 Reply sent")
	e.logConversation(contact, logged, true, "text")
}

// suppress applies the ignore rules in order and names the first that hits.
func (e *Engine) suppress(ctx context.Context, msg whatsapp.InboundMessage) (string, bool) {
	if msg.IsStatus {
		return "status", true
	}
	if e.deps.Echoes != nil {
		seen, err := e.deps.Echoes.Seen(ctx, msg.ID)
		if err != nil {
			e.logger.Warn().Err(err).Str("id", msg.ID).Msg("⚠️ Echo lookup failed")
		}
		if seen {
			e.logger.Info().Str("id", msg.ID).Msg("🔁 Ignoring echo of message sent to seller")
			return "echo", true
		}
	}
	if !e.cfg.StartedAt.IsZero() && msg.Timestamp.Before(e.cfg.StartedAt) {
		return "stale", true
	}
	if msg.FromMe {
		return "from_me", true
	}
	if msg.IsGroup {
		return "group", true
	}
	if strings.TrimSpace(msg.Body) == "" {
		return "empty", true
	}
	return "", false
}

// Respond computes the reply for one message without sending it.
func (e *Engine) Respond(ctx context.Context, c Contact, body string) Reply {
	if IsCommand(body) {
		cmd := ParseCommand(body, e.cfg.Labels)
		metrics.CommandsTotal.WithLabelValues(cmd.Kind.String()).Inc()
		return e.dispatch(ctx, c, cmd)
	}
	if text, ok := autoResponse(body, e.cfg.Profile); ok {
		return Reply{Text: text}
	}
	return Reply{Text: notUnderstood + "\n\n" + helpText}
}

func (e *Engine) logConversation(c Contact, message string, fromBot bool, messageType string) {
	if e.deps.Conversations == nil {
		return
	}
	if err := e.deps.Conversations.Append(c.Number, c.Name, message, fromBot, messageType); err != nil {
		e.logger.Error().Err(err).Str("number", c.Number).Msg("❌ Failed to log conversation")
	}
}

// phoneNumber strips the server and device parts of a JID.
func phoneNumber(jid string) string {
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")
	return strings.TrimPrefix(user, "+")
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
