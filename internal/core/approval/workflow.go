// Package approval implements the client tier-change workflow:
// NONE → PENDING → APPROVED | REJECTED, and back to NONE.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/audit"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
)

var (
	ErrUnauthorized     = errors.New("actor is not an approver")
	ErrNoPendingRequest = errors.New("no pending request for client")
	ErrNoApprovers      = errors.New("no approvers configured")
)

// Pending is an unresolved tier-change request.
type Pending struct {
	ID         uuid.UUID    `json:"id"`
	ClientID   string       `json:"clientId"`
	ClientName string       `json:"clientName"`
	Tier       pricing.Tier `json:"requestedTier"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Client is the requester of a tier change.
type Client struct {
	ID   string
	Name string
}

type Notifier interface {
	Send(ctx context.Context, to, message string) (string, error)
	Broadcast(ctx context.Context, recipients []notification.Recipient, messages ...string) (int, error)
}

type TierStore interface {
	Tier(ctx context.Context, clientID string) (pricing.Tier, bool)
	SetTier(ctx context.Context, clientID string, t pricing.Tier) error
}

type Auditor interface {
	Log(ctx context.Context, e audit.Event)
	LogWithMetadata(ctx context.Context, e audit.Event, metadata any)
}

type Workflow struct {
	dir      *Directory
	pending  kv.Store
	tiers    TierStore
	notifier Notifier
	audit    Auditor
	labels   pricing.Labels
	now      func() time.Time
	logger   zerolog.Logger
}

func NewWorkflow(dir *Directory, pending kv.Store, tiers TierStore, notifier Notifier, auditor Auditor,
	labels pricing.Labels, logger zerolog.Logger) *Workflow {
	return &Workflow{
		dir:      dir,
		pending:  pending,
		tiers:    tiers,
		notifier: notifier,
		audit:    auditor,
		labels:   labels,
		now:      time.Now,
		logger:   logger,
	}
}

func (w *Workflow) Directory() *Directory {
	return w.dir
}

func pendingKey(clientID string) string {
	return "pending:" + clientID
}

// PendingFor returns the client's pending request, if any.
func (w *Workflow) PendingFor(ctx context.Context, clientID string) (Pending, bool, error) {
	return kv.GetJSON[Pending](ctx, w.pending, pendingKey(clientID))
}

// Request stores (or replaces) the client's pending request and sends every
// approver the request details plus ready-to-copy approve and reject
// commands, each as its own message.
func (w *Workflow) Request(ctx context.Context, client Client, tier pricing.Tier) (Pending, error) {
	if w.dir.Len() == 0 {
		return Pending{}, ErrNoApprovers
	}

	name := client.Name
	if name == "" {
		name = client.ID
	}
	p := Pending{
		ID:         uuid.New(),
		ClientID:   client.ID,
		ClientName: name,
		Tier:       tier,
		CreatedAt:  w.now().UTC(),
	}

	prev, hadPrev, err := w.PendingFor(ctx, client.ID)
	if err != nil {
		w.logger.Warn().Err(err).Str("client", client.ID).Msg("⚠️ Could not read previous pending request")
	}
	if hadPrev {
		age := p.CreatedAt.Sub(prev.CreatedAt)
		w.logger.Warn().
			Str("client", client.ID).
			Str("superseded_id", prev.ID.String()).
			Str("superseded_tier", string(prev.Tier)).
			Dur("age", age).
			Str("new_tier", string(tier)).
			Msg("⚠️ Pending tier request superseded")
		metrics.ApprovalsTotal.WithLabelValues(audit.ActionSuperseded).Inc()
		w.audit.LogWithMetadata(ctx, audit.Event{
			RequestID: prev.ID,
			ClientID:  client.ID,
			Action:    audit.ActionSuperseded,
			Tier:      string(prev.Tier),
		}, map[string]any{
			"superseded_by": p.ID.String(),
			"new_tier":      string(tier),
			"age_seconds":   int64(age.Seconds()),
		})
	}

	if err := kv.SetJSON(ctx, w.pending, pendingKey(client.ID), p, 0); err != nil {
		return Pending{}, fmt.Errorf("store pending request: %w", err)
	}

	label := w.labels.Label(tier)
	info := fmt.Sprintf("*Solicitud de Cambio de Tipo de Cliente*\n\n*Cliente:* %s\n*Número:* %s\n*Tipo Solicitado:* %s",
		name, client.ID, w.labels.Upper(tier))
	approve := fmt.Sprintf("/aprobar %s %s", client.ID, label)
	reject := fmt.Sprintf("/rechazar %s", client.ID)

	if _, err := w.notifier.Broadcast(ctx, w.dir.Recipients(), info, approve, reject); err != nil {
		w.logger.Error().Err(err).Str("client", client.ID).Msg("❌ Some approvers were not notified")
	}

	metrics.ApprovalsTotal.WithLabelValues(audit.ActionRequested).Inc()
	w.audit.Log(ctx, audit.Event{
		RequestID: p.ID,
		ClientID:  client.ID,
		Action:    audit.ActionRequested,
		Tier:      string(tier),
	})
	w.logger.Info().Str("client", client.ID).Str("tier", string(tier)).Msg("📨 Tier change requested")
	return p, nil
}

// authorize runs the checks shared by Approve and Reject. Neither check
// mutates state.
func (w *Workflow) authorize(ctx context.Context, actorID, clientID string) (Pending, error) {
	if !w.dir.IsApprover(actorID) {
		metrics.ApprovalsTotal.WithLabelValues(audit.ActionDenied).Inc()
		w.audit.Log(ctx, audit.Event{ClientID: clientID, ActorID: actorID, Action: audit.ActionDenied})
		return Pending{}, ErrUnauthorized
	}
	p, ok, err := w.PendingFor(ctx, clientID)
	if err != nil {
		return Pending{}, fmt.Errorf("read pending request: %w", err)
	}
	if !ok {
		return Pending{}, ErrNoPendingRequest
	}
	return p, nil
}

// Approve assigns tier to the client, clears the request and tells the client.
func (w *Workflow) Approve(ctx context.Context, actorID, clientID string, tier pricing.Tier) error {
	p, err := w.authorize(ctx, actorID, clientID)
	if err != nil {
		return err
	}

	previous, _ := w.tiers.Tier(ctx, clientID)
	if err := w.tiers.SetTier(ctx, clientID, tier); err != nil {
		w.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to persist client tier")
	}
	if err := w.pending.Delete(ctx, pendingKey(clientID)); err != nil {
		w.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to clear pending request")
	}

	msg := fmt.Sprintf("🎉 ¡Tu solicitud ha sido aprobada! 🎉\n\nAhora tienes acceso a los precios de *%s*.", w.labels.Upper(tier))
	if _, err := w.notifier.Send(ctx, clientID, msg); err != nil {
		w.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to notify client of approval")
	}

	metrics.ApprovalsTotal.WithLabelValues(audit.ActionApproved).Inc()
	w.audit.Log(ctx, audit.Event{
		RequestID:    p.ID,
		ClientID:     clientID,
		ActorID:      actorID,
		Action:       audit.ActionApproved,
		Tier:         string(tier),
		PreviousTier: string(previous),
	})
	w.logger.Info().Str("client", clientID).Str("actor", actorID).Str("tier", string(tier)).Msg("✅ Tier change approved")
	return nil
}

// Reject clears the request without touching the tier and tells the client.
func (w *Workflow) Reject(ctx context.Context, actorID, clientID string) error {
	p, err := w.authorize(ctx, actorID, clientID)
	if err != nil {
		return err
	}

	if err := w.pending.Delete(ctx, pendingKey(clientID)); err != nil {
		w.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to clear pending request")
	}

	msg := "Lo sentimos, tu solicitud de cambio de tipo de cliente ha sido rechazada. Por favor, contacta a un vendedor para más información."
	if _, err := w.notifier.Send(ctx, clientID, msg); err != nil {
		w.logger.Error().Err(err).Str("client", clientID).Msg("❌ Failed to notify client of rejection")
	}

	metrics.ApprovalsTotal.WithLabelValues(audit.ActionRejected).Inc()
	w.audit.Log(ctx, audit.Event{
		RequestID: p.ID,
		ClientID:  clientID,
		ActorID:   actorID,
		Action:    audit.ActionRejected,
		Tier:      string(p.Tier),
	})
	w.logger.Info().Str("client", clientID).Str("actor", actorID).Msg("🚫 Tier change rejected")
	return nil
}
