package approval

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/audit"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
)

const (
	seller   = "584140000001"
	stranger = "584140000009"
	client   = "584121234567"
)

type message struct {
	to, text string
}

type stubNotifier struct {
	sent []message
}

func (n *stubNotifier) Send(_ context.Context, to, text string) (string, error) {
	n.sent = append(n.sent, message{to, text})
	return "id", nil
}

func (n *stubNotifier) Broadcast(ctx context.Context, recipients []notification.Recipient, messages ...string) (int, error) {
	for _, r := range recipients {
		for _, m := range messages {
			_, _ = n.Send(ctx, r.Phone, m)
		}
	}
	return len(recipients), nil
}

type stubTiers map[string]pricing.Tier

func (s stubTiers) Tier(_ context.Context, id string) (pricing.Tier, bool) {
	t, ok := s[id]
	return t, ok
}

func (s stubTiers) SetTier(_ context.Context, id string, t pricing.Tier) error {
	s[id] = t
	return nil
}

type stubAudit struct {
	events []audit.Event
}

func (a *stubAudit) Log(_ context.Context, e audit.Event) { a.events = append(a.events, e) }
func (a *stubAudit) LogWithMetadata(ctx context.Context, e audit.Event, _ any) {
	a.Log(ctx, e)
}

func (a *stubAudit) actions() []string {
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	wf       *Workflow
	pending  *kv.MemoryStore
	tiers    stubTiers
	notifier *stubNotifier
	audit    *stubAudit
}

func newFixture(approvers map[string]string) fixture {
	f := fixture{
		pending:  kv.NewMemoryStore(),
		tiers:    stubTiers{client: pricing.TierGeneral},
		notifier: &stubNotifier{},
		audit:    &stubAudit{},
	}
	f.wf = NewWorkflow(NewDirectory(approvers), f.pending, f.tiers, f.notifier, f.audit, pricing.DefaultLabels(), zerolog.Nop())
	return f
}

var alice = Client{ID: client, Name: "Alice"}

func TestRequestNotifiesEveryApprover(t *testing.T) {
	f := newFixture(map[string]string{"Ana": seller, "luis": "584140000002"})

	p, err := f.wf.Request(context.Background(), alice, pricing.TierStore)
	require.NoError(t, err)
	assert.Equal(t, pricing.TierStore, p.Tier)

	require.Len(t, f.notifier.sent, 6)
	assert.Equal(t, message{seller, "*Solicitud de Cambio de Tipo de Cliente*\n\n*Cliente:* Alice\n*Número:* 584121234567\n*Tipo Solicitado:* TIENDA"}, f.notifier.sent[0])
	assert.Equal(t, message{seller, "/aprobar 584121234567 tienda"}, f.notifier.sent[1])
	assert.Equal(t, message{seller, "/rechazar 584121234567"}, f.notifier.sent[2])
	assert.Equal(t, "584140000002", f.notifier.sent[3].to)

	stored, ok, err := f.wf.PendingFor(context.Background(), client)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p.ID, stored.ID)
}

func TestRequestWithoutApprovers(t *testing.T) {
	f := newFixture(nil)

	_, err := f.wf.Request(context.Background(), alice, pricing.TierStore)
	assert.ErrorIs(t, err, ErrNoApprovers)

	_, ok, err := f.wf.PendingFor(context.Background(), client)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.notifier.sent)
}

func TestRepeatedRequestLastWins(t *testing.T) {
	f := newFixture(map[string]string{"ana": seller})
	ctx := context.Background()
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.wf.now = func() time.Time { return start }

	first, err := f.wf.Request(ctx, alice, pricing.TierStore)
	require.NoError(t, err)

	f.wf.now = func() time.Time { return start.Add(time.Minute) }
	second, err := f.wf.Request(ctx, alice, pricing.TierInstaller)
	require.NoError(t, err)

	stored, ok, err := f.wf.PendingFor(ctx, client)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.ID, stored.ID)
	assert.Equal(t, pricing.TierInstaller, stored.Tier)

	assert.Equal(t, []string{audit.ActionRequested, audit.ActionSuperseded, audit.ActionRequested}, f.audit.actions())
	assert.Equal(t, first.ID, f.audit.events[1].RequestID)
}

func TestApproveByNonApproverChangesNothing(t *testing.T) {
	f := newFixture(map[string]string{"ana": seller})
	ctx := context.Background()
	_, err := f.wf.Request(ctx, alice, pricing.TierStore)
	require.NoError(t, err)
	sentBefore := len(f.notifier.sent)

	err = f.wf.Approve(ctx, stranger, client, pricing.TierStore)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, pricing.TierGeneral, f.tiers[client])
	_, ok, _ := f.wf.PendingFor(ctx, client)
	assert.True(t, ok)
	assert.Len(t, f.notifier.sent, sentBefore)

	assert.ErrorIs(t, f.wf.Reject(ctx, stranger, client), ErrUnauthorized)
	_, ok, _ = f.wf.PendingFor(ctx, client)
	assert.True(t, ok)
}

func TestApproveOrRejectWithoutPending(t *testing.T) {
	f := newFixture(map[string]string{"ana": seller})
	ctx := context.Background()

	assert.ErrorIs(t, f.wf.Approve(ctx, seller, client, pricing.TierStore), ErrNoPendingRequest)
	assert.ErrorIs(t, f.wf.Reject(ctx, seller, client), ErrNoPendingRequest)
	assert.Equal(t, pricing.TierGeneral, f.tiers[client])
	assert.Empty(t, f.notifier.sent)
}

func TestApproveSetsTierAndClearsPending(t *testing.T) {
	f := newFixture(map[string]string{"ana": seller})
	ctx := context.Background()
	_, err := f.wf.Request(ctx, alice, pricing.TierStore)
	require.NoError(t, err)

	require.NoError(t, f.wf.Approve(ctx, seller, client, pricing.TierInstaller))

	assert.Equal(t, pricing.TierInstaller, f.tiers[client])
	_, ok, _ := f.wf.PendingFor(ctx, client)
	assert.False(t, ok)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, client, last.to)
	assert.Contains(t, last.text, "*INSTALADOR*")

	assert.ErrorIs(t, f.wf.Approve(ctx, seller, client, pricing.TierInstaller), ErrNoPendingRequest)
}

func TestRejectLeavesTier(t *testing.T) {
	f := newFixture(map[string]string{"ana": seller})
	ctx := context.Background()
	_, err := f.wf.Request(ctx, alice, pricing.TierInstaller)
	require.NoError(t, err)

	require.NoError(t, f.wf.Reject(ctx, seller, client))

	assert.Equal(t, pricing.TierGeneral, f.tiers[client])
	_, ok, _ := f.wf.PendingFor(ctx, client)
	assert.False(t, ok)
	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, client, last.to)
	assert.Contains(t, last.text, "rechazada")
}

func TestLoadDirectoryCreatesDocument(t *testing.T) {
	ctx := context.Background()
	docs, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)

	dir, err := LoadDirectory(ctx, docs)
	require.NoError(t, err)
	assert.Zero(t, dir.Len())

	var stored map[string]string
	found, err := docs.Load(ctx, docstore.Approvers, &stored)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, docs.Save(ctx, docstore.Approvers, map[string]string{"Ana María": seller}))
	dir, err = LoadDirectory(ctx, docs)
	require.NoError(t, err)
	n, ok := dir.Lookup("ANA MARÍA")
	assert.True(t, ok)
	assert.Equal(t, seller, n)
	assert.True(t, dir.IsApprover(seller))
	assert.Equal(t, []string{"ana maría"}, dir.Names())
}
