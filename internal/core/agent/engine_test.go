package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/approval"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/audit"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/catalog"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/clients"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/conversation"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/kv"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/notification"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/quote"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/stats"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/whatsapp"
)

const (
	sellerNumber = "584140000001"
	clientNumber = "584121234567"
)

type sent struct {
	to, text string
	media    bool
}

type stubTransport struct {
	sent []sent
	fail map[string]bool
}

func (s *stubTransport) SendText(_ context.Context, to, text string) (string, error) {
	if s.fail[to] {
		return "", errors.New("offline")
	}
	s.sent = append(s.sent, sent{to: to, text: text})
	return "MSG" + string(rune('A'+len(s.sent))), nil
}

func (s *stubTransport) SendMedia(_ context.Context, to string, _ []byte, _, caption string) (string, error) {
	s.sent = append(s.sent, sent{to: to, text: caption, media: true})
	return "MEDIA", nil
}

func (s *stubTransport) to(number string) []string {
	var out []string
	for _, m := range s.sent {
		if m.to == number {
			out = append(out, m.text)
		}
	}
	return out
}

type stubCatalog struct {
	products map[string]catalog.Product
}

func (c stubCatalog) ByCode(code string) (catalog.Product, bool) {
	p, ok := c.products[code]
	return p, ok
}

func (c stubCatalog) Search(term string) []catalog.Product {
	var out []catalog.Product
	for _, code := range []string{"10000", "10050", "11050"} {
		if p, ok := c.products[code]; ok && strings.Contains(strings.ToLower(p.Description), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out
}

func (c stubCatalog) Categories() []string { return []string{"Breakers", "Cables"} }

func (c stubCatalog) Stats() catalog.Stats {
	return catalog.Stats{Products: len(c.products), Categories: 2, Path: "data/TablaProductos.xlsx"}
}

type fixedRates struct{ snap rates.Snapshot }

func (f fixedRates) Rates(context.Context) rates.Snapshot { return f.snap }

type nopSink struct{ events []audit.Event }

func (s *nopSink) Write(_ context.Context, e *audit.Event) error {
	s.events = append(s.events, *e)
	return nil
}

func (s *nopSink) History(context.Context, audit.Filter) ([]audit.Event, error) { return s.events, nil }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	engine    *Engine
	transport *stubTransport
	clients   *clients.Registry
	echoes    *whatsapp.EchoFilter
	convDir   string
	imagesDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	labels := pricing.DefaultLabels()

	cat := stubCatalog{products: map[string]catalog.Product{
		"11050": {Code: "11050", Description: "Breaker 1x20A", Category: "Breakers", GeneralPrice: price("10.00"), StorePrice: price("8.00"), InstallerPrice: price("9.00")},
		"10050": {Code: "10050", Description: "Breaker 2x40A", Category: "Breakers", GeneralPrice: price("5.00"), StorePrice: price("4.00")},
		"10000": {Code: "10000", Description: "Cable 12 AWG", Category: "Cables"},
	}}

	now := time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)
	rp := fixedRates{snap: rates.Snapshot{
		Dollar:      decimal.NewNullDecimal(price("36.50")),
		Euro:        decimal.NewNullDecimal(price("39.80")),
		LastUpdated: &now,
	}}

	docs, err := docstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	recorder := stats.NewRecorder(docs, 100, zerolog.Nop())

	registry := clients.NewRegistry(kv.NewMemoryStore(), labels, pricing.TierGeneral, zerolog.Nop())
	resolver := pricing.NewResolver(1.0)
	quotes := quote.NewEngine(cat, resolver, rp, registry, kv.NewMemoryStore(), recorder, quote.Config{
		MaxQuantity: 1000, MaxItems: 20, DefaultTier: pricing.TierGeneral, Labels: labels, Location: time.UTC,
	}, zerolog.Nop())

	transport := &stubTransport{fail: map[string]bool{}}
	echoes := whatsapp.NewEchoFilter(kv.NewMemoryStore(), time.Minute)
	notifier := notification.NewService(transport, echoes, zerolog.Nop())
	dir := approval.NewDirectory(map[string]string{"Carlos": sellerNumber})
	workflow := approval.NewWorkflow(dir, kv.NewMemoryStore(), registry, notifier,
		audit.NewService(&nopSink{}, zerolog.Nop()), labels, zerolog.Nop())

	convDir := t.TempDir()
	imagesDir := t.TempDir()

	engine := NewEngine(Deps{
		Transport:     transport,
		Echoes:        echoes,
		Catalog:       cat,
		Resolver:      resolver,
		Quotes:        quotes,
		Clients:       registry,
		Approvals:     workflow,
		Sellers:       dir,
		Rates:         rp,
		Stats:         recorder,
		Conversations: conversation.NewLogger(convDir, true),
	}, Config{
		Labels:      labels,
		DefaultTier: pricing.TierGeneral,
		Profile:     Profile{Name: "Electro C.A.", CatalogVersion: "2.1", HoursWeekdays: "9-6", HoursSaturday: "9-2", HoursSunday: "Cerrado"},
		ImagesDir:   imagesDir,
		Location:    time.UTC,
		StartedAt:   now.Add(-time.Hour),
	}, zerolog.Nop())

	// Both parties already know the bot.
	require.NoError(t, registry.SetTier(ctx, clientNumber, pricing.TierGeneral))
	require.NoError(t, registry.SetTier(ctx, sellerNumber, pricing.TierGeneral))

	return &fixture{engine: engine, transport: transport, clients: registry, echoes: echoes, convDir: convDir, imagesDir: imagesDir}
}

func (f *fixture) inbound(from, body string) whatsapp.InboundMessage {
	return whatsapp.InboundMessage{
		ID:          "IN-" + body,
		ChatID:      from + "@s.whatsapp.net",
		SenderID:    from + "@s.whatsapp.net",
		DisplayName: "Ana",
		Body:        body,
		Timestamp:   time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) respond(number, body string) string {
	return f.engine.Respond(context.Background(), Contact{Number: number, Name: "Ana"}, body).Text
}

func TestHandleMessageRepliesAndLogs(t *testing.T) {
	f := newFixture(t)

	f.engine.HandleMessage(context.Background(), f.inbound(clientNumber, "/precio 11050 2"))

	replies := f.transport.to(clientNumber + "@s.whatsapp.net")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "*Total de la Cotización:* $20.00")

	all, err := conversation.LoadAll(f.convDir)
	require.NoError(t, err)
	require.Len(t, all[clientNumber], 2)
	assert.False(t, all[clientNumber][0].IsFromBot)
	assert.True(t, all[clientNumber][1].IsFromBot)
}

func TestHandleMessageWelcomesNewClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const newcomer = "584249999999"

	f.engine.HandleMessage(ctx, f.inbound(newcomer, "hola"))

	replies := f.transport.to(newcomer + "@s.whatsapp.net")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0], "Bienvenido al servicio automatizado")

	tier, ok := f.clients.Tier(ctx, newcomer)
	require.True(t, ok)
	assert.Equal(t, pricing.TierGeneral, tier)

	f.engine.HandleMessage(ctx, f.inbound(newcomer, "/ayuda"))
	assert.Len(t, f.transport.to(newcomer+"@s.whatsapp.net"), 3, "no second welcome")
}

func TestHandleMessageSuppression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status := f.inbound(clientNumber, "/ayuda")
	status.IsStatus = true

	stale := f.inbound(clientNumber, "/ayuda")
	stale.Timestamp = time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)

	mine := f.inbound(clientNumber, "/ayuda")
	mine.FromMe = true

	group := f.inbound(clientNumber, "/ayuda")
	group.IsGroup = true
	group.ChatID = "120363000000@g.us"

	echo := f.inbound(clientNumber, "/ayuda")
	echo.ID = "ECHO-1"
	require.NoError(t, f.echoes.Mark(ctx, "ECHO-1"))

	for _, msg := range []whatsapp.InboundMessage{status, stale, mine, group, echo} {
		f.engine.HandleMessage(ctx, msg)
	}
	assert.Empty(t, f.transport.sent)

	// The echo is ignored once only.
	f.engine.HandleMessage(ctx, echo)
	assert.Len(t, f.transport.sent, 1)
}

func TestRespondFallbacks(t *testing.T) {
	f := newFixture(t)

	text := f.respond(clientNumber, "qwerty")
	assert.True(t, strings.HasPrefix(text, notUnderstood+"\n\n"))
	assert.Contains(t, text, "Bot de Atención al Cliente")

	text = f.respond(clientNumber, "/nada")
	assert.True(t, strings.HasPrefix(text, unknownCommand+"\n\n"))
}

func TestInformationalCommands(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.respond(clientNumber, "/info"), "🏢 *Empresa:* Electro C.A.")
	assert.Contains(t, f.respond(clientNumber, "/horarios"), "*Sábados:* 9-2")
	assert.Contains(t, f.respond(clientNumber, "/productos"), "*Catálogo de Productos* *v2.1*")
	assert.Contains(t, f.respond(clientNumber, "/categorias"), "2️⃣ *Cables*")
	assert.Contains(t, f.respond(clientNumber, "/codigo"), "*Tu tipo de cliente actual es:* GENERAL")
	assert.Contains(t, f.respond(clientNumber, "/stats"), "• Total de productos: 3")

	bcv := f.respond(clientNumber, "/bcv")
	assert.Contains(t, bcv, "💵 *Dólar:* 36.50 Bs.")
	assert.Contains(t, bcv, "*Actualizado:* 05/03/2024, 04:00:00 p. m.")
}

func TestSearch(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, searchUsage, f.respond(clientNumber, "/buscar"))

	text := f.respond(clientNumber, "/buscar breaker")
	assert.Contains(t, text, "*Encontrados 2 producto(s):*")
	assert.Contains(t, text, "1️⃣ *10050* - Breaker 2x40A\n💰 $5.00")

	text = f.respond(clientNumber, "/buscar cable")
	assert.Contains(t, text, "💰 Precio no disponible")

	text = f.respond(clientNumber, "/buscar nada")
	assert.Contains(t, text, "No se encontraron productos")
}

func TestQuoteCommands(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.respond(clientNumber, "/precio"), "/precio *Código Producto*")
	assert.Contains(t, f.respond(clientNumber, "/preciog"), "precio general")

	text := f.respond(clientNumber, "/preciog 11050")
	assert.Contains(t, text, "*Subtotal:* $10.00")

	assert.Equal(t, rawDenied, f.respond(clientNumber, "/divisas 11050"))

	require.NoError(t, f.clients.SetTier(context.Background(), clientNumber, pricing.TierStore))
	assert.Contains(t, f.respond(clientNumber, "/divisas"), "Consulta de Precios en Divisas")
	assert.Contains(t, f.respond(clientNumber, "/divisas 11050 3"), "$24.00")
}

func TestSendQuoteToSeller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Contains(t, f.respond(clientNumber, "/enviar"), "Vendedores disponibles: carlos")
	assert.Equal(t, `❌ Vendedor "pedro" no encontrado.`, f.respond(clientNumber, "/enviar Pedro"))
	assert.Equal(t, noRecentQuote, f.respond(clientNumber, "/enviar carlos"))

	f.respond(clientNumber, "/precio 11050")
	reply := f.respond(clientNumber, "/enviar Carlos")
	assert.Equal(t, "✅ ¡Éxito! Tu cotización ha sido enviada a *carlos*. Pronto se pondrá en contacto contigo.", reply)

	forwarded := f.transport.to(sellerNumber)
	require.Len(t, forwarded, 1)
	assert.True(t, strings.HasPrefix(forwarded[0], "*Nueva Cotización Solicitada*\n\n*Cliente:* Ana\n*Número:* "+clientNumber+"\n*Tipo de Cliente:* GENERAL\n\n-----------------------------------\n📝 *Cotización Rápida*"))

	seen, err := f.echoes.Seen(ctx, "MSGB")
	require.NoError(t, err)
	assert.True(t, seen, "forwarded message id is marked")

	assert.Equal(t, noRecentQuote, f.respond(clientNumber, "/enviar carlos"), "last quote is cleared")
}

func TestSendQuoteFailureKeepsQuote(t *testing.T) {
	f := newFixture(t)
	f.transport.fail[sellerNumber] = true

	f.respond(clientNumber, "/precio 11050")
	assert.Equal(t, sendFailed, f.respond(clientNumber, "/enviar carlos"))

	delete(f.transport.fail, sellerNumber)
	assert.Contains(t, f.respond(clientNumber, "/enviar carlos"), "¡Éxito!")
}

func TestTierApprovalFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.respond(clientNumber, "/tienda")
	assert.Contains(t, reply, "✅ *Solicitud Enviada*")
	assert.Contains(t, reply, "*TIENDA*")
	assert.Equal(t, []string{
		"*Solicitud de Cambio de Tipo de Cliente*\n\n*Cliente:* Ana\n*Número:* " + clientNumber + "\n*Tipo Solicitado:* TIENDA",
		"/aprobar " + clientNumber + " tienda",
		"/rechazar " + clientNumber,
	}, f.transport.to(sellerNumber))

	assert.Equal(t, approverOnly, f.respond(clientNumber, "/aprobar "+clientNumber+" tienda"))
	assert.Equal(t, approverOnly, f.respond(clientNumber, "/aprobar"))
	assert.Equal(t, approveUsage, f.respond(sellerNumber, "/aprobar "+clientNumber))
	assert.Contains(t, f.respond(sellerNumber, "/aprobar "+clientNumber+" vip"), "Tipo de cliente no válido")

	reply = f.respond(sellerNumber, "/aprobar "+clientNumber+" tienda")
	assert.Equal(t, "✅ Solicitud del cliente "+clientNumber+" aprobada. Se le ha asignado el tipo *TIENDA*.", reply)
	tier, _ := f.clients.Tier(ctx, clientNumber)
	assert.Equal(t, pricing.TierStore, tier)

	assert.Equal(t, noPendingText(clientNumber), f.respond(sellerNumber, "/aprobar "+clientNumber+" tienda"))
}

func TestTierRejectFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, rejectUsage, f.respond(sellerNumber, "/rechazar"))
	assert.Equal(t, noPendingText(clientNumber), f.respond(sellerNumber, "/rechazar "+clientNumber))

	f.respond(clientNumber, "/instalador")
	assert.Equal(t, approverOnly, f.respond(clientNumber, "/rechazar "+clientNumber))

	reply := f.respond(sellerNumber, "/rechazar "+clientNumber)
	assert.Equal(t, "🚫 Solicitud del cliente "+clientNumber+" ha sido rechazada y notificada.", reply)

	tier, _ := f.clients.Tier(ctx, clientNumber)
	assert.Equal(t, pricing.TierGeneral, tier)
}

func TestPhoto(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, photoUsage, f.respond(clientNumber, "/foto"))
	assert.Contains(t, f.respond(clientNumber, "/foto 99999"), "no encontrado")
	assert.Contains(t, f.respond(clientNumber, "/foto 11050"), "no se encontró una imagen")

	require.NoError(t, os.WriteFile(filepath.Join(f.imagesDir, "11050.png"), []byte("png"), 0o644))
	reply := f.engine.Respond(context.Background(), Contact{Number: clientNumber, Name: "Ana"}, "/imagen 11050")
	require.True(t, reply.IsMedia())
	assert.Equal(t, "image/png", reply.MimeType)
	assert.Equal(t, "📷 *Breaker 1x20A*\n*Código:* 11050", reply.Caption)
}

func TestPhoneNumber(t *testing.T) {
	assert.Equal(t, "584121234567", phoneNumber("584121234567@s.whatsapp.net"))
	assert.Equal(t, "584121234567", phoneNumber("584121234567:12@s.whatsapp.net"))
	assert.Equal(t, "584121234567", phoneNumber("+584121234567"))
}
