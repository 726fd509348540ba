package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/approval"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/quote"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/rates"
)

const maxSearchResults = 20

func (e *Engine) dispatch(ctx context.Context, c Contact, cmd Command) Reply {
	switch cmd.Kind {
	case CommandHelp:
		return Reply{Text: helpText}
	case CommandInfo:
		return Reply{Text: infoText(e.cfg.Profile)}
	case CommandHours:
		return Reply{Text: hoursText(e.cfg.Profile)}
	case CommandProducts:
		return Reply{Text: e.products()}
	case CommandCategories:
		return Reply{Text: e.categories()}
	case CommandSearch:
		return Reply{Text: e.search(ctx, c, cmd.Args)}
	case CommandPrice:
		if len(cmd.Args) == 0 {
			return Reply{Text: usageText("precio")}
		}
		return Reply{Text: e.quote(ctx, c, cmd.Args, nil, pricing.ModeList)}
	case CommandPriceGeneral:
		if len(cmd.Args) == 0 {
			return Reply{Text: usageText("preciog")}
		}
		general := pricing.TierGeneral
		return Reply{Text: e.quote(ctx, c, cmd.Args, &general, pricing.ModeList)}
	case CommandRawPrice:
		return Reply{Text: e.rawPrice(ctx, c, cmd.Args)}
	case CommandTierInfo:
		return Reply{Text: e.tierInfo(ctx, c)}
	case CommandTierRequest:
		return Reply{Text: e.requestTier(ctx, c, cmd.Tier)}
	case CommandStats:
		return Reply{Text: e.stats()}
	case CommandRates:
		return Reply{Text: ratesText(e.deps.Rates.Rates(ctx), e.cfg.Location)}
	case CommandSend:
		return Reply{Text: e.sendQuote(ctx, c, cmd.Args)}
	case CommandPhoto:
		return e.photo(cmd.Args)
	case CommandApprove:
		return Reply{Text: e.approve(ctx, c, cmd.Args)}
	case CommandReject:
		return Reply{Text: e.reject(ctx, c, cmd.Args)}
	case CommandUnknown:
		return Reply{Text: unknownCommand + "\n\n" + helpText}
	default:
		return Reply{Text: unknownCommand + "\n\n" + helpText}
	}
}

func (e *Engine) quote(ctx context.Context, c Contact, args []string, override *pricing.Tier, mode pricing.Mode) string {
	res := e.deps.Quotes.BuildQuote(ctx, args, quote.Requester{ID: c.Number, Name: c.Name}, override, mode)
	return res.Text
}

func (e *Engine) rawPrice(ctx context.Context, c Contact, args []string) string {
	tier := e.deps.Quotes.ResolveTier(ctx, c.Number, nil)
	if !pricing.AllowsRaw(tier) {
		return rawDenied
	}
	if len(args) == 0 {
		return rawUsageText()
	}
	return e.quote(ctx, c, args, nil, pricing.ModeRaw)
}

func (e *Engine) products() string {
	s := e.deps.Catalog.Stats()
	return fmt.Sprintf(`🛍️ *Catálogo de Productos* *v%s*

📊 *Estadísticas:*
• Total de productos: %d
• Categorías disponibles: %d

*Comandos útiles:*
/buscar *término* - Buscar productos específicos según un término

/precio *código* - Ver producto por código`, e.cfg.Profile.CatalogVersion, s.Products, s.Categories)
}

func (e *Engine) categories() string {
	cats := e.deps.Catalog.Categories()
	if len(cats) == 0 {
		return `📂 *Categorías de Productos*

No hay categorías disponibles en este momento.

Usa /productos para ver más información.`
	}

	var b strings.Builder
	b.WriteString("📂 *Categorías de Productos*\n\n")
	for i, cat := range cats {
		fmt.Fprintf(&b, "%d️⃣ *%s*\n", i+1, cat)
	}
	b.WriteString("\n*Para ver productos de una categoría:*\n/buscar *Nombre de Categoría*\n\n*Ejemplo:* /buscar protectores")
	return b.String()
}

func (e *Engine) search(ctx context.Context, c Contact, args []string) string {
	if len(args) == 0 {
		return searchUsage
	}

	term := strings.Join(args, " ")
	results := e.deps.Catalog.Search(term)
	if len(results) == 0 {
		return fmt.Sprintf(`🔍 *Búsqueda: "%s"*

No se encontraron productos que coincidan con tu búsqueda.

*Sugerencias:*
• Verifica la ortografía
• Usa términos más generales
• Usa /categorias para ver las categorías de los productos disponibles`, term)
	}

	tier := e.deps.Quotes.ResolveTier(ctx, c.Number, nil)

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 *Búsqueda: \"%s\"*\n\n*Encontrados %d producto(s):*\n\n", term, len(results))
	for i, p := range results {
		if i == maxSearchResults {
			break
		}
		price := "Precio no disponible"
		if unit := e.deps.Resolver.MarkedUpPrice(p, tier); unit.IsPositive() {
			price = formatMoney(unit)
		}
		fmt.Fprintf(&b, "%d️⃣ *%s* - %s\n💰 %s\n\n", i+1, p.Code, p.Description, price)
	}
	if len(results) > maxSearchResults {
		fmt.Fprintf(&b, "... y %d producto(s) más.\n\n", len(results)-maxSearchResults)
	}
	b.WriteString("*Para ver detalles completos:*\n/precio [código del producto]")
	return b.String()
}

func (e *Engine) tierInfo(ctx context.Context, c Contact) string {
	tier := e.deps.Quotes.ResolveTier(ctx, c.Number, nil)
	return fmt.Sprintf(`💰 *Información de Precios*

*Tu tipo de cliente actual es:* %s

*Para consultar precios específicos:*
*/precio *código* - Ver precio de producto específico

/buscar *término* - Buscar productos específicos según un término y sus precios`, e.cfg.Labels.Upper(tier))
}

func (e *Engine) requestTier(ctx context.Context, c Contact, tier pricing.Tier) string {
	_, err := e.deps.Approvals.Request(ctx, approval.Client{ID: c.Number, Name: c.Name}, tier)
	switch {
	case errors.Is(err, approval.ErrNoApprovers):
		return noApprovers
	case err != nil:
		e.logger.Error().Err(err).Str("number", c.Number).Msg("❌ Tier request failed")
		return genericFailure
	}
	return fmt.Sprintf(`✅ *Solicitud Enviada*

Tu solicitud para cambiar a tipo de cliente *%s* ha sido enviada a nuestros vendedores para su aprobación.

Te notificaremos tan pronto como sea procesada.`, e.cfg.Labels.Upper(tier))
}

func (e *Engine) approve(ctx context.Context, c Contact, args []string) string {
	if len(args) < 2 {
		if !e.deps.Sellers.IsApprover(c.Number) {
			return approverOnly
		}
		return approveUsage
	}

	clientID := phoneNumber(args[0])
	tier, ok := e.cfg.Labels.Parse(args[1])
	if !ok {
		if !e.deps.Sellers.IsApprover(c.Number) {
			return approverOnly
		}
		return fmt.Sprintf(unknownTierReply, e.tierLabels())
	}

	switch err := e.deps.Approvals.Approve(ctx, c.Number, clientID, tier); {
	case errors.Is(err, approval.ErrUnauthorized):
		return approverOnly
	case errors.Is(err, approval.ErrNoPendingRequest):
		return noPendingText(clientID)
	case err != nil:
		e.logger.Error().Err(err).Str("client", clientID).Msg("❌ Approval failed")
		return genericFailure
	}
	return fmt.Sprintf("✅ Solicitud del cliente %s aprobada. Se le ha asignado el tipo *%s*.", clientID, e.cfg.Labels.Upper(tier))
}

func (e *Engine) reject(ctx context.Context, c Contact, args []string) string {
	if len(args) < 1 {
		if !e.deps.Sellers.IsApprover(c.Number) {
			return approverOnly
		}
		return rejectUsage
	}

	clientID := phoneNumber(args[0])
	switch err := e.deps.Approvals.Reject(ctx, c.Number, clientID); {
	case errors.Is(err, approval.ErrUnauthorized):
		return approverOnly
	case errors.Is(err, approval.ErrNoPendingRequest):
		return noPendingText(clientID)
	case err != nil:
		e.logger.Error().Err(err).Str("client", clientID).Msg("❌ Rejection failed")
		return genericFailure
	}
	return fmt.Sprintf("🚫 Solicitud del cliente %s ha sido rechazada y notificada.", clientID)
}

func noPendingText(clientID string) string {
	return fmt.Sprintf("⚠️ No hay una solicitud pendiente para el cliente %s, o ya fue procesada.", clientID)
}

func (e *Engine) tierLabels() string {
	labels := make([]string, 0, len(pricing.Tiers))
	for _, t := range pricing.Tiers {
		labels = append(labels, e.cfg.Labels.Label(t))
	}
	return strings.Join(labels, ", ")
}

func (e *Engine) stats() string {
	s := e.deps.Catalog.Stats()
	q := e.deps.Stats.Snapshot()

	updated, state := "N/A", "No disponible"
	if !s.LastLoaded.IsZero() {
		updated = s.LastLoaded.In(e.cfg.Location).Format("02/01/2006 15:04:05")
		state = "Actualizado"
	}

	return fmt.Sprintf(`📊 *Estadísticas del Sistema*

*Productos:*
• Total de productos: %d
• Categorías disponibles: %d
*Cotizaciones:*
• Total de cotizaciones: %d
  - Vía /precios: %d
  - Vía /divisas: %d
• Registros en historial: %d

*Configuración:*
• Multiplicador de precios: %sx
• Última actualización: %s

*Archivo Excel:*
• Ruta: %s
• Estado: %s

*Comandos registrados:* %d`,
		s.Products, s.Categories,
		q.TotalQuotes, q.CodigoQuotes, q.DivisasQuotes, len(q.QuoteHistory),
		e.deps.Resolver.Multiplier().String(), updated,
		s.Path, state,
		registeredCommands(e.cfg.Labels))
}

// ratesText renders the /bcv reply.
func ratesText(snap rates.Snapshot, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("🏦 *Tasa de Cambio del BCV*\n\n")

	if d, ok := snap.DollarRate(); ok {
		fmt.Fprintf(&b, "💵 *Dólar:* %s Bs.\n", d.StringFixed(2))
	} else {
		b.WriteString("💵 *Dólar:* No disponible\n")
	}
	if eu, ok := snap.EuroRate(); ok {
		fmt.Fprintf(&b, "💶 *Euro:* %s Bs.\n", eu.StringFixed(2))
	} else {
		b.WriteString("💶 *Euro:* No disponible\n")
	}

	if snap.LastUpdated != nil {
		fmt.Fprintf(&b, "\n*Actualizado:* %s\n", localTimestamp(snap.LastUpdated.In(loc)))
	}

	b.WriteString("\nFuente: Banco Central de Venezuela (BCV)")
	return b.String()
}

// localTimestamp formats t as dd/mm/yyyy, hh:mm:ss a. m./p. m.
func localTimestamp(t time.Time) string {
	suffix := "a. m."
	if t.Hour() >= 12 {
		suffix = "p. m."
	}
	return t.Format("02/01/2006, 03:04:05") + " " + suffix
}

func (e *Engine) sendQuote(ctx context.Context, c Contact, args []string) string {
	if len(args) == 0 {
		available := strings.Join(e.deps.Sellers.Names(), ", ")
		if available == "" {
			available = "Ninguno configurado"
		}
		return "Para enviar tu última cotización a un vendedor, escribe:\n/enviar *Nombre del Vendedor*\n\nVendedores disponibles: " + available
	}

	seller := strings.ToLower(args[0])
	number, ok := e.deps.Sellers.Lookup(seller)
	if !ok {
		return fmt.Sprintf("❌ Vendedor \"%s\" no encontrado.", seller)
	}

	last, ok, err := e.deps.Quotes.LastQuote(ctx, c.Number)
	if err != nil {
		e.logger.Error().Err(err).Str("number", c.Number).Msg("❌ Failed to read last quote")
	}
	if !ok {
		return noRecentQuote
	}

	tier := e.deps.Clients.Resolve(ctx, c.Number)
	msg := fmt.Sprintf("*Nueva Cotización Solicitada*\n\n*Cliente:* %s\n*Número:* %s\n*Tipo de Cliente:* %s\n\n-----------------------------------\n%s",
		c.Name, c.Number, e.cfg.Labels.Upper(tier), last)

	id, err := e.deps.Transport.SendText(ctx, number, msg)
	if err != nil {
		e.logger.Error().Err(err).Str("seller", seller).Msg("❌ Failed to forward quote to seller")
		return sendFailed
	}
	if e.deps.Echoes != nil {
		if err := e.deps.Echoes.Mark(ctx, id); err != nil {
			e.logger.Warn().Err(err).Str("id", id).Msg("⚠️ Could not mark forwarded quote")
		} else {
			e.logger.Info().Str("id", id).Msg("📝 Forwarded quote registered for echo suppression")
		}
	}
	if err := e.deps.Quotes.ClearLastQuote(ctx, c.Number); err != nil {
		e.logger.Error().Err(err).Str("number", c.Number).Msg("❌ Failed to clear last quote")
	}

	return fmt.Sprintf("✅ ¡Éxito! Tu cotización ha sido enviada a *%s*. Pronto se pondrá en contacto contigo.", seller)
}

var imageTypes = []struct {
	ext  string
	mime string
}{
	{".jpg", "image/jpeg"},
	{".jpeg", "image/jpeg"},
	{".png", "image/png"},
}

func (e *Engine) photo(args []string) Reply {
	if len(args) == 0 {
		return Reply{Text: photoUsage}
	}

	code := args[0]
	p, ok := e.deps.Catalog.ByCode(code)
	if !ok {
		return Reply{Text: fmt.Sprintf("❌ Producto con código \"%s\" no encontrado.", code)}
	}

	for _, it := range imageTypes {
		path := filepath.Join(e.cfg.ImagesDir, filepath.Base(code)+it.ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			e.logger.Error().Err(err).Str("code", code).Msg("❌ Failed to read product image")
			return Reply{Text: photoFailed}
		}
		return Reply{
			Media:    data,
			MimeType: it.mime,
			Caption:  fmt.Sprintf("📷 *%s*\n*Código:* %s", p.Description, code),
		}
	}

	return Reply{Text: fmt.Sprintf("🖼️ Lo sentimos, no se encontró una imagen para el producto *%s* (Código: %s).", p.Description, code)}
}
