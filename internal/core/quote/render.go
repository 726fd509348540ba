package quote

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/pricing"
)

const separator = "---------------------------------------"

func commandName(mode pricing.Mode) string {
	if mode == pricing.ModeRaw {
		return "divisas"
	}
	return "precio"
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func bullets(entries []InvalidEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return "• " + strings.Join(parts, "\n• ")
}

func renderEmpty(mode pricing.Mode) string {
	if mode == pricing.ModeRaw {
		return "💱 *Cotización en Divisas*\n\nNo se especificaron productos."
	}
	return "📝 *Cotización*\n\nNo se especificaron productos."
}

func renderGuidance(mode pricing.Mode, invalid []InvalidEntry) string {
	cmd := commandName(mode)

	var b strings.Builder
	b.WriteString("❌ *Error en la Cotización*\n\n")
	b.WriteString("No se encontraron productos válidos en tu solicitud. Por favor, verifica los códigos o cantidades ingresados.\n\n")
	fmt.Fprintf(&b, "*Argumentos con formato inválido:*\n%s\n\n", bullets(invalid))
	topic := "precios"
	if mode == pricing.ModeRaw {
		topic = "divisas"
	}
	fmt.Fprintf(&b, "*Aquí tienes ayuda sobre cómo usar el comando de %s:*\n\n", topic)
	fmt.Fprintf(&b, "Después del comando */%s* solo debe ingresar códigos válidos, seguido de la cantidad de ese producto.\n\n", cmd)
	fmt.Fprintf(&b, "*/%s [código]* - Para ver información y cotizar uno o más productos.\n", cmd)
	b.WriteString("*Ejemplo:*\n")
	fmt.Fprintf(&b, "*/%s* 11050 3\n\n", cmd)
	b.WriteString("*/buscar [término de búsqueda]* - Para encontrar productos por su nombre o descripción.\n")
	b.WriteString("*Ejemplo:*\n")
	b.WriteString("*/buscar* breaker\n")
	return b.String()
}

func (e *Engine) render(res Result, overridden bool) string {
	raw := res.Mode == pricing.ModeRaw

	var b strings.Builder
	if raw {
		b.WriteString("💱 *Cotización Especial*\n")
	} else {
		b.WriteString("📝 *Cotización Rápida*\n")
	}
	fmt.Fprintf(&b, "*Fecha:* %s\n\n", res.Date.Format("02/01/2006"))
	b.WriteString(separator + "\n\n")

	for _, l := range res.Lines {
		fmt.Fprintf(&b, "✅ *Producto:* %s\n", l.Product.Description)
		fmt.Fprintf(&b, "*Código:* %s\n", l.Item.Code)
		fmt.Fprintf(&b, "*Cantidad:* %d\n", l.Item.Quantity)
		if raw {
			fmt.Fprintf(&b, "*Precio Especial Unitario:* %s\n", money(l.UnitPrice))
		} else {
			fmt.Fprintf(&b, "*Precio Unitario:* %s\n", listPrice(l.UnitPrice))
		}
		fmt.Fprintf(&b, "*Subtotal:* %s\n\n", money(l.Subtotal))
	}

	if raw && overridden {
		fmt.Fprintf(&b, "*Precios calculados para tipo de cliente:* %s\n\n", e.cfg.Labels.Upper(res.Tier))
	}

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "*Total de la Cotización:* %s\n", money(res.GrandTotal))
	if raw {
		b.WriteString("\n")
	} else if res.DollarRate.Valid {
		rate := res.DollarRate.Decimal
		fmt.Fprintf(&b, "*Tasa BCV (USD):* %s Bs.\n", rate.StringFixed(2))
		fmt.Fprintf(&b, "*Total Bs:* %s Bs.\n", res.GrandTotal.Mul(rate).StringFixed(2))
	}
	fmt.Fprintf(&b, "*Total de Artículos:* %d\n", res.TotalUnits)
	b.WriteString(separator + "\n\n")

	if len(res.Invalid) > 0 {
		title := "❌ *Argumentos con formato inválido (ignorados):*"
		if raw {
			title = "❌ *Argumentos inválidos (ignorados):*"
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", title, bullets(res.Invalid))
	}
	if len(res.Omitted) > 0 {
		parts := make([]string, len(res.Omitted))
		for i, it := range res.Omitted {
			parts[i] = fmt.Sprintf("%s (cantidad %d)", it.Code, it.Quantity)
		}
		fmt.Fprintf(&b, "⚠️ *Productos omitidos (máximo %d por cotización):*\n• %s\n\n",
			e.cfg.MaxItems, strings.Join(parts, "\n• "))
	}
	if len(res.NotFound) > 0 {
		fmt.Fprintf(&b, "❌ *Productos no encontrados:*\n%s\n\n", strings.Join(res.NotFound, ", "))
	}

	b.WriteString("Los Precios *NO INCLUYEN IVA*")
	return b.String()
}

// listPrice formats a marked-up unit price; zero means the tier has no price.
func listPrice(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "Precio no disponible"
	}
	return money(d)
}
