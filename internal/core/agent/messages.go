package agent

import (
	"fmt"
	"strings"
)

// Profile is the business information shown by /info, /horarios and the
// welcome message.
type Profile struct {
	Name           string
	Email          string
	Web            string
	Address        string
	HoursWeekdays  string
	HoursSaturday  string
	HoursSunday    string
	CatalogVersion string
}

const helpText = `🤖 *Bot de Atención al Cliente*

*Comandos generales:*
*/ayuda* - Muestra este menú
*/info* - Información de contacto
*/horarios* - Horarios de atención
*/bcv* - Muestra la tasa de cambio del BCV

*Comandos de productos:*
*/precio [código]* - Información y cotización de producto(s)

*/buscar [término]* - Buscar productos específicos según un término

*Ejemplos:*
• /buscar breaker
• /precio 11050`

const (
	notUnderstood  = "🤔 No he entendido tu mensaje."
	unknownCommand = "❌ *Comando no reconocido*."
)

func welcomeText(p Profile) string {
	return fmt.Sprintf(`¡Hola 👋!

Bienvenido al servicio automatizado de consulta de precios. 

Actualmente trabajo con el *Catálogo de precios v%s*
Asegúrate de tener el catálogo a mano para poder ayudarte.

Para consulta de precios usa el siguiente comando:
*/precio código* - Consulta del precio de un producto específico

*Ejempo:*
/precio 11050

Escribe */precio* sin ningún código y obtendrás más información sobre este comando.

Puedes escribir /ayuda para ver todas las opciones disponibles.`, p.CatalogVersion)
}

const farewellText = `¡De nada! 😊 

Fue un placer ayudarte. Si tienes más preguntas, no dudes en contactarnos.

¡Que tengas un excelente día!`

func hoursBlock(p Profile) string {
	return fmt.Sprintf("*Lunes a Viernes:* %s\n*Sábados:* %s\n*Domingos:* %s", p.HoursWeekdays, p.HoursSaturday, p.HoursSunday)
}

func infoText(p Profile) string {
	return fmt.Sprintf(`📞 *Información de Contacto*

🏢 *Empresa:* %s

📧 *Email:* %s

🌐 *Web:* %s

📍 *Dirección:* %s

*Horarios de atención:*
%s`, p.Name, p.Email, p.Web, p.Address, hoursBlock(p))
}

func hoursText(p Profile) string {
	return "🕒 *Horarios de Atención*\n\n" + hoursBlock(p)
}

// usageText is shown by the quote commands when called without codes.
func usageText(command string) string {
	var b strings.Builder
	b.WriteString("🔍 *Consulta de Precios*\n\n")
	if command == "preciog" {
		b.WriteString("Para consultar el precio general de un producto, escribe:\n")
	} else {
		b.WriteString("Para consultar el precio de un producto específico, escribe:\n")
	}
	fmt.Fprintf(&b, "/%s *Código Producto*\n\n*Ejemplo:* /%s *11050*\n\n\n", command, command)
	b.WriteString(quickQuoteHelp(command))
	return b.String()
}

func rawUsageText() string {
	return "💱 *Consulta de Precios en Divisas*\n\nEste comando muestra el precio en divisas de un producto.\n\n" +
		"Para consultar el precio de un producto específico, escribe:\n/divisas *Código Producto*\n\n*Ejemplo:* /divisas *11050*\n\n\n" +
		quickQuoteHelp("divisas")
}

func quickQuoteHelp(command string) string {
	return fmt.Sprintf(`Para cotizaciones rápidas, escribe:
/%[1]s *CódigoProducto1, cantidad, CódigoProductoN, cantidad*

*Ejemplo:* /%[1]s *11050, 1, 10000, 3, 10050, 2*

También  puedes hacer la misma consulta de la siguiente manera:
/%[1]s *CódigoProducto1 cantidad CódigoProductoN cantidad*

*Ejemplo:* /%[1]s *11050 1 10000 3 10050 2*

*Para enviar la cotización a un vendedor:*
Después de hacer tu cotización, usa el comando: 
/enviar *Nombre del Vendedor*

*NOTAS:*
Se permiten máximo 20 productos para la cotización rápida.
Si no se indica la cantidad, se asume que es 1.`, command)
}

const rawDenied = "❌ *Acceso Denegado*\n\nEl comando /divisas NO está disponible para usted."

const searchUsage = `🔍 *Búsqueda de Productos*

Para buscar productos, escribe:
/buscar *término de búsqueda*

*Ejemplos:*
/buscar breaker
/buscar protector
/buscar wifi`

const photoUsage = "📷 Para solicitar la foto de un producto, escribe:\n/foto *Código del Producto*\n\n*Ejemplo:* /foto 11050"

const (
	approverOnly     = "❌ Este comando solo puede ser usado por vendedores autorizados."
	approveUsage     = "Formato incorrecto. Usa: /aprobar <numero_cliente> <tipo_cliente>"
	rejectUsage      = "Formato incorrecto. Usa: /rechazar <numero_cliente>"
	noApprovers      = "❌ No hay vendedores configurados para aprobar tu solicitud. Por favor, contacta a soporte."
	noRecentQuote    = "📝 No tienes una cotización reciente para enviar. Por favor, genera una cotización primero con el comando /precio."
	sendFailed       = "❌ Ocurrió un error al intentar enviar la cotización. Por favor, intenta de nuevo más tarde o contacta directamente al vendedor."
	photoFailed      = "❌ Ocurrió un error al intentar enviar la imagen. Por favor, contacta directamente al vendedor."
	genericFailure   = "❌ Ocurrió un error al procesar tu solicitud. Por favor, intenta de nuevo más tarde."
	unknownTierReply = "❌ Tipo de cliente no válido. Usa uno de: %s"
)
