package agent

import (
	"fmt"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/shared/utils"
)

type keywordRule struct {
	words []string
	reply func(Profile) string
}

// keywordRules are tried in order against non-command text; first match wins.
var keywordRules = []keywordRule{
	{
		words: []string{"hola", "holis", "buenos días", "buenas tardes", "buenas noches", "hi", "hello"},
		reply: welcomeText,
	},
	{
		words: []string{"gracias", "chau", "adiós", "adios", "hasta luego", "bye", "goodbye"},
		reply: func(Profile) string { return farewellText },
	},
	{
		words: []string{"precio", "costo", "cuánto cuesta", "valor", "tarifa", "tarifas", "precios"},
		reply: func(Profile) string {
			return `💰 *Información de Precios*

Para obtener información detallada sobre precios, puedes:

• Escribir */precio* para ver información general

• Usar */precio [Código del Producto]* para consultar un producto por código

• Usar */buscar [término]* - Buscar productos específicos según un término`
		},
	},
	{
		words: []string{"producto", "servicio", "qué ofrecen", "catalogo", "inventario"},
		reply: func(Profile) string {
			return `🛍️ *Nuestros Productos*

Escribe */productos* para ver información completa del catálogo.

También puedes:
/buscar *[término]* - Buscar productos específicos

/precio *[código]* - Consultar producto por código`
		},
	},
	{
		words: []string{"horario", "cuándo", "cuando", "disponible", "abierto", "cerrado"},
		reply: func(p Profile) string {
			return fmt.Sprintf(`🕒 *Horarios de Atención*

Escribe /horarios para ver nuestros horarios completos.

*Respuesta rápida:*
%s (Lunes a Viernes)
%s (Sábados)
%s (Domingos)

¿Necesitas atención fuera de estos horarios?`, p.HoursWeekdays, p.HoursSaturday, p.HoursSunday)
		},
	},
	{
		words: []string{"problema", "error", "no funciona", "no sirve", "queja", "reclamo", "falla", "fallas", "soporte", "problemas"},
		reply: func(Profile) string {
			return `🛠️ *Soporte Técnico*

Lamento escuchar que tienes un problema. Para ayudarte mejor:

1️⃣ Describe el problema detalladamente
2️⃣ Menciona cuándo comenzó
3️⃣ Si es posible, envía capturas de pantalla y algún video.

Escribe a tu vendedor para más información.`
		},
	},
	{
		words: []string{"buscar", "encontrar", "tengo", "necesito", "requiero", "quiero"},
		reply: func(Profile) string {
			return `🔍 *Búsqueda de Productos*

Para buscar productos específicos, puedes usar:

/buscar [término] - Buscar por nombre o descripción

/productos - Ver información del catálogo

/precio *[código]* - Consultar producto por código

*Ejemplo:* /buscar breaker 2x20A`
		},
	},
}

// autoResponse returns the canned reply for free text, or false.
func autoResponse(text string, p Profile) (string, bool) {
	folded := utils.Fold(text)
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if utils.ContainsFolded(folded, w) {
				return rule.reply(p), true
			}
		}
	}
	return "", false
}
