package export

import (
	"time"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/conversation"
)

var conversationHeaders = []string{"Número", "Fecha", "Contacto", "Mensaje", "Origen", "Tipo"}

const originColumn = 4

// Conversations builds the export of every logged conversation. The JSON
// payload keeps the on-disk shape, number → entries; the table has one row
// per message.
func Conversations(all map[string][]conversation.Entry, loc *time.Location, now time.Time) *ExportData {
	if loc == nil {
		loc = time.UTC
	}

	var rows [][]any
	for _, number := range conversation.Numbers(all) {
		for _, e := range all[number] {
			origin := "cliente"
			if e.IsFromBot {
				origin = "bot"
			}
			rows = append(rows, []any{
				number,
				e.Timestamp.In(loc).Format("02/01/2006 15:04:05"),
				e.Contact,
				e.Message,
				origin,
				e.MessageType,
			})
		}
	}

	return &ExportData{
		Title:       "Conversaciones del Bot",
		Description: "Exportado el " + now.In(loc).Format("02/01/2006 15:04"),
		CreatedAt:   now,
		Headers:     conversationHeaders,
		Rows:        rows,
		Highlight: func(row []any) bool {
			return len(row) > originColumn && row[originColumn] == "bot"
		},
		Payload: all,
		Style:   ConversationStyle(),
	}
}
