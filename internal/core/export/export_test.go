package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/conversation"
)

func sample() map[string][]conversation.Entry {
	ts := time.Date(2024, 3, 10, 16, 30, 0, 0, time.UTC)
	return map[string][]conversation.Entry{
		"584121234567": {
			{Timestamp: ts, Contact: "Alice", Message: "/precio 11050", MessageType: "chat"},
			{Timestamp: ts.Add(time.Second), Contact: "Alice", Message: "📝 *Cotización Rápida*", IsFromBot: true, MessageType: "text"},
		},
		"584140000001": {
			{Timestamp: ts, Contact: "Bob", Message: "hola", MessageType: "chat"},
		},
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatExcel, FormatFor("out/conversaciones.XLSX"))
	assert.Equal(t, FormatJSON, FormatFor("conversations_export.json"))
	assert.Equal(t, FormatJSON, FormatFor("export"))
}

func TestExportConversationsJSON(t *testing.T) {
	data := Conversations(sample(), time.UTC, time.Now())

	out, contentType, err := NewService().Export(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var decoded map[string][]conversation.Entry
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Len(t, decoded["584121234567"], 2)
	assert.Contains(t, string(out), "📝 *Cotización Rápida*")
}

func TestExportConversationsExcel(t *testing.T) {
	caracas, err := time.LoadLocation("America/Caracas")
	require.NoError(t, err)
	data := Conversations(sample(), caracas, time.Now())

	out, _, err := NewService().Export(data, FormatExcel)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Conversaciones")
	require.NoError(t, err)
	// title, description, blank, header, three messages
	require.Len(t, rows, 7)
	assert.Equal(t, conversationHeaders, rows[3])
	assert.Equal(t, []string{"584121234567", "10/03/2024 12:30:00", "Alice", "/precio 11050", "cliente", "chat"}, rows[4])
	assert.Equal(t, "bot", rows[5][4])
	assert.Equal(t, "Bob", rows[6][2])

	clientStyle, err := f.GetCellStyle("Conversaciones", "D5")
	require.NoError(t, err)
	botStyle, err := f.GetCellStyle("Conversaciones", "D6")
	require.NoError(t, err)
	assert.NotEqual(t, clientStyle, botStyle)

	panes, err := f.GetPanes("Conversaciones")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, "A5", panes.TopLeftCell)
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, err := NewService().Export(&ExportData{}, Format("pdf"))
	assert.Error(t, err)
}
