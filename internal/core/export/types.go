package export

import (
	"io"
	"time"
)

// Format is the export file format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatExcel Format = "excel"
)

// Exporter writes ExportData in one format.
type Exporter interface {
	Export(data *ExportData, writer io.Writer) error
	GetContentType() string
	GetFileExtension() string
}

// ExportData is what gets exported. Table exporters use Headers and Rows;
// the JSON exporter writes Payload.
type ExportData struct {
	Title       string
	Description string
	CreatedAt   time.Time

	Headers []string
	Rows    [][]any
	// Highlight marks rows the spreadsheet shades, may be nil.
	Highlight func(row []any) bool

	Payload any

	Style ExportStyle
}

// ExportStyle is the spreadsheet look. Colors are hex without '#'.
type ExportStyle struct {
	SheetName      string
	HeaderColor    string
	HighlightColor string
	FontFamily     string
	FontSize       float64
	ColumnWidths   []float64
}

// ConversationStyle is the look of the conversations workbook: WhatsApp
// green header and bot replies shaded.
func ConversationStyle() ExportStyle {
	return ExportStyle{
		SheetName:      "Conversaciones",
		HeaderColor:    "25D366",
		HighlightColor: "DCF8C6",
		FontFamily:     "Arial",
		FontSize:       10,
		ColumnWidths:   []float64{18, 22, 24, 80, 10, 12},
	}
}
