package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONExporter writes ExportData.Payload as indented JSON.
type JSONExporter struct{}

func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

func (e *JSONExporter) Export(data *ExportData, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data.Payload); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}
	return nil
}

func (e *JSONExporter) GetContentType() string {
	return "application/json"
}

func (e *JSONExporter) GetFileExtension() string {
	return ".json"
}
