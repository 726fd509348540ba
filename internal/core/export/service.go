// Package export writes conversation logs out as JSON or Excel files.
package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Service picks an exporter per format.
type Service struct {
	exporters map[Format]Exporter
}

func NewService() *Service {
	return &Service{
		exporters: map[Format]Exporter{
			FormatJSON:  NewJSONExporter(),
			FormatExcel: NewExcelExporter(),
		},
	}
}

// FormatFor infers the format from a file name: .xlsx is Excel, anything
// else JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatExcel
	}
	return FormatJSON
}

func (s *Service) exporter(format Format) (Exporter, error) {
	e, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	return e, nil
}

// Export renders data and returns the bytes plus their content type.
func (s *Service) Export(data *ExportData, format Format) ([]byte, string, error) {
	exporter, err := s.exporter(format)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := exporter.Export(data, &buf); err != nil {
		return nil, "", fmt.Errorf("export failed: %w", err)
	}
	return buf.Bytes(), exporter.GetContentType(), nil
}

func (s *Service) ExportToWriter(data *ExportData, format Format, writer io.Writer) error {
	exporter, err := s.exporter(format)
	if err != nil {
		return err
	}
	return exporter.Export(data, writer)
}

func (s *Service) GetFileExtension(format Format) string {
	if e, ok := s.exporters[format]; ok {
		return e.GetFileExtension()
	}
	return ".bin"
}
