package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter streams ExportData into a single-sheet workbook.
type ExcelExporter struct{}

func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

type sheetStyles struct {
	title, header, body, highlight int
}

func (e *ExcelExporter) styles(f *excelize.File, s ExportStyle) (sheetStyles, error) {
	var out sheetStyles
	var err error

	font := func(bold bool, size float64, color string) *excelize.Font {
		return &excelize.Font{Bold: bold, Size: size, Family: s.FontFamily, Color: color}
	}
	fill := func(color string) excelize.Fill {
		if color == "" {
			return excelize.Fill{}
		}
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}
	wrap := &excelize.Alignment{Vertical: "top", WrapText: true}

	if out.title, err = f.NewStyle(&excelize.Style{Font: font(true, 14, "")}); err != nil {
		return out, err
	}
	if out.header, err = f.NewStyle(&excelize.Style{
		Font:      font(true, s.FontSize, "FFFFFF"),
		Fill:      fill(s.HeaderColor),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return out, err
	}
	if out.body, err = f.NewStyle(&excelize.Style{Font: font(false, s.FontSize, ""), Alignment: wrap}); err != nil {
		return out, err
	}
	out.highlight, err = f.NewStyle(&excelize.Style{
		Font:      font(false, s.FontSize, ""),
		Fill:      fill(s.HighlightColor),
		Alignment: wrap,
	})
	return out, err
}

func styled(values []any, style int) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = excelize.Cell{StyleID: style, Value: v}
	}
	return cells
}

// Export writes an optional title and description, the header row with a
// frozen pane and auto filter, and one row per data row. Rows for which
// data.Highlight returns true get the highlight fill.
func (e *ExcelExporter) Export(data *ExportData, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := data.Style.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	st, err := e.styles(f, data.Style)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}
	for i, width := range data.Style.ColumnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	headerRow := 1
	if data.Title != "" {
		headerRow = 3
		if data.Description != "" {
			headerRow = 4
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if data.Title != "" {
		if err := sw.SetRow("A1", styled([]any{data.Title}, st.title)); err != nil {
			return fmt.Errorf("failed to write title: %w", err)
		}
		if data.Description != "" {
			if err := sw.SetRow("A2", []any{data.Description}); err != nil {
				return fmt.Errorf("failed to write description: %w", err)
			}
		}
	}

	headers := make([]any, len(data.Headers))
	for i, h := range data.Headers {
		headers[i] = h
	}
	if err := sw.SetRow(fmt.Sprintf("A%d", headerRow), styled(headers, st.header)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range data.Rows {
		style := st.body
		if data.Highlight != nil && data.Highlight(row) {
			style = st.highlight
		}
		if err := sw.SetRow(fmt.Sprintf("A%d", headerRow+1+i), styled(row, style)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if len(data.Headers) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
		ref := fmt.Sprintf("A%d:%s%d", headerRow, lastCol, headerRow+len(data.Rows))
		if err := f.AutoFilter(sheet, ref, nil); err != nil {
			return fmt.Errorf("failed to add auto filter: %w", err)
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func (e *ExcelExporter) GetContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *ExcelExporter) GetFileExtension() string {
	return ".xlsx"
}
