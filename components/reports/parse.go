package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// pixels per width unit, matching how spreadsheet UIs report column widths
const columnWidthPixelRatio = 7.0

// ParseTemplate reads an .xlsx workbook into a TemplateStructure. The input
// bytes are never modified; parsing is read-only.
func ParseTemplate(data []byte) (TemplateStructure, error) {
	if len(data) == 0 {
		return TemplateStructure{}, errEmptyTemplate
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return TemplateStructure{}, fmt.Errorf("reports: open template: %w", err)
	}
	defer f.Close()

	var structure TemplateStructure
	for _, name := range f.GetSheetList() {
		sheet, err := parseSheet(f, name)
		if err != nil {
			return TemplateStructure{}, fmt.Errorf("reports: parse sheet %s: %w", name, err)
		}
		structure.Sheets = append(structure.Sheets, sheet)
	}
	return structure, nil
}

func parseSheet(f *excelize.File, name string) (SheetStructure, error) {
	sheet := SheetStructure{Name: name}

	rows, err := f.GetRows(name)
	if err != nil {
		return SheetStructure{}, fmt.Errorf("read rows: %w", err)
	}
	for r, row := range rows {
		if r+1 > sheet.MaxRow {
			sheet.MaxRow = r + 1
		}
		for c, value := range row {
			if c+1 > sheet.MaxCol {
				sheet.MaxCol = c + 1
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return SheetStructure{}, fmt.Errorf("cell name %d,%d: %w", c+1, r+1, err)
			}
			style := readCellStyle(f, name, ref)
			if value == "" && style == nil {
				continue
			}
			sheet.Cells = append(sheet.Cells, CellData{
				Ref:   ref,
				Row:   r + 1,
				Col:   c + 1,
				Value: value,
				Style: style,
			})
		}
	}

	merges, err := f.GetMergeCells(name)
	if err != nil {
		return SheetStructure{}, fmt.Errorf("read merges: %w", err)
	}
	for _, m := range merges {
		sheet.MergedRanges = append(sheet.MergedRanges, m.GetStartAxis()+":"+m.GetEndAxis())
	}

	if sheet.MaxCol > 0 {
		sheet.ColumnWidths = make(map[string]float64, sheet.MaxCol)
		for col := 1; col <= sheet.MaxCol; col++ {
			letter, err := excelize.ColumnNumberToName(col)
			if err != nil {
				continue
			}
			width, err := f.GetColWidth(name, letter)
			if err != nil {
				continue
			}
			sheet.ColumnWidths[letter] = width * columnWidthPixelRatio
		}
	}

	return sheet, nil
}

// readCellStyle extracts the style attributes the engine preserves. Returns
// nil when the cell carries no formatting worth keeping.
func readCellStyle(f *excelize.File, sheet, ref string) *CellStyle {
	idx, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return nil
	}
	raw, err := f.GetStyle(idx)
	if err != nil || raw == nil {
		return nil
	}
	style := &CellStyle{}
	if raw.Font != nil {
		style.FontName = raw.Font.Family
		style.FontSize = raw.Font.Size
		style.Bold = raw.Font.Bold
		style.Italic = raw.Font.Italic
		style.FontColor = normalizeHexColor(raw.Font.Color)
	}
	if raw.Fill.Type == "pattern" && len(raw.Fill.Color) > 0 {
		style.FillColor = normalizeHexColor(raw.Fill.Color[0])
	}
	for _, border := range raw.Border {
		if border.Style == 0 {
			continue
		}
		switch border.Type {
		case "top":
			style.BorderTop = true
		case "bottom":
			style.BorderBottom = true
		case "left":
			style.BorderLeft = true
		case "right":
			style.BorderRight = true
		}
	}
	if raw.Alignment != nil {
		style.AlignH = raw.Alignment.Horizontal
		style.AlignV = raw.Alignment.Vertical
	}
	if raw.CustomNumFmt != nil {
		style.NumberFormat = *raw.CustomNumFmt
	}
	if style.IsZero() {
		return nil
	}
	return style
}

// normalizeHexColor strips ARGB alpha prefixes and uppercases the value so
// colors round-trip as RRGGBB hex.
func normalizeHexColor(color string) string {
	if color == "" {
		return ""
	}
	if len(color) == 8 {
		color = color[2:]
	}
	normalized := make([]byte, 0, len(color))
	for i := 0; i < len(color); i++ {
		ch := color[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		normalized = append(normalized, ch)
	}
	return string(normalized)
}

// excelizeStyle converts a stored CellStyle back into an excelize style
// definition for cells written during generation.
func excelizeStyle(style *CellStyle) *excelize.Style {
	if style.IsZero() {
		return nil
	}
	out := &excelize.Style{}
	if style.FontName != "" || style.FontSize > 0 || style.Bold || style.Italic || style.FontColor != "" {
		out.Font = &excelize.Font{
			Family: style.FontName,
			Size:   style.FontSize,
			Bold:   style.Bold,
			Italic: style.Italic,
			Color:  style.FontColor,
		}
	}
	if style.FillColor != "" {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{style.FillColor}}
	}
	var borders []excelize.Border
	for _, edge := range []struct {
		kind string
		set  bool
	}{
		{"top", style.BorderTop},
		{"bottom", style.BorderBottom},
		{"left", style.BorderLeft},
		{"right", style.BorderRight},
	} {
		if edge.set {
			borders = append(borders, excelize.Border{Type: edge.kind, Color: "000000", Style: 1})
		}
	}
	out.Border = borders
	if style.AlignH != "" || style.AlignV != "" {
		out.Alignment = &excelize.Alignment{Horizontal: style.AlignH, Vertical: style.AlignV}
	}
	if style.NumberFormat != "" {
		custom := style.NumberFormat
		out.CustomNumFmt = &custom
	}
	return out
}
