package reports

// TemplateStructure is the parsed model of an uploaded workbook. It captures
// everything the preview and generation passes need without reopening the file.
type TemplateStructure struct {
	Sheets []SheetStructure `json:"sheets"`
}

// SheetStructure models a single worksheet. Cells are stored in row-major
// order, which is also the placeholder scan order.
type SheetStructure struct {
	Name         string             `json:"name"`
	Cells        []CellData         `json:"cells"`
	MergedRanges []string           `json:"mergedRanges,omitempty"`
	ColumnWidths map[string]float64 `json:"columnWidths,omitempty"`
	MaxRow       int                `json:"maxRow"`
	MaxCol       int                `json:"maxCol"`
}

// CellData is one populated cell: reference, coordinates, value, and style.
type CellData struct {
	Ref   string     `json:"ref"`
	Row   int        `json:"row"`
	Col   int        `json:"col"`
	Value string     `json:"value"`
	Style *CellStyle `json:"style,omitempty"`
}

// CellStyle captures the formatting attributes preserved through generation.
type CellStyle struct {
	FontName     string  `json:"fontName,omitempty"`
	FontSize     float64 `json:"fontSize,omitempty"`
	Bold         bool    `json:"bold,omitempty"`
	Italic       bool    `json:"italic,omitempty"`
	FontColor    string  `json:"fontColor,omitempty"`
	FillColor    string  `json:"fillColor,omitempty"`
	BorderTop    bool    `json:"borderTop,omitempty"`
	BorderBottom bool    `json:"borderBottom,omitempty"`
	BorderLeft   bool    `json:"borderLeft,omitempty"`
	BorderRight  bool    `json:"borderRight,omitempty"`
	AlignH       string  `json:"alignH,omitempty"`
	AlignV       string  `json:"alignV,omitempty"`
	NumberFormat string  `json:"numberFormat,omitempty"`
}

// Sheet returns the sheet with the given name.
func (t TemplateStructure) Sheet(name string) (SheetStructure, bool) {
	for _, sheet := range t.Sheets {
		if sheet.Name == name {
			return sheet, true
		}
	}
	return SheetStructure{}, false
}

// Cell returns the cell at ref within the sheet.
func (s SheetStructure) Cell(ref string) (CellData, bool) {
	for _, cell := range s.Cells {
		if cell.Ref == ref {
			return cell, true
		}
	}
	return CellData{}, false
}

// IsZero reports whether the style carries no formatting at all.
func (cs *CellStyle) IsZero() bool {
	if cs == nil {
		return true
	}
	return *cs == CellStyle{}
}
