package reports

import (
	"regexp"
	"strings"
)

// placeholderPattern matches whole-cell tokens only. Cells mixing a token with
// other text, or holding multiple tokens, stay plain text.
var placeholderPattern = regexp.MustCompile(`^\{\{(table|value|chart):(\w+)\}\}$`)

// ScanPlaceholders walks the structure in sheet order, row-major within each
// sheet, and returns detected placeholders in that exact order.
func ScanPlaceholders(structure TemplateStructure) []Placeholder {
	var found []Placeholder
	for _, sheet := range structure.Sheets {
		for _, cell := range sheet.Cells {
			ph, ok := parsePlaceholder(sheet.Name, cell)
			if !ok {
				continue
			}
			found = append(found, ph)
		}
	}
	return found
}

func parsePlaceholder(sheet string, cell CellData) (Placeholder, bool) {
	match := placeholderPattern.FindStringSubmatch(strings.TrimSpace(cell.Value))
	if match == nil {
		return Placeholder{}, false
	}
	return Placeholder{
		ID:    PlaceholderID(sheet, cell.Ref),
		Type:  PlaceholderType(match[1]),
		Name:  match[2],
		Sheet: sheet,
		Cell:  cell.Ref,
	}, true
}

// PlaceholderID derives the stable identifier for a placeholder location.
// "Sheet1" + "B4" yields "sheet1-b4": lowercased, with every run of
// non-alphanumeric characters collapsed to a single dash.
func PlaceholderID(sheet, cell string) string {
	var b strings.Builder
	b.Grow(len(sheet) + len(cell) + 1)
	lastDash := false
	for _, r := range sheet + "!" + cell {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
