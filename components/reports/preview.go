package reports

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ControllerOptions wires the preview controller.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
}

// Controller renders the HTML preview of a report template: the cell grid
// with its stored formatting and detected placeholders highlighted.
type Controller struct {
	service  *Service
	renderer Renderer
}

// NewController builds the controller.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{service: opts.Service, renderer: opts.Renderer}
}

// RenderPreview writes the preview HTML for a report.
func (c *Controller) RenderPreview(ctx context.Context, reportID string, out io.Writer) error {
	if c.service == nil {
		return errMissingStore
	}
	payload, err := c.PreviewPayload(ctx, reportID)
	if err != nil {
		return err
	}
	if c.renderer == nil {
		return fmt.Errorf("reports: preview renderer not configured")
	}
	_, err = c.renderer.Render("preview", payload, out)
	return err
}

// PreviewPayload builds the template-agnostic preview model, also served as
// JSON for clients that render their own grid.
func (c *Controller) PreviewPayload(ctx context.Context, reportID string) (map[string]any, error) {
	record, err := c.service.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	placeholders := make(map[string]Placeholder, len(record.Placeholders))
	for _, ph := range record.Placeholders {
		placeholders[ph.Sheet+"!"+ph.Cell] = ph
	}

	sheets := make([]map[string]any, 0, len(record.Structure.Sheets))
	for _, sheet := range record.Structure.Sheets {
		sheets = append(sheets, previewSheet(sheet, record.Mappings, placeholders))
	}

	return map[string]any{
		"report_id":    record.ID,
		"name":         record.Name,
		"description":  record.Description,
		"sheets":       sheets,
		"placeholders": record.Placeholders,
		"complete":     IsComplete(record.Placeholders, record.Mappings),
	}, nil
}

func previewSheet(sheet SheetStructure, mappings MappingSet, placeholders map[string]Placeholder) map[string]any {
	index := make(map[[2]int]CellData, len(sheet.Cells))
	for _, cell := range sheet.Cells {
		index[[2]int{cell.Row, cell.Col}] = cell
	}
	rows := make([][]map[string]any, 0, sheet.MaxRow)
	for r := 1; r <= sheet.MaxRow; r++ {
		row := make([]map[string]any, 0, sheet.MaxCol)
		for col := 1; col <= sheet.MaxCol; col++ {
			cell, ok := index[[2]int{r, col}]
			view := map[string]any{"value": "", "css": "", "placeholder": false}
			if ok {
				view["value"] = cell.Value
				view["css"] = inlineCellCSS(cell.Style)
				if ph, found := placeholders[sheet.Name+"!"+cell.Ref]; found {
					_, mapped := mappings[ph.ID]
					view["value"] = fmt.Sprintf("%s:%s", ph.Type, ph.Name)
					view["placeholder"] = true
					view["placeholder_id"] = ph.ID
					view["placeholder_type"] = string(ph.Type)
					view["mapped"] = mapped
				}
			}
			row = append(row, view)
		}
		rows = append(rows, row)
	}
	return map[string]any{
		"name":          sheet.Name,
		"rows":          rows,
		"merged_ranges": sheet.MergedRanges,
		"column_widths": sheet.ColumnWidths,
	}
}

// inlineCellCSS maps stored cell formatting onto CSS declarations for the
// HTML grid.
func inlineCellCSS(style *CellStyle) string {
	if style.IsZero() {
		return ""
	}
	var parts []string
	if style.Bold {
		parts = append(parts, "font-weight: bold")
	}
	if style.Italic {
		parts = append(parts, "font-style: italic")
	}
	if style.FontName != "" {
		parts = append(parts, "font-family: "+style.FontName)
	}
	if style.FontSize > 0 {
		parts = append(parts, fmt.Sprintf("font-size: %gpx", style.FontSize))
	}
	if style.FontColor != "" {
		parts = append(parts, "color: #"+style.FontColor)
	}
	if style.FillColor != "" {
		parts = append(parts, "background-color: #"+style.FillColor)
	}
	if style.AlignH != "" {
		parts = append(parts, "text-align: "+style.AlignH)
	}
	return strings.Join(parts, "; ")
}
