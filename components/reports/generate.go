package reports

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

const (
	// errorMarker is written into a placeholder cell when its resolution or
	// write fails; the rest of the run continues.
	errorMarker = "#ERROR"
	// chartMarker is the fallback when no chart renderer is configured.
	chartMarker = "[Chart data]"

	defaultResolveWorkers = 4
)

type resolveFunc func(ctx context.Context, mapping Mapping) (QueryResult, error)

type resolvedMapping struct {
	result QueryResult
	err    error
}

// generateWorkbook runs one generation pass: concurrent query resolution,
// then a sequential write pass in scan order. The record is a snapshot taken
// by the caller; concurrent saves never affect an in-flight run.
func generateWorkbook(ctx context.Context, record ReportRecord, resolve resolveFunc, renderer ChartRenderer, workers int) (GenerateResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(record.TemplateFile))
	if err != nil {
		return GenerateResult{}, fmt.Errorf("reports: open template for %s: %w", record.ID, err)
	}
	defer f.Close()

	resolved := resolveMappings(ctx, record.Placeholders, record.Mappings, resolve, workers)

	var failures []PlaceholderFailure
	fail := func(ph Placeholder, err error) {
		failures = append(failures, PlaceholderFailure{PlaceholderID: ph.ID, Error: err.Error()})
		_ = f.SetCellValue(ph.Sheet, ph.Cell, errorMarker)
	}

	for _, ph := range record.Placeholders {
		mapping, mapped := record.Mappings[ph.ID]
		if !mapped {
			// unmapped cells keep the literal token text
			continue
		}
		res, ok := resolved[ph.ID]
		if !ok {
			continue
		}
		if res.err != nil {
			fail(ph, res.err)
			continue
		}
		if err := writePlaceholder(ctx, f, ph, mapping, res.result, renderer); err != nil {
			fail(ph, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return GenerateResult{}, fmt.Errorf("reports: serialize workbook for %s: %w", record.ID, err)
	}
	return GenerateResult{
		Filename: DownloadFilename(record.Name),
		Content:  buf.Bytes(),
		Failures: failures,
		Complete: IsComplete(record.Placeholders, record.Mappings),
	}, nil
}

// resolveMappings fans out query execution across a bounded worker set and
// gathers results keyed by placeholder id.
func resolveMappings(ctx context.Context, placeholders []Placeholder, mappings MappingSet, resolve resolveFunc, workers int) map[string]resolvedMapping {
	if workers <= 0 {
		workers = defaultResolveWorkers
	}
	resolved := make(map[string]resolvedMapping, len(mappings))
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for _, ph := range placeholders {
		mapping, ok := mappings[ph.ID]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(id string, mapping Mapping) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			result, err := resolve(ctx, mapping)
			mu.Lock()
			resolved[id] = resolvedMapping{result: result, err: err}
			mu.Unlock()
		}(ph.ID, mapping)
	}
	wg.Wait()
	return resolved
}

func writePlaceholder(ctx context.Context, f *excelize.File, ph Placeholder, mapping Mapping, result QueryResult, renderer ChartRenderer) error {
	switch ph.Type {
	case PlaceholderValue:
		return writeValue(f, ph, result)
	case PlaceholderTable:
		return writeTable(f, ph, mapping.Config, result)
	case PlaceholderChart:
		return writeChart(ctx, f, ph, mapping, result, renderer)
	default:
		return fmt.Errorf("unsupported placeholder type %q", ph.Type)
	}
}

// writeValue fills the cell with the first column of the first row, or an
// empty string for an empty result set.
func writeValue(f *excelize.File, ph Placeholder, result QueryResult) error {
	var value any = ""
	if len(result.Rows) > 0 && len(result.Rows[0]) > 0 {
		value = result.Rows[0][0]
	}
	return f.SetCellValue(ph.Sheet, ph.Cell, value)
}

// writeTable fills rows downward and columns rightward from the anchor cell,
// reusing the anchor cell's style for every filled cell. An optional bold
// header row comes first when configured. A columns config entry selects,
// reorders, relabels, and number-formats source columns; without it every
// result column is written in natural order.
func writeTable(f *excelize.File, ph Placeholder, cfg map[string]any, result QueryResult) error {
	col, row, err := excelize.CellNameToCoordinates(ph.Cell)
	if err != nil {
		return fmt.Errorf("anchor %s: %w", ph.Cell, err)
	}
	anchorStyle, _ := f.GetCellStyle(ph.Sheet, ph.Cell)

	selection := configColumns(cfg, "columns")
	sourceIdx := make(map[string]int, len(result.Columns))
	for i, name := range result.Columns {
		sourceIdx[name] = i
	}

	if configBool(cfg, "includeHeader") {
		headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		labels := tableHeaderLabels(selection, cfg, result)
		for i, label := range labels {
			cell, err := excelize.CoordinatesToCellName(col+i, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(ph.Sheet, cell, label); err != nil {
				return err
			}
			if err := f.SetCellStyle(ph.Sheet, cell, cell, headerStyle); err != nil {
				return err
			}
		}
		row++
	} else {
		// the anchor row is overwritten by data, clearing the token
		if err := f.SetCellValue(ph.Sheet, ph.Cell, ""); err != nil {
			return err
		}
	}

	columnStyles, err := tableColumnStyles(f, anchorStyle, selection)
	if err != nil {
		return err
	}

	rows := result.Rows
	if max := configInt(cfg, "maxRows"); max > 0 && len(rows) > max {
		rows = rows[:max]
	}
	for r, dataRow := range rows {
		values := dataRow
		if len(selection) > 0 {
			values = selectRowValues(selection, sourceIdx, dataRow)
		}
		for c, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+c, row+r)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(ph.Sheet, cell, value); err != nil {
				return err
			}
			style := anchorStyle
			if len(columnStyles) > 0 {
				style = columnStyles[c]
			}
			if style != 0 {
				if err := f.SetCellStyle(ph.Sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// tableColumn is one entry of a table mapping's columns config: a source
// column picked from the query result, with an optional header label and an
// optional number format for the filled cells.
type tableColumn struct {
	Source string
	Label  string
	Format string
}

func (tc tableColumn) headerLabel() string {
	if tc.Label != "" {
		return tc.Label
	}
	return tc.Source
}

// tableHeaderLabels resolves the header row: column selection labels when a
// selection is configured, otherwise headerLabels or the result columns.
func tableHeaderLabels(selection []tableColumn, cfg map[string]any, result QueryResult) []string {
	if len(selection) > 0 {
		labels := make([]string, len(selection))
		for i, column := range selection {
			labels[i] = column.headerLabel()
		}
		return labels
	}
	if labels := configStrings(cfg, "headerLabels"); len(labels) > 0 {
		return labels
	}
	return result.Columns
}

// selectRowValues projects a data row onto the selected source columns;
// columns missing from the result yield empty cells.
func selectRowValues(selection []tableColumn, sourceIdx map[string]int, dataRow []any) []any {
	values := make([]any, len(selection))
	for i, column := range selection {
		values[i] = ""
		if idx, ok := sourceIdx[column.Source]; ok && idx < len(dataRow) {
			values[i] = dataRow[idx]
		}
	}
	return values
}

// tableColumnStyles resolves one style per selected column, layering the
// configured number format over the anchor cell's style.
func tableColumnStyles(f *excelize.File, anchorStyle int, selection []tableColumn) ([]int, error) {
	if len(selection) == 0 {
		return nil, nil
	}
	styles := make([]int, len(selection))
	for i, column := range selection {
		styles[i] = anchorStyle
		if column.Format == "" {
			continue
		}
		style := &excelize.Style{}
		if anchorStyle != 0 {
			if base, err := f.GetStyle(anchorStyle); err == nil && base != nil {
				style = base
			}
		}
		format := column.Format
		style.CustomNumFmt = &format
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, fmt.Errorf("column format %q: %w", column.Format, err)
		}
		styles[i] = id
	}
	return styles, nil
}

// writeChart anchors a rendered image at the cell, or the literal marker when
// no renderer is configured.
func writeChart(ctx context.Context, f *excelize.File, ph Placeholder, mapping Mapping, result QueryResult, renderer ChartRenderer) error {
	if renderer == nil {
		return f.SetCellValue(ph.Sheet, ph.Cell, chartMarker)
	}
	artifact, err := renderer.RenderChart(ctx, ChartSpec{
		Title:  ph.Name,
		Kind:   configString(mapping.Config, "chartType"),
		Result: result,
		Config: mapping.Config,
	})
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := f.SetCellValue(ph.Sheet, ph.Cell, ""); err != nil {
		return err
	}
	if err := f.AddPictureFromBytes(ph.Sheet, ph.Cell, &excelize.Picture{
		Extension: ".png",
		File:      artifact,
	}); err != nil {
		return fmt.Errorf("anchor chart at %s: %w", ph.Cell, err)
	}
	return nil
}

// DownloadFilename derives the deterministic download name for a report:
// every character outside [A-Za-z0-9._-] becomes an underscore.
func DownloadFilename(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "report"
	}
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	return sanitized + ".xlsx"
}

func configBool(cfg map[string]any, key string) bool {
	if cfg == nil {
		return false
	}
	v, ok := cfg[key].(bool)
	return ok && v
}

func configString(cfg map[string]any, key string) string {
	if cfg == nil {
		return ""
	}
	v, _ := cfg[key].(string)
	return v
}

func configInt(cfg map[string]any, key string) int {
	if cfg == nil {
		return 0
	}
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// configColumns reads a columns selection: entries are either plain source
// column names or objects carrying column/label/format.
func configColumns(cfg map[string]any, key string) []tableColumn {
	if cfg == nil {
		return nil
	}
	switch raw := cfg[key].(type) {
	case []string:
		out := make([]tableColumn, len(raw))
		for i, name := range raw {
			out[i] = tableColumn{Source: name}
		}
		return out
	case []any:
		out := make([]tableColumn, 0, len(raw))
		for _, item := range raw {
			switch v := item.(type) {
			case string:
				out = append(out, tableColumn{Source: v})
			case map[string]any:
				out = append(out, tableColumn{
					Source: configString(v, "column"),
					Label:  configString(v, "label"),
					Format: configString(v, "format"),
				})
			}
		}
		return out
	default:
		return nil
	}
}

func configStrings(cfg map[string]any, key string) []string {
	if cfg == nil {
		return nil
	}
	switch raw := cfg[key].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
