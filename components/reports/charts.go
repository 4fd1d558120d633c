package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var sharedRenderCache = NewChartCache(5 * time.Minute)

// EChartsPreview renders server-side chart HTML for chart mappings so the
// preview surface can show a live chart before any workbook is generated.
type EChartsPreview struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// EChartsPreviewOption customizes preview behavior.
type EChartsPreviewOption func(*EChartsPreview)

// WithPreviewCache injects a render cache.
func WithPreviewCache(cache RenderCache) EChartsPreviewOption {
	return func(p *EChartsPreview) {
		p.cache = cache
	}
}

// WithPreviewTheme sets a static theme (defaults to Westeros).
func WithPreviewTheme(theme string) EChartsPreviewOption {
	return func(p *EChartsPreview) {
		p.theme = theme
	}
}

// WithPreviewAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithPreviewAssetsHost(host string) EChartsPreviewOption {
	return func(p *EChartsPreview) {
		p.assetsHost = host
	}
}

// NewEChartsPreview builds the preview renderer.
func NewEChartsPreview(options ...EChartsPreviewOption) *EChartsPreview {
	p := &EChartsPreview{
		cache: sharedRenderCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// PreviewHTML converts a resolved chart mapping into go-echarts markup.
func (p *EChartsPreview) PreviewHTML(ctx context.Context, spec ChartSpec) (string, error) {
	kind := strings.ToLower(spec.Kind)
	if kind == "" {
		kind = "bar"
	}
	renderFn := func() (string, error) {
		return p.render(kind, spec)
	}
	if p.cache != nil {
		key := fmt.Sprintf("%s:%s:%s", spec.Title, kind, configHash(previewCacheConfig(spec)))
		return p.cache.GetOrRender(key, renderFn)
	}
	return renderFn()
}

func previewCacheConfig(spec ChartSpec) map[string]any {
	return map[string]any{
		"config":  spec.Config,
		"columns": spec.Result.Columns,
		"rows":    spec.Result.Rows,
	}
}

func (p *EChartsPreview) render(kind string, spec ChartSpec) (string, error) {
	labels, series := seriesFromResult(spec.Result)
	if len(series) == 0 {
		return "", fmt.Errorf("chart result has no numeric series")
	}
	switch kind {
	case "bar":
		return p.renderBarChart(spec.Title, labels, series)
	case "line":
		return p.renderLineChart(spec.Title, labels, series)
	case "pie":
		return p.renderPieChart(spec.Title, series)
	default:
		return "", fmt.Errorf("unsupported chart type: %s", kind)
	}
}

func (p *EChartsPreview) renderBarChart(title string, labels []string, series []ChartSeries) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title)...)
	bar.SetXAxis(labels)
	for _, s := range series {
		bar.AddSeries(s.Name, toBarData(s.Points))
	}
	return renderChart(bar)
}

func (p *EChartsPreview) renderLineChart(title string, labels []string, series []ChartSeries) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(p.globalChartOptions(title)...)
	line.SetXAxis(labels)
	for _, s := range series {
		line.AddSeries(s.Name, toLineData(s.Points))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (p *EChartsPreview) renderPieChart(title string, series []ChartSeries) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(title)...)
	for _, s := range series {
		pie.AddSeries(s.Name, toPieData(s.Points))
	}
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsPreview) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  p.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// ChartSeries represents a set of values plotted for a given legend entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartPoint represents an individual value (optionally labeled).
type ChartPoint struct {
	Label string
	Value float64
}

// seriesFromResult converts tabular query output into chart series: the first
// column provides labels, every remaining column is one series.
func seriesFromResult(result QueryResult) ([]string, []ChartSeries) {
	if len(result.Columns) == 0 || len(result.Rows) == 0 {
		return nil, nil
	}
	labels := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) == 0 {
			labels = append(labels, "")
			continue
		}
		labels = append(labels, stringValue(row[0], fmt.Sprintf("Item %d", len(labels)+1)))
	}
	if len(result.Columns) == 1 {
		// single column: treat values as the lone series, labels by index
		series := ChartSeries{Name: result.Columns[0]}
		for i, row := range result.Rows {
			if len(row) == 0 {
				continue
			}
			series.Points = append(series.Points, ChartPoint{Label: labels[i], Value: float64Value(row[0])})
		}
		return labels, []ChartSeries{series}
	}
	series := make([]ChartSeries, 0, len(result.Columns)-1)
	for colIdx := 1; colIdx < len(result.Columns); colIdx++ {
		s := ChartSeries{Name: result.Columns[colIdx]}
		for rowIdx, row := range result.Rows {
			if colIdx >= len(row) {
				continue
			}
			s.Points = append(s.Points, ChartPoint{Label: labels[rowIdx], Value: float64Value(row[colIdx])})
		}
		series = append(series, s)
	}
	return labels, series
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  name,
			Value: point.Value,
		}
	}
	return data
}

func stringValue(v any, fallback string) string {
	switch val := v.(type) {
	case string:
		if val != "" {
			return val
		}
	case fmt.Stringer:
		if s := val.String(); s != "" {
			return s
		}
	case float64, float32, int, int64, json.Number:
		return fmt.Sprint(val)
	}
	return fallback
}

func float64Value(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}
