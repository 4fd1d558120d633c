package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// ChartPreviewInput identifies a chart placeholder for preview rendering.
type ChartPreviewInput struct {
	ReportID      string `json:"reportId"`
	PlaceholderID string `json:"placeholderId"`
}

type chartPreviewService interface {
	ChartPreviewHTML(ctx context.Context, reportID, placeholderID string) (string, error)
}

// ChartPreviewQuery resolves a chart mapping and renders preview markup.
type ChartPreviewQuery struct {
	service chartPreviewService
}

// NewChartPreviewQuery builds the query.
func NewChartPreviewQuery(service chartPreviewService) *ChartPreviewQuery {
	return &ChartPreviewQuery{service: service}
}

var _ gocommand.Querier[ChartPreviewInput, string] = (*ChartPreviewQuery)(nil)

// Query renders the chart preview HTML.
func (q *ChartPreviewQuery) Query(ctx context.Context, input ChartPreviewInput) (string, error) {
	return q.service.ChartPreviewHTML(ctx, input.ReportID, input.PlaceholderID)
}
