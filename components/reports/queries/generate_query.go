package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// GenerateInput requests a generation run, by id or share token.
type GenerateInput struct {
	ReportID   string `json:"reportId,omitempty"`
	ShareToken string `json:"shareToken,omitempty"`
}

type generateService interface {
	GenerateReport(ctx context.Context, reportID string) (reports.GenerateResult, error)
	GenerateSharedReport(ctx context.Context, token string) (reports.GenerateResult, error)
}

// GenerateReportQuery runs generation and returns the populated workbook.
type GenerateReportQuery struct {
	service generateService
}

// NewGenerateReportQuery builds the query.
func NewGenerateReportQuery(service generateService) *GenerateReportQuery {
	return &GenerateReportQuery{service: service}
}

var _ gocommand.Querier[GenerateInput, reports.GenerateResult] = (*GenerateReportQuery)(nil)

// Query generates the workbook for the identified report.
func (q *GenerateReportQuery) Query(ctx context.Context, input GenerateInput) (reports.GenerateResult, error) {
	if input.ShareToken != "" {
		return q.service.GenerateSharedReport(ctx, input.ShareToken)
	}
	return q.service.GenerateReport(ctx, input.ReportID)
}
