package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// ReportInput identifies a report.
type ReportInput struct {
	ReportID string `json:"reportId"`
}

type reportService interface {
	GetReport(ctx context.Context, reportID string) (reports.ReportRecord, error)
	ListReports(ctx context.Context, input reports.ListReportsInput) ([]reports.ReportRecord, error)
	MappingStatusFor(ctx context.Context, reportID string) (reports.MappingStatus, error)
}

// GetReportQuery fetches a single report record.
type GetReportQuery struct {
	service reportService
}

// NewGetReportQuery builds the query.
func NewGetReportQuery(service reportService) *GetReportQuery {
	return &GetReportQuery{service: service}
}

var _ gocommand.Querier[ReportInput, reports.ReportRecord] = (*GetReportQuery)(nil)

// Query resolves the report.
func (q *GetReportQuery) Query(ctx context.Context, input ReportInput) (reports.ReportRecord, error) {
	return q.service.GetReport(ctx, input.ReportID)
}

// ListReportsQuery lists reports, newest first.
type ListReportsQuery struct {
	service reportService
}

// NewListReportsQuery builds the query.
func NewListReportsQuery(service reportService) *ListReportsQuery {
	return &ListReportsQuery{service: service}
}

var _ gocommand.Querier[reports.ListReportsInput, []reports.ReportRecord] = (*ListReportsQuery)(nil)

// Query lists report records.
func (q *ListReportsQuery) Query(ctx context.Context, input reports.ListReportsInput) ([]reports.ReportRecord, error) {
	return q.service.ListReports(ctx, input)
}

// MappingStatusQuery reports mapping coverage for a report.
type MappingStatusQuery struct {
	service reportService
}

// NewMappingStatusQuery builds the query.
func NewMappingStatusQuery(service reportService) *MappingStatusQuery {
	return &MappingStatusQuery{service: service}
}

var _ gocommand.Querier[ReportInput, reports.MappingStatus] = (*MappingStatusQuery)(nil)

// Query computes coverage for the current placeholder inventory.
func (q *MappingStatusQuery) Query(ctx context.Context, input ReportInput) (reports.MappingStatus, error) {
	return q.service.MappingStatusFor(ctx, input.ReportID)
}
