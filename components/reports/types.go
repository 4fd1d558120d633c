package reports

import (
	"context"
	"time"
)

// ReportStore encapsulates persistence for report records. Implementations
// ensure thread safety; the engine never assumes a particular backend.
type ReportStore interface {
	CreateReport(ctx context.Context, record ReportRecord) error
	GetReport(ctx context.Context, reportID string) (ReportRecord, error)
	GetReportByShareToken(ctx context.Context, token string) (ReportRecord, error)
	UpdateReport(ctx context.Context, record ReportRecord) error
	DeleteReport(ctx context.Context, reportID string) error
	ListReports(ctx context.Context, input ListReportsInput) ([]ReportRecord, error)
}

// QueryExecutor resolves a data-source descriptor into tabular results. The
// engine never issues HTTP calls itself; collaborators are injected.
type QueryExecutor interface {
	Execute(ctx context.Context, descriptor QueryDescriptor) (QueryResult, error)
}

// ChartRenderer turns a resolved chart mapping into an image artifact that can
// be anchored inside the workbook.
type ChartRenderer interface {
	RenderChart(ctx context.Context, spec ChartSpec) ([]byte, error)
}

// ReportHook notifies transports (REST/WebSocket) about report changes.
type ReportHook interface {
	ReportUpdated(ctx context.Context, event ReportEvent) error
}

// PlaceholderType enumerates the placeholder kinds recognized in templates.
type PlaceholderType string

const (
	// PlaceholderValue fills a single cell with a scalar.
	PlaceholderValue PlaceholderType = "value"
	// PlaceholderTable fills a region downward/rightward from the anchor cell.
	PlaceholderTable PlaceholderType = "table"
	// PlaceholderChart anchors a rendered chart artifact at the cell.
	PlaceholderChart PlaceholderType = "chart"
)

// Placeholder is a detected {{type:name}} token. The ID is derived from the
// placeholder location, so rescanning a template yields stable identifiers.
type Placeholder struct {
	ID    string          `json:"id"`
	Type  PlaceholderType `json:"type"`
	Name  string          `json:"name"`
	Sheet string          `json:"sheet"`
	Cell  string          `json:"cell"`
}

// QueryDescriptor identifies the data source backing a mapping.
type QueryDescriptor struct {
	SourceKind string         `json:"sourceKind"`
	SourceID   string         `json:"sourceId"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Query      map[string]any `json:"query,omitempty"`
}

// QueryResult is the tabular payload returned by a query collaborator.
type QueryResult struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Mapping binds a placeholder to a data source plus per-type options.
type Mapping struct {
	PlaceholderID string          `json:"placeholderId"`
	Source        QueryDescriptor `json:"source"`
	Config        map[string]any  `json:"config,omitempty"`
}

// MappingSet holds mappings keyed by placeholder id. A missing key means the
// placeholder is unmapped.
type MappingSet map[string]Mapping

// ReportRecord is the persisted state of one report template.
type ReportRecord struct {
	ID           string
	Name         string
	Description  string
	Filename     string
	TemplateFile []byte
	Structure    TemplateStructure
	Placeholders []Placeholder
	Mappings     MappingSet
	ShareToken   string
	IsPublic     bool
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListReportsInput filters report listings.
type ListReportsInput struct {
	IncludeArchived bool
}

// ChartSpec carries everything a renderer needs to produce an artifact.
type ChartSpec struct {
	Title  string
	Kind   string
	Result QueryResult
	Config map[string]any
}

// ReportEvent describes changes that transports might care about.
type ReportEvent struct {
	ReportID string         `json:"reportId"`
	Reason   string         `json:"reason"`
	Detail   map[string]any `json:"detail,omitempty"`
}

// PlaceholderFailure records a per-placeholder generation error.
type PlaceholderFailure struct {
	PlaceholderID string `json:"placeholderId"`
	Error         string `json:"error"`
}

// GenerateResult is the output of a generation run. Content is always present
// even when some placeholders failed.
type GenerateResult struct {
	Filename string
	Content  []byte
	Failures []PlaceholderFailure
	Complete bool
}
