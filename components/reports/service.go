package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	errMissingStore    = errors.New("reports: report store not configured")
	errMissingExecutor = errors.New("reports: query executor not configured")
	errEmptyTemplate   = errors.New("reports: template file is empty")
	errReportName      = errors.New("reports: report name is required")
	errReportID        = errors.New("reports: report id is required")
)

var (
	// ErrReportNotFound is returned by stores when no record matches.
	ErrReportNotFound = errors.New("reports: report not found")
	// ErrReportExists is returned by stores when creating a duplicate id.
	ErrReportExists = errors.New("reports: report already exists")
	// ErrShareDisabled is returned when fetching a report whose sharing is off.
	ErrShareDisabled = errors.New("reports: report is not shared")
)

// Options configures the report Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	Store           ReportStore
	Executor        QueryExecutor
	Sources         *Registry
	ConfigValidator ConfigValidator
	ChartRenderer   ChartRenderer
	ChartPreview    *EChartsPreview
	ReportHook      ReportHook
	Telemetry       Telemetry
	ResolveWorkers  int
	Clock           func() time.Time
}

// Service orchestrates report templates, mappings, and generation.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Sources == nil {
		opts.Sources = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.ChartPreview == nil {
		opts.ChartPreview = NewEChartsPreview()
	}
	if opts.ReportHook == nil {
		opts.ReportHook = noopReportHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.ResolveWorkers <= 0 {
		opts.ResolveWorkers = defaultResolveWorkers
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{opts: opts}
}

// UploadTemplateRequest carries a new or replacement template file. When
// ReportID is set the upload replaces the template of an existing report.
type UploadTemplateRequest struct {
	ReportID    string
	Name        string
	Description string
	Filename    string
	Content     []byte
}

// UploadTemplate parses the workbook, detects placeholders, and persists the
// report record. Re-uploading never prunes existing mappings.
func (s *Service) UploadTemplate(ctx context.Context, req UploadTemplateRequest) (ReportRecord, error) {
	store, err := s.store()
	if err != nil {
		return ReportRecord{}, err
	}
	structure, err := ParseTemplate(req.Content)
	if err != nil {
		return ReportRecord{}, err
	}
	placeholders := ScanPlaceholders(structure)
	now := s.opts.Clock()

	var record ReportRecord
	if req.ReportID != "" {
		record, err = store.GetReport(ctx, req.ReportID)
		if err != nil {
			return ReportRecord{}, err
		}
		record.TemplateFile = req.Content
		record.Structure = structure
		record.Placeholders = placeholders
		record.Filename = req.Filename
		if req.Name != "" {
			record.Name = req.Name
		}
		if req.Description != "" {
			record.Description = req.Description
		}
		record.UpdatedAt = now
		if err := store.UpdateReport(ctx, record); err != nil {
			return ReportRecord{}, err
		}
	} else {
		if req.Name == "" {
			return ReportRecord{}, errReportName
		}
		record = ReportRecord{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Description:  req.Description,
			Filename:     req.Filename,
			TemplateFile: req.Content,
			Structure:    structure,
			Placeholders: placeholders,
			Mappings:     MappingSet{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.CreateReport(ctx, record); err != nil {
			return ReportRecord{}, err
		}
	}

	s.notify(ctx, ReportEvent{ReportID: record.ID, Reason: "upload", Detail: map[string]any{
		"placeholders": len(placeholders),
	}})
	s.recordTelemetry(ctx, "reports.template.upload", map[string]any{
		"report_id":    record.ID,
		"placeholders": len(placeholders),
	})
	return record, nil
}

// GetReport fetches a report record.
func (s *Service) GetReport(ctx context.Context, reportID string) (ReportRecord, error) {
	store, err := s.store()
	if err != nil {
		return ReportRecord{}, err
	}
	if reportID == "" {
		return ReportRecord{}, errReportID
	}
	return store.GetReport(ctx, reportID)
}

// ListReports lists report records, newest first.
func (s *Service) ListReports(ctx context.Context, input ListReportsInput) ([]ReportRecord, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.ListReports(ctx, input)
}

// RenameReport updates the report name used for the download filename.
func (s *Service) RenameReport(ctx context.Context, reportID, name string) (ReportRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ReportRecord{}, errReportName
	}
	return s.updateRecord(ctx, reportID, "rename", func(record *ReportRecord) error {
		record.Name = name
		return nil
	})
}

// ArchiveReport toggles the archived flag; archived reports are hidden from
// default listings but keep their mappings and share state.
func (s *Service) ArchiveReport(ctx context.Context, reportID string, archived bool) (ReportRecord, error) {
	return s.updateRecord(ctx, reportID, "archive", func(record *ReportRecord) error {
		record.Archived = archived
		return nil
	})
}

// DeleteReport removes a report record entirely.
func (s *Service) DeleteReport(ctx context.Context, reportID string) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	if reportID == "" {
		return errReportID
	}
	if err := store.DeleteReport(ctx, reportID); err != nil {
		return err
	}
	s.notify(ctx, ReportEvent{ReportID: reportID, Reason: "delete"})
	s.recordTelemetry(ctx, "reports.report.delete", map[string]any{"report_id": reportID})
	return nil
}

// DuplicateReport deep-copies a report under a new id. Mappings are copied;
// share state is not.
func (s *Service) DuplicateReport(ctx context.Context, reportID string) (ReportRecord, error) {
	store, err := s.store()
	if err != nil {
		return ReportRecord{}, err
	}
	source, err := store.GetReport(ctx, reportID)
	if err != nil {
		return ReportRecord{}, err
	}
	now := s.opts.Clock()
	copyRecord := source
	copyRecord.ID = uuid.NewString()
	copyRecord.Name = source.Name + " (Copy)"
	copyRecord.Mappings = source.Mappings.Clone()
	copyRecord.ShareToken = ""
	copyRecord.IsPublic = false
	copyRecord.Archived = false
	copyRecord.CreatedAt = now
	copyRecord.UpdatedAt = now
	if err := store.CreateReport(ctx, copyRecord); err != nil {
		return ReportRecord{}, err
	}
	s.notify(ctx, ReportEvent{ReportID: copyRecord.ID, Reason: "duplicate", Detail: map[string]any{
		"source_id": source.ID,
	}})
	s.recordTelemetry(ctx, "reports.report.duplicate", map[string]any{
		"report_id": copyRecord.ID,
		"source_id": source.ID,
	})
	return copyRecord, nil
}

// SaveMappings validates and replaces the report's mapping set wholesale.
func (s *Service) SaveMappings(ctx context.Context, reportID string, mappings MappingSet) (ReportRecord, error) {
	for id, mapping := range mappings {
		if mapping.PlaceholderID == "" {
			mapping.PlaceholderID = id
		}
		if mapping.PlaceholderID != id {
			return ReportRecord{}, fmt.Errorf("reports: mapping key %s does not match placeholder id %s", id, mapping.PlaceholderID)
		}
		if err := s.validateMapping(mapping); err != nil {
			return ReportRecord{}, err
		}
		mappings[id] = mapping
	}
	record, err := s.updateRecord(ctx, reportID, "mappings", func(record *ReportRecord) error {
		record.Mappings = mappings.Clone()
		return nil
	})
	if err != nil {
		return ReportRecord{}, err
	}
	s.recordTelemetry(ctx, "reports.mappings.save", map[string]any{
		"report_id": record.ID,
		"count":     len(mappings),
		"complete":  IsComplete(record.Placeholders, record.Mappings),
	})
	return record, nil
}

// Rescan re-detects placeholders from the stored template bytes. Mappings are
// untouched; stale entries are reported via MappingStatus, never removed.
func (s *Service) Rescan(ctx context.Context, reportID string) (ReportRecord, error) {
	record, err := s.updateRecord(ctx, reportID, "rescan", func(record *ReportRecord) error {
		structure, err := ParseTemplate(record.TemplateFile)
		if err != nil {
			return err
		}
		record.Structure = structure
		record.Placeholders = ScanPlaceholders(structure)
		return nil
	})
	if err != nil {
		return ReportRecord{}, err
	}
	s.recordTelemetry(ctx, "reports.template.rescan", map[string]any{
		"report_id":    record.ID,
		"placeholders": len(record.Placeholders),
	})
	return record, nil
}

// MappingStatus summarizes mapping coverage for a report. Advisory only:
// generation never consults it.
type MappingStatus struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing,omitempty"`
	Stale    []string `json:"stale,omitempty"`
}

// MappingStatusFor computes coverage for the current placeholder inventory.
func (s *Service) MappingStatusFor(ctx context.Context, reportID string) (MappingStatus, error) {
	record, err := s.GetReport(ctx, reportID)
	if err != nil {
		return MappingStatus{}, err
	}
	return MappingStatus{
		Complete: IsComplete(record.Placeholders, record.Mappings),
		Missing:  MissingMappings(record.Placeholders, record.Mappings),
		Stale:    StaleMappings(record.Placeholders, record.Mappings),
	}, nil
}

// SetSharing enables or disables the public share link. Enabling mints a
// token on first use; disabling keeps the token so re-enabling restores the
// same link.
func (s *Service) SetSharing(ctx context.Context, reportID string, public bool) (ReportRecord, error) {
	record, err := s.updateRecord(ctx, reportID, "share", func(record *ReportRecord) error {
		if public && record.ShareToken == "" {
			record.ShareToken = uuid.NewString()
		}
		record.IsPublic = public
		return nil
	})
	if err != nil {
		return ReportRecord{}, err
	}
	s.recordTelemetry(ctx, "reports.report.share", map[string]any{
		"report_id": record.ID,
		"public":    public,
	})
	return record, nil
}

// GetSharedReport fetches a record through its share token.
func (s *Service) GetSharedReport(ctx context.Context, token string) (ReportRecord, error) {
	store, err := s.store()
	if err != nil {
		return ReportRecord{}, err
	}
	record, err := store.GetReportByShareToken(ctx, token)
	if err != nil {
		return ReportRecord{}, err
	}
	if !record.IsPublic {
		return ReportRecord{}, ErrShareDisabled
	}
	return record, nil
}

// GenerateReport runs a generation pass against a snapshot of the record.
// Completeness never gates generation.
func (s *Service) GenerateReport(ctx context.Context, reportID string) (GenerateResult, error) {
	record, err := s.GetReport(ctx, reportID)
	if err != nil {
		return GenerateResult{}, err
	}
	return s.GenerateRecord(ctx, record)
}

// GenerateSharedReport generates through a share token.
func (s *Service) GenerateSharedReport(ctx context.Context, token string) (GenerateResult, error) {
	record, err := s.GetSharedReport(ctx, token)
	if err != nil {
		return GenerateResult{}, err
	}
	return s.GenerateRecord(ctx, record)
}

// GenerateRecord generates from an in-hand snapshot. The CLI uses this with
// manifest-built records that never touch the store.
func (s *Service) GenerateRecord(ctx context.Context, record ReportRecord) (GenerateResult, error) {
	result, err := generateWorkbook(ctx, record, s.resolveMapping, s.opts.ChartRenderer, s.opts.ResolveWorkers)
	if err != nil {
		s.recordTelemetry(ctx, "reports.generate.error", map[string]any{
			"report_id": record.ID,
			"error":     err.Error(),
		})
		return GenerateResult{}, err
	}
	reason := "generated"
	if len(result.Failures) > 0 {
		reason = "generated_partial"
	}
	s.notify(ctx, ReportEvent{ReportID: record.ID, Reason: reason, Detail: map[string]any{
		"failures": len(result.Failures),
	}})
	s.recordTelemetry(ctx, "reports.generate", map[string]any{
		"report_id": record.ID,
		"failures":  len(result.Failures),
		"complete":  result.Complete,
	})
	return result, nil
}

// ChartPreviewHTML resolves a chart mapping and renders preview markup.
func (s *Service) ChartPreviewHTML(ctx context.Context, reportID, placeholderID string) (string, error) {
	record, err := s.GetReport(ctx, reportID)
	if err != nil {
		return "", err
	}
	ph, ok := placeholderByID(record.Placeholders, placeholderID)
	if !ok {
		return "", fmt.Errorf("reports: placeholder %s not found", placeholderID)
	}
	if ph.Type != PlaceholderChart {
		return "", fmt.Errorf("reports: placeholder %s is not a chart", placeholderID)
	}
	mapping, ok := record.Mappings[placeholderID]
	if !ok {
		return "", fmt.Errorf("reports: placeholder %s is unmapped", placeholderID)
	}
	result, err := s.resolveMapping(ctx, mapping)
	if err != nil {
		return "", err
	}
	return s.opts.ChartPreview.PreviewHTML(ctx, ChartSpec{
		Title:  ph.Name,
		Kind:   configString(mapping.Config, "chartType"),
		Result: result,
		Config: mapping.Config,
	})
}

// resolveMapping prefers a registered resolver for the source kind, falling
// back to the injected query executor.
func (s *Service) resolveMapping(ctx context.Context, mapping Mapping) (QueryResult, error) {
	if s.opts.Sources != nil {
		if resolver, ok := s.opts.Sources.Resolver(mapping.Source.SourceKind); ok {
			return resolver.Resolve(ctx, mapping)
		}
	}
	if s.opts.Executor == nil {
		return QueryResult{}, errMissingExecutor
	}
	return s.opts.Executor.Execute(ctx, mapping.Source)
}

func (s *Service) validateMapping(mapping Mapping) error {
	if s.opts.ConfigValidator == nil || s.opts.Sources == nil {
		return nil
	}
	def, ok := s.opts.Sources.Definition(mapping.Source.SourceKind)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, mapping.Config)
}

func (s *Service) updateRecord(ctx context.Context, reportID, reason string, mutate func(*ReportRecord) error) (ReportRecord, error) {
	store, err := s.store()
	if err != nil {
		return ReportRecord{}, err
	}
	if reportID == "" {
		return ReportRecord{}, errReportID
	}
	record, err := store.GetReport(ctx, reportID)
	if err != nil {
		return ReportRecord{}, err
	}
	if err := mutate(&record); err != nil {
		return ReportRecord{}, err
	}
	record.UpdatedAt = s.opts.Clock()
	if err := store.UpdateReport(ctx, record); err != nil {
		return ReportRecord{}, err
	}
	s.notify(ctx, ReportEvent{ReportID: record.ID, Reason: reason})
	return record, nil
}

func (s *Service) store() (ReportStore, error) {
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	return s.opts.Store, nil
}

func (s *Service) notify(ctx context.Context, event ReportEvent) {
	if err := s.opts.ReportHook.ReportUpdated(ctx, event); err != nil {
		s.recordTelemetry(ctx, "reports.hook.error", map[string]any{
			"report_id": event.ReportID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopReportHook struct{}

func (noopReportHook) ReportUpdated(context.Context, ReportEvent) error {
	return nil
}
