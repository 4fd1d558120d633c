package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// ArchiveReportInput toggles the archived flag of a report.
type ArchiveReportInput struct {
	ReportID string `json:"reportId"`
	Archived bool   `json:"archived"`
}

type archiveService interface {
	ArchiveReport(ctx context.Context, reportID string, archived bool) (reports.ReportRecord, error)
}

// ArchiveReportCommand hides or restores a report from default listings.
type ArchiveReportCommand struct {
	service   archiveService
	telemetry Telemetry
}

// NewArchiveReportCommand creates a command instance.
func NewArchiveReportCommand(service archiveService, telemetry Telemetry) *ArchiveReportCommand {
	return &ArchiveReportCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ArchiveReportInput] = (*ArchiveReportCommand)(nil)

// Execute delegates to the report service.
func (c *ArchiveReportCommand) Execute(ctx context.Context, msg ArchiveReportInput) error {
	if c.service == nil {
		return errors.New("archive command requires service")
	}
	if _, err := c.service.ArchiveReport(ctx, msg.ReportID, msg.Archived); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "reports.command.archive", map[string]any{
		"report_id": msg.ReportID,
		"archived":  msg.Archived,
	})
	return nil
}
