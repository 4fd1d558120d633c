package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// RescanInput requests placeholder re-detection from the stored template.
type RescanInput struct {
	ReportID string `json:"reportId"`
}

type rescanService interface {
	Rescan(ctx context.Context, reportID string) (reports.ReportRecord, error)
}

// RescanCommand re-detects placeholders without touching mappings.
type RescanCommand struct {
	service   rescanService
	telemetry Telemetry
}

// NewRescanCommand creates a command instance.
func NewRescanCommand(service rescanService, telemetry Telemetry) *RescanCommand {
	return &RescanCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RescanInput] = (*RescanCommand)(nil)

// Execute delegates to the report service.
func (c *RescanCommand) Execute(ctx context.Context, msg RescanInput) error {
	if c.service == nil {
		return errors.New("rescan command requires service")
	}
	record, err := c.service.Rescan(ctx, msg.ReportID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "reports.command.rescan", map[string]any{
		"report_id":    msg.ReportID,
		"placeholders": len(record.Placeholders),
	})
	return nil
}
