package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// DeleteReportInput removes a report record.
type DeleteReportInput struct {
	ReportID string `json:"reportId"`
}

type deleteService interface {
	DeleteReport(ctx context.Context, reportID string) error
}

// DeleteReportCommand removes a report and its mappings.
type DeleteReportCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteReportCommand creates a command instance.
func NewDeleteReportCommand(service deleteService, telemetry Telemetry) *DeleteReportCommand {
	return &DeleteReportCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteReportInput] = (*DeleteReportCommand)(nil)

// Execute delegates to the report service.
func (c *DeleteReportCommand) Execute(ctx context.Context, msg DeleteReportInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if err := c.service.DeleteReport(ctx, msg.ReportID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "reports.command.delete", map[string]any{
		"report_id": msg.ReportID,
	})
	return nil
}
