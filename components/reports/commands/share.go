package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// SetSharingInput toggles the public share link of a report.
type SetSharingInput struct {
	ReportID string `json:"reportId"`
	Public   bool   `json:"public"`
}

type sharingService interface {
	SetSharing(ctx context.Context, reportID string, public bool) (reports.ReportRecord, error)
}

// SetSharingCommand enables or disables the share link.
type SetSharingCommand struct {
	service   sharingService
	telemetry Telemetry
}

// NewSetSharingCommand creates a command instance.
func NewSetSharingCommand(service sharingService, telemetry Telemetry) *SetSharingCommand {
	return &SetSharingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetSharingInput] = (*SetSharingCommand)(nil)

// Execute delegates to the report service.
func (c *SetSharingCommand) Execute(ctx context.Context, msg SetSharingInput) error {
	if c.service == nil {
		return errors.New("set sharing command requires service")
	}
	if _, err := c.service.SetSharing(ctx, msg.ReportID, msg.Public); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "reports.command.share", map[string]any{
		"report_id": msg.ReportID,
		"public":    msg.Public,
	})
	return nil
}
