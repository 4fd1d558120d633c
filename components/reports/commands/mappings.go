package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// SaveMappingsInput replaces the mapping set of a report wholesale.
type SaveMappingsInput struct {
	ReportID string             `json:"reportId"`
	Mappings reports.MappingSet `json:"mappings"`
}

type mappingsService interface {
	SaveMappings(ctx context.Context, reportID string, mappings reports.MappingSet) (reports.ReportRecord, error)
}

// SaveMappingsCommand translates incoming requests into service calls and
// emits telemetry so operators can observe mapping activity.
type SaveMappingsCommand struct {
	service   mappingsService
	telemetry Telemetry
}

// NewSaveMappingsCommand creates a command instance.
func NewSaveMappingsCommand(service mappingsService, telemetry Telemetry) *SaveMappingsCommand {
	return &SaveMappingsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveMappingsInput] = (*SaveMappingsCommand)(nil)

// Execute delegates to the report service.
func (c *SaveMappingsCommand) Execute(ctx context.Context, msg SaveMappingsInput) error {
	if c.service == nil {
		return errors.New("save mappings command requires service")
	}
	if _, err := c.service.SaveMappings(ctx, msg.ReportID, msg.Mappings); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "reports.command.save_mappings", map[string]any{
		"report_id": msg.ReportID,
		"count":     len(msg.Mappings),
	})
	return nil
}
