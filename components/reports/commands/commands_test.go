package commands

import (
	"context"
	"errors"
	"testing"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

type fakeReportService struct {
	saveCalls    []string
	rescanCalls  []string
	shareCalls   []string
	archiveCalls []string
	deleteCalls  []string
	err          error
}

func (f *fakeReportService) SaveMappings(_ context.Context, reportID string, mappings reports.MappingSet) (reports.ReportRecord, error) {
	f.saveCalls = append(f.saveCalls, reportID)
	return reports.ReportRecord{ID: reportID, Mappings: mappings}, f.err
}

func (f *fakeReportService) Rescan(_ context.Context, reportID string) (reports.ReportRecord, error) {
	f.rescanCalls = append(f.rescanCalls, reportID)
	return reports.ReportRecord{ID: reportID}, f.err
}

func (f *fakeReportService) SetSharing(_ context.Context, reportID string, public bool) (reports.ReportRecord, error) {
	f.shareCalls = append(f.shareCalls, reportID)
	return reports.ReportRecord{ID: reportID, IsPublic: public}, f.err
}

func (f *fakeReportService) ArchiveReport(_ context.Context, reportID string, archived bool) (reports.ReportRecord, error) {
	f.archiveCalls = append(f.archiveCalls, reportID)
	return reports.ReportRecord{ID: reportID, Archived: archived}, f.err
}

func (f *fakeReportService) DeleteReport(_ context.Context, reportID string) error {
	f.deleteCalls = append(f.deleteCalls, reportID)
	return f.err
}

type countingTelemetry struct {
	events []string
}

func (t *countingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.events = append(t.events, event)
}

func TestSaveMappingsCommand(t *testing.T) {
	service := &fakeReportService{}
	telemetry := &countingTelemetry{}
	cmd := NewSaveMappingsCommand(service, telemetry)
	input := SaveMappingsInput{
		ReportID: "r1",
		Mappings: reports.MappingSet{"a": {PlaceholderID: "a"}},
	}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.saveCalls) != 1 || service.saveCalls[0] != "r1" {
		t.Fatalf("unexpected service calls: %#v", service.saveCalls)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "reports.command.save_mappings" {
		t.Fatalf("unexpected telemetry: %#v", telemetry.events)
	}
}

func TestSaveMappingsCommandPropagatesError(t *testing.T) {
	service := &fakeReportService{err: errors.New("boom")}
	telemetry := &countingTelemetry{}
	cmd := NewSaveMappingsCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SaveMappingsInput{ReportID: "r1"}); err == nil {
		t.Fatal("expected service error surfaced")
	}
	if len(telemetry.events) != 0 {
		t.Fatal("failed commands must not emit telemetry")
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewSaveMappingsCommand(nil, nil).Execute(ctx, SaveMappingsInput{}); err == nil {
		t.Fatal("expected error without service")
	}
	if err := NewRescanCommand(nil, nil).Execute(ctx, RescanInput{}); err == nil {
		t.Fatal("expected error without service")
	}
	if err := NewSetSharingCommand(nil, nil).Execute(ctx, SetSharingInput{}); err == nil {
		t.Fatal("expected error without service")
	}
	if err := NewArchiveReportCommand(nil, nil).Execute(ctx, ArchiveReportInput{}); err == nil {
		t.Fatal("expected error without service")
	}
	if err := NewDeleteReportCommand(nil, nil).Execute(ctx, DeleteReportInput{}); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestRescanCommand(t *testing.T) {
	service := &fakeReportService{}
	cmd := NewRescanCommand(service, nil)
	if err := cmd.Execute(context.Background(), RescanInput{ReportID: "r1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.rescanCalls) != 1 {
		t.Fatalf("expected rescan call, got %#v", service.rescanCalls)
	}
}

func TestSetSharingCommand(t *testing.T) {
	service := &fakeReportService{}
	cmd := NewSetSharingCommand(service, nil)
	if err := cmd.Execute(context.Background(), SetSharingInput{ReportID: "r1", Public: true}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(service.shareCalls) != 1 {
		t.Fatalf("expected share call, got %#v", service.shareCalls)
	}
}

func TestArchiveAndDeleteCommands(t *testing.T) {
	service := &fakeReportService{}
	if err := NewArchiveReportCommand(service, nil).Execute(context.Background(), ArchiveReportInput{ReportID: "r1", Archived: true}); err != nil {
		t.Fatalf("archive Execute returned error: %v", err)
	}
	if err := NewDeleteReportCommand(service, nil).Execute(context.Background(), DeleteReportInput{ReportID: "r1"}); err != nil {
		t.Fatalf("delete Execute returned error: %v", err)
	}
	if len(service.archiveCalls) != 1 || len(service.deleteCalls) != 1 {
		t.Fatalf("unexpected calls: %#v / %#v", service.archiveCalls, service.deleteCalls)
	}
}
