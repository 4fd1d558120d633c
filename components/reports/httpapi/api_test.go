package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	reports "github.com/goliatone/go-excel-reports/components/reports"
	"github.com/goliatone/go-excel-reports/components/reports/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func TestCommandExecutorDispatches(t *testing.T) {
	save := &stubCommander[commands.SaveMappingsInput]{}
	rescan := &stubCommander[commands.RescanInput]{}
	share := &stubCommander[commands.SetSharingInput]{}
	archive := &stubCommander[commands.ArchiveReportInput]{}
	remove := &stubCommander[commands.DeleteReportInput]{}
	executor := &CommandExecutor{
		MappingsCommander: save,
		RescanCommander:   rescan,
		SharingCommander:  share,
		ArchiveCommander:  archive,
		DeleteCommander:   remove,
	}
	ctx := context.Background()

	if err := executor.SaveMappings(ctx, commands.SaveMappingsInput{ReportID: "r1"}); err != nil {
		t.Fatalf("SaveMappings returned error: %v", err)
	}
	if err := executor.Rescan(ctx, commands.RescanInput{ReportID: "r1"}); err != nil {
		t.Fatalf("Rescan returned error: %v", err)
	}
	if err := executor.SetSharing(ctx, commands.SetSharingInput{ReportID: "r1", Public: true}); err != nil {
		t.Fatalf("SetSharing returned error: %v", err)
	}
	if err := executor.Archive(ctx, commands.ArchiveReportInput{ReportID: "r1", Archived: true}); err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if err := executor.Delete(ctx, commands.DeleteReportInput{ReportID: "r1"}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if save.calls+rescan.calls+share.calls+archive.calls+remove.calls != 5 {
		t.Fatal("expected each commander invoked once")
	}
	if save.last.ReportID != "r1" || remove.last.ReportID != "r1" {
		t.Fatal("expected inputs forwarded unchanged")
	}
}

func TestCommandExecutorRequiresCommanders(t *testing.T) {
	executor := &CommandExecutor{}
	ctx := context.Background()
	if err := executor.SaveMappings(ctx, commands.SaveMappingsInput{}); !errors.Is(err, errCommandMissing) {
		t.Fatalf("expected errCommandMissing, got %v", err)
	}
	if err := executor.Rescan(ctx, commands.RescanInput{}); !errors.Is(err, errCommandMissing) {
		t.Fatalf("expected errCommandMissing, got %v", err)
	}
	if err := executor.Delete(ctx, commands.DeleteReportInput{}); !errors.Is(err, errCommandMissing) {
		t.Fatalf("expected errCommandMissing, got %v", err)
	}
}

func TestHandleSaveMappings(t *testing.T) {
	save := &stubCommander[commands.SaveMappingsInput]{}
	api := &Handlers{API: &CommandExecutor{MappingsCommander: save}}
	payload := commands.SaveMappingsInput{
		Mappings: reports.MappingSet{"sheet1-a1": {PlaceholderID: "sheet1-a1"}},
	}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/reports/r1/mappings", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleSaveMappings(rec, req, "r1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if save.calls != 1 {
		t.Fatal("expected save to execute")
	}
	if save.last.ReportID != "r1" {
		t.Fatalf("expected path id injected, got %q", save.last.ReportID)
	}
}

func TestHandleSaveMappingsRejectsBadJSON(t *testing.T) {
	save := &stubCommander[commands.SaveMappingsInput]{}
	api := &Handlers{API: &CommandExecutor{MappingsCommander: save}}
	req := httptest.NewRequest(http.MethodPost, "/reports/r1/mappings", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	api.HandleSaveMappings(rec, req, "r1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if save.calls != 0 {
		t.Fatal("malformed payloads must not reach the command")
	}
}

func TestHandleRescan(t *testing.T) {
	rescan := &stubCommander[commands.RescanInput]{}
	api := &Handlers{API: &CommandExecutor{RescanCommander: rescan}}
	req := httptest.NewRequest(http.MethodPost, "/reports/r1/rescan", nil)
	rec := httptest.NewRecorder()
	api.HandleRescan(rec, req, "r1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rescan.last.ReportID != "r1" {
		t.Fatal("expected report id propagation")
	}
}

func TestHandleSetSharing(t *testing.T) {
	share := &stubCommander[commands.SetSharingInput]{}
	api := &Handlers{API: &CommandExecutor{SharingCommander: share}}
	buf, _ := json.Marshal(commands.SetSharingInput{Public: true})
	req := httptest.NewRequest(http.MethodPost, "/reports/r1/share", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleSetSharing(rec, req, "r1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !share.last.Public || share.last.ReportID != "r1" {
		t.Fatalf("unexpected input: %#v", share.last)
	}
}

func TestHandleArchive(t *testing.T) {
	archive := &stubCommander[commands.ArchiveReportInput]{}
	api := &Handlers{API: &CommandExecutor{ArchiveCommander: archive}}
	buf, _ := json.Marshal(commands.ArchiveReportInput{Archived: true})
	req := httptest.NewRequest(http.MethodPost, "/reports/r1/archive", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleArchive(rec, req, "r1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !archive.last.Archived {
		t.Fatal("expected archived flag forwarded")
	}
}

func TestHandleDelete(t *testing.T) {
	remove := &stubCommander[commands.DeleteReportInput]{}
	api := &Handlers{API: &CommandExecutor{DeleteCommander: remove}}
	req := httptest.NewRequest(http.MethodDelete, "/reports/r1", nil)
	rec := httptest.NewRecorder()
	api.HandleDelete(rec, req, "r1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.ReportID != "r1" {
		t.Fatal("expected report id propagation")
	}
}

func TestHandleDeleteSurfacesCommandError(t *testing.T) {
	remove := &stubCommander[commands.DeleteReportInput]{err: errors.New("boom")}
	api := &Handlers{API: &CommandExecutor{DeleteCommander: remove}}
	req := httptest.NewRequest(http.MethodDelete, "/reports/r1", nil)
	rec := httptest.NewRecorder()
	api.HandleDelete(rec, req, "r1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
