package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-excel-reports/components/reports/commands"
)

// Executor groups the write operations transports can invoke without linking
// against the service directly.
type Executor interface {
	SaveMappings(ctx context.Context, input commands.SaveMappingsInput) error
	Rescan(ctx context.Context, input commands.RescanInput) error
	SetSharing(ctx context.Context, input commands.SetSharingInput) error
	Archive(ctx context.Context, input commands.ArchiveReportInput) error
	Delete(ctx context.Context, input commands.DeleteReportInput) error
}

// CommandExecutor satisfies Executor by dispatching to shared commands.
type CommandExecutor struct {
	MappingsCommander gocommand.Commander[commands.SaveMappingsInput]
	RescanCommander   gocommand.Commander[commands.RescanInput]
	SharingCommander  gocommand.Commander[commands.SetSharingInput]
	ArchiveCommander  gocommand.Commander[commands.ArchiveReportInput]
	DeleteCommander   gocommand.Commander[commands.DeleteReportInput]
}

var errCommandMissing = errors.New("httpapi: command not configured")

// SaveMappings dispatches the save-mappings command.
func (e *CommandExecutor) SaveMappings(ctx context.Context, input commands.SaveMappingsInput) error {
	if e.MappingsCommander == nil {
		return errCommandMissing
	}
	return e.MappingsCommander.Execute(ctx, input)
}

// Rescan dispatches the rescan command.
func (e *CommandExecutor) Rescan(ctx context.Context, input commands.RescanInput) error {
	if e.RescanCommander == nil {
		return errCommandMissing
	}
	return e.RescanCommander.Execute(ctx, input)
}

// SetSharing dispatches the sharing command.
func (e *CommandExecutor) SetSharing(ctx context.Context, input commands.SetSharingInput) error {
	if e.SharingCommander == nil {
		return errCommandMissing
	}
	return e.SharingCommander.Execute(ctx, input)
}

// Archive dispatches the archive command.
func (e *CommandExecutor) Archive(ctx context.Context, input commands.ArchiveReportInput) error {
	if e.ArchiveCommander == nil {
		return errCommandMissing
	}
	return e.ArchiveCommander.Execute(ctx, input)
}

// Delete dispatches the delete command.
func (e *CommandExecutor) Delete(ctx context.Context, input commands.DeleteReportInput) error {
	if e.DeleteCommander == nil {
		return errCommandMissing
	}
	return e.DeleteCommander.Execute(ctx, input)
}

// Handlers exposes plain net/http endpoints backed by shared commands for
// applications that do not use go-router.
type Handlers struct {
	API Executor
}

func (h *Handlers) HandleSaveMappings(w http.ResponseWriter, r *http.Request, reportID string) {
	var payload commands.SaveMappingsInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.ReportID = reportID
	if err := h.API.SaveMappings(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRescan(w http.ResponseWriter, r *http.Request, reportID string) {
	if err := h.API.Rescan(r.Context(), commands.RescanInput{ReportID: reportID}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSetSharing(w http.ResponseWriter, r *http.Request, reportID string) {
	var payload commands.SetSharingInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.ReportID = reportID
	if err := h.API.SetSharing(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleArchive(w http.ResponseWriter, r *http.Request, reportID string) {
	var payload commands.ArchiveReportInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.ReportID = reportID
	if err := h.API.Archive(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request, reportID string) {
	if err := h.API.Delete(r.Context(), commands.DeleteReportInput{ReportID: reportID}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
