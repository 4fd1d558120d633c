package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	router "github.com/goliatone/go-router"

	reports "github.com/goliatone/go-excel-reports/components/reports"
	"github.com/goliatone/go-excel-reports/components/reports/commands"
	"github.com/goliatone/go-excel-reports/components/reports/httpapi"
)

// Config wires go-router with the report service, preview controller, write
// API, and event broadcast.
type Config[T any] struct {
	Router     router.Router[T]
	Service    *reports.Service
	Controller *reports.Controller
	API        httpapi.Executor
	Broadcast  *reports.BroadcastHook
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for report endpoints.
type RouteConfig struct {
	Reports      string
	ReportID     string
	Template     string
	Preview      string
	Structure    string
	Mappings     string
	Status       string
	Rescan       string
	Generate     string
	Share        string
	Duplicate    string
	Archive      string
	ChartPreview string
	Shared       string
	SharedFile   string
	WebSocket    string
}

// Register mounts report routes (JSON, HTML preview, file download,
// WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Service == nil {
		return errors.New("gorouter: service is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}

	group := cfg.Router.Group(base)

	group.Get(routes.Reports, router.WrapHandler(func(ctx router.Context) error {
		include := ctx.Query("include_archived") == "true"
		records, err := cfg.Service.ListReports(ctx.Context(), reports.ListReportsInput{IncludeArchived: include})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		payload := make([]map[string]any, 0, len(records))
		for _, record := range records {
			payload = append(payload, recordPayload(record))
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	group.Post(routes.Reports, router.WrapHandler(func(ctx router.Context) error {
		var payload reports.UploadTemplateRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		record, err := cfg.Service.UploadTemplate(ctx.Context(), payload)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusCreated, recordPayload(record))
	}))

	group.Get(routes.ReportID, router.WrapHandler(func(ctx router.Context) error {
		record, err := cfg.Service.GetReport(ctx.Context(), ctx.Param("id"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, recordPayload(record))
	}))

	group.Post(routes.Template, router.WrapHandler(func(ctx router.Context) error {
		var payload reports.UploadTemplateRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ReportID = ctx.Param("id")
		record, err := cfg.Service.UploadTemplate(ctx.Context(), payload)
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, recordPayload(record))
	}))

	if cfg.Controller != nil {
		group.Get(routes.Preview, router.WrapHandler(func(ctx router.Context) error {
			var buf bytes.Buffer
			if err := cfg.Controller.RenderPreview(ctx.Context(), ctx.Param("id"), &buf); err != nil {
				return respondError(ctx, statusFor(err), err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))

		group.Get(routes.Structure, router.WrapHandler(func(ctx router.Context) error {
			payload, err := cfg.Controller.PreviewPayload(ctx.Context(), ctx.Param("id"))
			if err != nil {
				return respondError(ctx, statusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, payload)
		}))
	}

	group.Get(routes.Status, router.WrapHandler(func(ctx router.Context) error {
		status, err := cfg.Service.MappingStatusFor(ctx.Context(), ctx.Param("id"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, status)
	}))

	group.Get(routes.ChartPreview, router.WrapHandler(func(ctx router.Context) error {
		html, err := cfg.Service.ChartPreviewHTML(ctx.Context(), ctx.Param("id"), ctx.Param("placeholder"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send([]byte(html))
	}))

	group.Post(routes.Generate, router.WrapHandler(func(ctx router.Context) error {
		result, err := cfg.Service.GenerateReport(ctx.Context(), ctx.Param("id"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return sendWorkbook(ctx, result)
	}))

	group.Post(routes.Duplicate, router.WrapHandler(func(ctx router.Context) error {
		record, err := cfg.Service.DuplicateReport(ctx.Context(), ctx.Param("id"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, recordPayload(record))
	}))

	group.Get(routes.Shared, router.WrapHandler(func(ctx router.Context) error {
		record, err := cfg.Service.GetSharedReport(ctx.Context(), ctx.Param("token"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, recordPayload(record))
	}))

	group.Post(routes.SharedFile, router.WrapHandler(func(ctx router.Context) error {
		result, err := cfg.Service.GenerateSharedReport(ctx.Context(), ctx.Param("token"))
		if err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return sendWorkbook(ctx, result)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, routes RouteConfig) {
	r.Post(routes.Mappings, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveMappingsInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ReportID = ctx.Param("id")
		if err := api.SaveMappings(ctx.Context(), payload); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Post(routes.Rescan, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Rescan(ctx.Context(), commands.RescanInput{ReportID: ctx.Param("id")}); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "rescanned"})
	}))

	r.Post(routes.Share, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SetSharingInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ReportID = ctx.Param("id")
		if err := api.SetSharing(ctx.Context(), payload); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Post(routes.Archive, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ArchiveReportInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.ReportID = ctx.Param("id")
		if err := api.Archive(ctx.Context(), payload); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Delete(routes.ReportID, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Delete(ctx.Context(), commands.DeleteReportInput{ReportID: ctx.Param("id")}); err != nil {
			return respondError(ctx, statusFor(err), err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *reports.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// sendWorkbook streams the generated file with its deterministic filename.
// Partial failures are surfaced via headers so clients still get the file.
func sendWorkbook(ctx router.Context, result reports.GenerateResult) error {
	ctx.SetHeader("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.SetHeader("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if len(result.Failures) > 0 {
		if detail, err := json.Marshal(result.Failures); err == nil {
			ctx.SetHeader("X-Generation-Failures", string(detail))
		}
	}
	return ctx.Send(result.Content)
}

func recordPayload(record reports.ReportRecord) map[string]any {
	return map[string]any{
		"id":           record.ID,
		"name":         record.Name,
		"description":  record.Description,
		"filename":     record.Filename,
		"placeholders": record.Placeholders,
		"mappings":     record.Mappings,
		"isComplete":   reports.IsComplete(record.Placeholders, record.Mappings),
		"shareToken":   record.ShareToken,
		"isPublic":     record.IsPublic,
		"archived":     record.Archived,
		"createdAt":    record.CreatedAt,
		"updatedAt":    record.UpdatedAt,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reports.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, reports.ErrShareDisabled):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Reports == "" {
		routes.Reports = "/reports"
	}
	if routes.ReportID == "" {
		routes.ReportID = "/reports/:id"
	}
	if routes.Template == "" {
		routes.Template = "/reports/:id/template"
	}
	if routes.Preview == "" {
		routes.Preview = "/reports/:id/preview"
	}
	if routes.Structure == "" {
		routes.Structure = "/reports/:id/structure"
	}
	if routes.Mappings == "" {
		routes.Mappings = "/reports/:id/mappings"
	}
	if routes.Status == "" {
		routes.Status = "/reports/:id/mappings/status"
	}
	if routes.Rescan == "" {
		routes.Rescan = "/reports/:id/rescan"
	}
	if routes.Generate == "" {
		routes.Generate = "/reports/:id/generate"
	}
	if routes.Share == "" {
		routes.Share = "/reports/:id/share"
	}
	if routes.Duplicate == "" {
		routes.Duplicate = "/reports/:id/duplicate"
	}
	if routes.Archive == "" {
		routes.Archive = "/reports/:id/archive"
	}
	if routes.ChartPreview == "" {
		routes.ChartPreview = "/reports/:id/placeholders/:placeholder/chart"
	}
	if routes.Shared == "" {
		routes.Shared = "/shared/:token"
	}
	if routes.SharedFile == "" {
		routes.SharedFile = "/shared/:token/generate"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/reports/ws"
	}
	return routes
}
