package reports

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

type fakeRenderer struct {
	name    string
	payload any
}

func (r *fakeRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.name = name
	r.payload = data
	if len(out) > 0 && out[0] != nil {
		if _, err := out[0].Write([]byte("rendered")); err != nil {
			return "", err
		}
	}
	return "rendered", nil
}

func TestPreviewPayloadMarksPlaceholders(t *testing.T) {
	service := newTestService(t, &fakeExecutor{}, nil)
	record := uploadFixture(t, service, "Quarterly", map[string]any{
		"A1": "Title",
		"B2": "{{value:total}}",
	})
	id := record.Placeholders[0].ID
	if _, err := service.SaveMappings(context.Background(), record.ID, MappingSet{
		id: {PlaceholderID: id, Source: QueryDescriptor{SourceKind: SourceKindQuestion, SourceID: "7"}},
	}); err != nil {
		t.Fatalf("SaveMappings returned error: %v", err)
	}

	controller := NewController(ControllerOptions{Service: service, Renderer: &fakeRenderer{}})
	payload, err := controller.PreviewPayload(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("PreviewPayload returned error: %v", err)
	}
	if payload["report_id"] != record.ID {
		t.Fatalf("unexpected payload id: %#v", payload["report_id"])
	}
	if payload["complete"] != true {
		t.Fatal("expected complete flag set")
	}
	sheets, ok := payload["sheets"].([]map[string]any)
	if !ok || len(sheets) != 1 {
		t.Fatalf("unexpected sheets payload: %#v", payload["sheets"])
	}
	rows, ok := sheets[0]["rows"].([][]map[string]any)
	if !ok || len(rows) < 2 {
		t.Fatalf("unexpected rows payload: %#v", sheets[0]["rows"])
	}
	tokenCell := rows[1][1]
	if tokenCell["placeholder"] != true || tokenCell["mapped"] != true {
		t.Fatalf("expected mapped placeholder cell, got %#v", tokenCell)
	}
	if tokenCell["value"] != "value:total" {
		t.Fatalf("expected friendly token label, got %#v", tokenCell["value"])
	}
	plainCell := rows[0][0]
	if plainCell["value"] != "Title" || plainCell["placeholder"] != false {
		t.Fatalf("unexpected plain cell: %#v", plainCell)
	}
}

func TestRenderPreviewWritesOutput(t *testing.T) {
	service := newTestService(t, &fakeExecutor{}, nil)
	record := uploadFixture(t, service, "Quarterly", map[string]any{"A1": "x"})

	renderer := &fakeRenderer{}
	controller := NewController(ControllerOptions{Service: service, Renderer: renderer})
	var buf bytes.Buffer
	if err := controller.RenderPreview(context.Background(), record.ID, &buf); err != nil {
		t.Fatalf("RenderPreview returned error: %v", err)
	}
	if buf.String() != "rendered" {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if renderer.name != "preview" {
		t.Fatalf("expected preview template, got %q", renderer.name)
	}
}

func TestRenderPreviewRequiresRenderer(t *testing.T) {
	service := newTestService(t, &fakeExecutor{}, nil)
	record := uploadFixture(t, service, "Quarterly", map[string]any{"A1": "x"})
	controller := NewController(ControllerOptions{Service: service})
	if err := controller.RenderPreview(context.Background(), record.ID, io.Discard); err == nil {
		t.Fatal("expected error without renderer")
	}
}

func TestInlineCellCSS(t *testing.T) {
	css := inlineCellCSS(&CellStyle{
		Bold:      true,
		FontSize:  12,
		FontColor: "112233",
		FillColor: "DDEEFF",
		AlignH:    "center",
	})
	for _, want := range []string{
		"font-weight: bold",
		"font-size: 12px",
		"color: #112233",
		"background-color: #DDEEFF",
		"text-align: center",
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected %q in css %q", want, css)
		}
	}
	if inlineCellCSS(nil) != "" {
		t.Fatal("expected empty css for nil style")
	}
}
