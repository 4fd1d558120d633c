package metabase

import (
	"context"
	"testing"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

func fixtureClient() *MockClient {
	return NewMockClient(MockData{
		Questions: map[string]reports.QueryResult{
			"42": {
				Columns: []string{"Region", "Revenue"},
				Rows:    [][]any{{"north", 120.5}},
			},
		},
		Dataset: reports.QueryResult{
			Columns: []string{"count"},
			Rows:    [][]any{{int64(3)}},
		},
		Catalog: []Question{{ID: "42", Name: "Sales by Region"}},
	})
}

func TestQueryExecutorDispatchesQuestions(t *testing.T) {
	executor := NewQueryExecutor(fixtureClient())
	result, err := executor.Execute(context.Background(), reports.QueryDescriptor{
		SourceKind: reports.SourceKindQuestion,
		SourceID:   "42",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(result.Columns) != 2 || result.Columns[0] != "Region" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestQueryExecutorDefaultsToQuestionKind(t *testing.T) {
	executor := NewQueryExecutor(fixtureClient())
	result, err := executor.Execute(context.Background(), reports.QueryDescriptor{SourceID: "42"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("unexpected rows: %#v", result.Rows)
	}
	if _, err := executor.Execute(context.Background(), reports.QueryDescriptor{}); err == nil {
		t.Fatal("expected error without question id")
	}
}

func TestQueryExecutorDispatchesDatasets(t *testing.T) {
	executor := NewQueryExecutor(fixtureClient())
	result, err := executor.Execute(context.Background(), reports.QueryDescriptor{
		SourceKind: reports.SourceKindDataset,
		Query:      map[string]any{"type": "native"},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(result.Columns) != 1 || result.Columns[0] != "count" {
		t.Fatalf("unexpected result: %#v", result)
	}
	if _, err := executor.Execute(context.Background(), reports.QueryDescriptor{
		SourceKind: reports.SourceKindDataset,
	}); err == nil {
		t.Fatal("expected error without dataset query")
	}
}

func TestQueryExecutorRejectsUnknownKind(t *testing.T) {
	executor := NewQueryExecutor(fixtureClient())
	if _, err := executor.Execute(context.Background(), reports.QueryDescriptor{
		SourceKind: "spreadsheet",
		SourceID:   "42",
	}); err == nil {
		t.Fatal("expected unsupported kind error")
	}
}

func TestRegisterSourcesWiresResolvers(t *testing.T) {
	registry := reports.NewRegistry()
	if err := RegisterSources(registry, fixtureClient()); err != nil {
		t.Fatalf("RegisterSources returned error: %v", err)
	}
	resolver, ok := registry.Resolver(reports.SourceKindQuestion)
	if !ok {
		t.Fatal("expected question resolver registered")
	}
	result, err := resolver.Resolve(context.Background(), reports.Mapping{
		Source: reports.QueryDescriptor{SourceKind: reports.SourceKindQuestion, SourceID: "42"},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "north" {
		t.Fatalf("unexpected result: %#v", result)
	}
}
