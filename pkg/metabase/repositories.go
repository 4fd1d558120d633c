package metabase

import (
	"context"
	"fmt"

	reports "github.com/goliatone/go-excel-reports/components/reports"
)

// NewQueryExecutor adapts a Metabase client into the engine's query
// collaborator contract.
func NewQueryExecutor(client Client) reports.QueryExecutor {
	return &queryExecutor{client: client}
}

type queryExecutor struct {
	client Client
}

var _ reports.QueryExecutor = (*queryExecutor)(nil)

func (r *queryExecutor) Execute(ctx context.Context, descriptor reports.QueryDescriptor) (reports.QueryResult, error) {
	switch descriptor.SourceKind {
	case reports.SourceKindQuestion, "":
		if descriptor.SourceID == "" {
			return reports.QueryResult{}, fmt.Errorf("metabase: question id is required")
		}
		return r.client.ExecuteQuestion(ctx, descriptor.SourceID, descriptor.Parameters)
	case reports.SourceKindDataset:
		if len(descriptor.Query) == 0 {
			return reports.QueryResult{}, fmt.Errorf("metabase: dataset query is required")
		}
		return r.client.ExecuteDataset(ctx, descriptor.Query)
	default:
		return reports.QueryResult{}, fmt.Errorf("metabase: unsupported source kind %q", descriptor.SourceKind)
	}
}

// RegisterSources wires Metabase-backed resolvers into a source registry.
func RegisterSources(reg *reports.Registry, client Client) error {
	executor := NewQueryExecutor(client)
	return reports.RegisterExecutorResolvers(reg, executor)
}
