package reports

import (
	"context"
	"fmt"
)

// RegisterExecutorResolvers wires a query executor as the resolver for the
// builtin source kinds so mappings resolve without extra registry setup.
func RegisterExecutorResolvers(reg *Registry, executor QueryExecutor) error {
	if reg == nil {
		return fmt.Errorf("reports: registry is required")
	}
	if executor == nil {
		return errMissingExecutor
	}
	for _, kind := range []string{SourceKindQuestion, SourceKindDataset} {
		resolver := SourceResolverFunc(func(ctx context.Context, mapping Mapping) (QueryResult, error) {
			return executor.Execute(ctx, mapping.Source)
		})
		if err := reg.RegisterResolver(kind, resolver); err != nil {
			return fmt.Errorf("reports: register resolver %s: %w", kind, err)
		}
	}
	return nil
}
