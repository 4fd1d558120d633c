package reports

import (
	"context"
	"testing"
)

func TestRegisterExecutorResolvers(t *testing.T) {
	reg := NewRegistry()
	executor := &fakeExecutor{executeFn: func(_ context.Context, descriptor QueryDescriptor) (QueryResult, error) {
		return QueryResult{Columns: []string{descriptor.SourceKind}}, nil
	}}
	if err := RegisterExecutorResolvers(reg, executor); err != nil {
		t.Fatalf("RegisterExecutorResolvers returned error: %v", err)
	}
	for _, kind := range []string{SourceKindQuestion, SourceKindDataset} {
		resolver, ok := reg.Resolver(kind)
		if !ok {
			t.Fatalf("expected resolver for %q", kind)
		}
		result, err := resolver.Resolve(context.Background(), Mapping{
			Source: QueryDescriptor{SourceKind: kind, SourceID: "1"},
		})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if len(result.Columns) != 1 || result.Columns[0] != kind {
			t.Fatalf("expected executor invoked with %q descriptor, got %#v", kind, result)
		}
	}
}

func TestRegisterExecutorResolversGuards(t *testing.T) {
	if err := RegisterExecutorResolvers(nil, &fakeExecutor{}); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if err := RegisterExecutorResolvers(NewRegistry(), nil); err == nil {
		t.Fatal("expected error for nil executor")
	}
}
