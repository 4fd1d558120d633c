package reports

import (
	"context"
	"testing"
)

func TestNewRegistryRegistersBuiltinKinds(t *testing.T) {
	reg := NewRegistry()
	for _, kind := range []string{SourceKindQuestion, SourceKindDataset} {
		def, ok := reg.Definition(kind)
		if !ok {
			t.Fatalf("expected builtin definition %q", kind)
		}
		if len(def.Schema) == 0 {
			t.Fatalf("expected schema on %q", kind)
		}
	}
	if len(reg.Definitions()) < 2 {
		t.Fatalf("expected at least builtin definitions, got %d", len(reg.Definitions()))
	}
}

func TestRegisterResolverRequiresDefinition(t *testing.T) {
	reg := NewRegistry()
	resolver := SourceResolverFunc(func(context.Context, Mapping) (QueryResult, error) {
		return QueryResult{}, nil
	})
	if err := reg.RegisterResolver("unknown", resolver); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if err := reg.RegisterResolver(SourceKindQuestion, nil); err == nil {
		t.Fatal("expected error for nil resolver")
	}
	if err := reg.RegisterResolver(SourceKindQuestion, resolver); err != nil {
		t.Fatalf("RegisterResolver returned error: %v", err)
	}
	if _, ok := reg.Resolver(SourceKindQuestion); !ok {
		t.Fatal("expected resolver retrievable")
	}
}

func TestRegisterDefinitionRequiresKind(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterDefinition(SourceDefinition{}); err == nil {
		t.Fatal("expected error for empty kind")
	}
	if err := reg.RegisterDefinition(SourceDefinition{Kind: "custom"}); err != nil {
		t.Fatalf("RegisterDefinition returned error: %v", err)
	}
	if _, ok := reg.Definition("custom"); !ok {
		t.Fatal("expected custom definition stored")
	}
}
