package reports

import (
	"context"
	"fmt"
	"sync"
)

// SourceResolver executes the query behind a mapping for one source kind.
type SourceResolver interface {
	Resolve(ctx context.Context, mapping Mapping) (QueryResult, error)
}

// SourceResolverFunc adapts a function to the SourceResolver interface.
type SourceResolverFunc func(ctx context.Context, mapping Mapping) (QueryResult, error)

// Resolve implements SourceResolver.
func (fn SourceResolverFunc) Resolve(ctx context.Context, mapping Mapping) (QueryResult, error) {
	return fn(ctx, mapping)
}

// SourceDefinition describes a data-source kind: its schema constrains the
// mapping configuration users may attach.
type SourceDefinition struct {
	Kind        string
	Name        string
	Description string
	Schema      map[string]any
}

// SourceHook lets packages register source kinds/resolvers during init().
type SourceHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []SourceHook
)

// RegisterSourceHook registers a hook executed against new registries.
func RegisterSourceHook(h SourceHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry stores source definitions and resolvers discoverable via hooks.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]SourceDefinition
	resolvers   map[string]SourceResolver
}

// NewRegistry builds an empty registry and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		definitions: map[string]SourceDefinition{},
		resolvers:   map[string]SourceResolver{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultSourceDefinitions() {
		_ = r.RegisterDefinition(def)
	}
}

// ApplyHooks executes registered source hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores source kind metadata.
func (r *Registry) RegisterDefinition(def SourceDefinition) error {
	if def.Kind == "" {
		return fmt.Errorf("source definition kind is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Kind] = def
	return nil
}

// RegisterResolver associates a resolver implementation with a source kind.
func (r *Registry) RegisterResolver(kind string, resolver SourceResolver) error {
	if kind == "" {
		return fmt.Errorf("source kind is required to register resolver")
	}
	if resolver == nil {
		return fmt.Errorf("resolver cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[kind]; !ok {
		return fmt.Errorf("source definition %s not found", kind)
	}
	r.resolvers[kind] = resolver
	return nil
}

// Definition fetches a source definition by kind.
func (r *Registry) Definition(kind string) (SourceDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[kind]
	return def, ok
}

// Resolver fetches a source resolver by kind.
func (r *Registry) Resolver(kind string) (SourceResolver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resolver, ok := r.resolvers[kind]
	return resolver, ok
}

// Definitions returns all registered definitions.
func (r *Registry) Definitions() []SourceDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]SourceDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	return defs
}
