package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates mapping configuration payloads against the schema
// of their source kind.
type ConfigValidator interface {
	Validate(def SourceDefinition, config map[string]any) error
}

// JSONSchemaValidator compiles source schemas and validates configuration maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the source schema.
func (v *JSONSchemaValidator) Validate(def SourceDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	var payload map[string]any
	if config == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("reports: marshal config for %s: %w", def.Kind, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("reports: normalize config for %s: %w", def.Kind, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("reports: configuration for %s failed validation: %w", def.Kind, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def SourceDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Kind]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("reports: marshal schema %s: %w", def.Kind, err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Kind + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("reports: load schema %s: %w", def.Kind, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("reports: compile schema %s: %w", def.Kind, err)
	}
	v.mu.Lock()
	v.compiled[def.Kind] = compiled
	v.mu.Unlock()
	return compiled, nil
}
