package reports

// SourceKindQuestion resolves a saved question/visualization by id.
const SourceKindQuestion = "question"

// SourceKindDataset resolves an ad-hoc native or structured query payload.
const SourceKindDataset = "dataset"

// DefaultSourceDefinitions returns the builtin source kinds every registry
// starts with. The schemas constrain per-mapping configuration.
func DefaultSourceDefinitions() []SourceDefinition {
	return []SourceDefinition{
		{
			Kind:        SourceKindQuestion,
			Name:        "Saved Question",
			Description: "Executes a saved question by its identifier.",
			Schema:      mappingConfigSchema(),
		},
		{
			Kind:        SourceKindDataset,
			Name:        "Ad-hoc Dataset",
			Description: "Executes a native or structured query payload.",
			Schema:      mappingConfigSchema(),
		},
	}
}

func mappingConfigSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"includeHeader": map[string]any{
				"type": "boolean",
			},
			"headerLabels": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"columns": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"oneOf": []any{
						map[string]any{
							"type":      "string",
							"minLength": 1,
						},
						map[string]any{
							"type":                 "object",
							"additionalProperties": false,
							"required":             []any{"column"},
							"properties": map[string]any{
								"column": map[string]any{"type": "string", "minLength": 1},
								"label":  map[string]any{"type": "string"},
								"format": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
			"chartType": map[string]any{
				"type": "string",
				"enum": []any{"bar", "line", "pie"},
			},
			"maxRows": map[string]any{
				"type":    "integer",
				"minimum": 1,
			},
		},
	}
}
