package reports

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ReportManifestDocument models a YAML manifest describing a report: the
// template file it is built from and the data-source mappings to apply. It
// drives offline generation from the CLI.
type ReportManifestDocument struct {
	Version     string            `json:"version" yaml:"version"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Template    string            `json:"template" yaml:"template"`
	Mappings    []ManifestMapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Source      string            `json:"-" yaml:"-"`
}

// ManifestMapping binds one placeholder id to a data source.
type ManifestMapping struct {
	Placeholder string         `json:"placeholder" yaml:"placeholder"`
	Kind        string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	SourceID    string         `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	Query       map[string]any `json:"query,omitempty" yaml:"query,omitempty"`
	Config      map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*ReportManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reports: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("reports: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ReportManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ReportManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("reports: manifest is empty")
		}
		return nil, fmt.Errorf("reports: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ReportManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("reports: unsupported manifest version %q", doc.Version)
	}
	if doc.Name == "" {
		return fmt.Errorf("reports: manifest is missing name")
	}
	if doc.Template == "" {
		return fmt.Errorf("reports: manifest is missing template path")
	}
	seen := make(map[string]struct{}, len(doc.Mappings))
	for idx, mapping := range doc.Mappings {
		if mapping.Placeholder == "" {
			return fmt.Errorf("reports: manifest mapping at index %d is missing placeholder", idx)
		}
		if mapping.SourceID == "" && len(mapping.Query) == 0 {
			return fmt.Errorf("reports: manifest mapping %s needs source_id or query", mapping.Placeholder)
		}
		if _, exists := seen[mapping.Placeholder]; exists {
			return fmt.Errorf("reports: manifest duplicates placeholder %s", mapping.Placeholder)
		}
		seen[mapping.Placeholder] = struct{}{}
	}
	return nil
}

// MappingSet converts the manifest entries into the engine's mapping form.
func (doc *ReportManifestDocument) MappingSet() MappingSet {
	if len(doc.Mappings) == 0 {
		return MappingSet{}
	}
	out := make(MappingSet, len(doc.Mappings))
	for _, mapping := range doc.Mappings {
		kind := mapping.Kind
		if kind == "" {
			if len(mapping.Query) > 0 {
				kind = SourceKindDataset
			} else {
				kind = SourceKindQuestion
			}
		}
		out[mapping.Placeholder] = Mapping{
			PlaceholderID: mapping.Placeholder,
			Source: QueryDescriptor{
				SourceKind: kind,
				SourceID:   mapping.SourceID,
				Query:      mapping.Query,
			},
			Config: mapping.Config,
		}
	}
	return out
}

func (doc *ReportManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
