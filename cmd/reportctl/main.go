package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	reports "github.com/goliatone/go-excel-reports/components/reports"
	"github.com/goliatone/go-excel-reports/pkg/metabase"
)

type cli struct {
	Scan     scanCmd     `cmd:"" help:"Scan a template workbook for placeholders and optionally scaffold a manifest."`
	Validate validateCmd `cmd:"" help:"Validate a report manifest against its template."`
	Generate generateCmd `cmd:"" help:"Generate a populated workbook from a manifest."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Report template utility for placeholder scanning and offline generation."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

type scanCmd struct {
	Template     string `arg:"" required:"" type:"path" help:"Path to the .xlsx template."`
	ManifestPath string `name:"manifest" type:"path" help:"Optional manifest YAML to create or extend with mapping stubs."`
	Name         string `help:"Report name recorded in the manifest (defaults to the template file name)."`
	Overwrite    bool   `help:"Replace existing manifest mappings for rediscovered placeholders."`
}

func (cmd *scanCmd) Run(_ context.Context) error {
	placeholders, err := scanTemplate(cmd.Template)
	if err != nil {
		return err
	}
	if len(placeholders) == 0 {
		fmt.Fprintln(os.Stdout, "no placeholders found")
	}
	for _, ph := range placeholders {
		fmt.Fprintf(os.Stdout, "%-28s %-6s %-20s %s!%s\n", ph.ID, ph.Type, ph.Name, ph.Sheet, ph.Cell)
	}
	if cmd.ManifestPath == "" {
		return nil
	}

	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("reportctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath, cmd.manifestName(), cmd.Template)
	if err != nil {
		return err
	}
	existing := make(map[string]int, len(doc.Mappings))
	for idx, mapping := range doc.Mappings {
		existing[mapping.Placeholder] = idx
	}
	added := 0
	for _, ph := range placeholders {
		stub := reports.ManifestMapping{
			Placeholder: ph.ID,
			Kind:        reports.SourceKindQuestion,
			SourceID:    "CHANGEME",
		}
		if idx, ok := existing[ph.ID]; ok {
			if cmd.Overwrite {
				doc.Mappings[idx] = stub
			}
			continue
		}
		doc.Mappings = append(doc.Mappings, stub)
		added++
	}
	sort.Slice(doc.Mappings, func(i, j int) bool {
		return doc.Mappings[i].Placeholder < doc.Mappings[j].Placeholder
	})
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %d placeholder(s) recorded in %s (%d new)\n", len(placeholders), manifestPath, added)
	return nil
}

func (cmd *scanCmd) manifestName() string {
	if cmd.Name != "" {
		return cmd.Name
	}
	base := strings.TrimSuffix(filepath.Base(cmd.Template), filepath.Ext(cmd.Template))
	return strcase.ToCase(base, strcase.TitleCase, ' ')
}

type validateCmd struct {
	ManifestPath string `arg:"" required:"" name:"manifest" type:"path" help:"Path to the manifest YAML."`
}

func (cmd *validateCmd) Run(_ context.Context) error {
	doc, err := reports.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	placeholders, err := scanTemplate(templatePathFor(doc))
	if err != nil {
		return err
	}
	mappings := doc.MappingSet()
	missing := reports.MissingMappings(placeholders, mappings)
	stale := reports.StaleMappings(placeholders, mappings)
	for _, id := range missing {
		fmt.Fprintf(os.Stdout, "unmapped: %s\n", id)
	}
	for _, id := range stale {
		fmt.Fprintf(os.Stdout, "stale mapping: %s\n", id)
	}
	if len(missing) == 0 && len(stale) == 0 {
		fmt.Fprintf(os.Stdout, "✓ %s maps all %d placeholder(s)\n", cmd.ManifestPath, len(placeholders))
	}
	return nil
}

type generateCmd struct {
	ManifestPath string `arg:"" required:"" name:"manifest" type:"path" help:"Path to the manifest YAML."`
	Out          string `type:"path" help:"Output file path (defaults to the sanitized report name)."`
	MetabaseURL  string `name:"metabase-url" env:"METABASE_URL" help:"Base URL of the Metabase instance."`
	APIKey       string `name:"api-key" env:"METABASE_API_KEY" help:"API key for the Metabase instance."`
	Workers      int    `default:"4" help:"Concurrent query resolution workers."`
}

func (cmd *generateCmd) Run(ctx context.Context) error {
	if cmd.MetabaseURL == "" {
		return errors.New("reportctl: --metabase-url is required to resolve mappings")
	}
	doc, err := reports.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	templatePath := templatePathFor(doc)
	content, err := os.ReadFile(templatePath) //nolint:gosec
	if err != nil {
		return fmt.Errorf("reportctl: read template %s: %w", templatePath, err)
	}
	structure, err := reports.ParseTemplate(content)
	if err != nil {
		return err
	}

	client, err := metabase.NewHTTPClient(metabase.HTTPConfig{
		BaseURL: cmd.MetabaseURL,
		APIKey:  cmd.APIKey,
	})
	if err != nil {
		return err
	}
	service := reports.NewService(reports.Options{
		Store:          reports.NewMemoryReportStore(),
		Executor:       metabase.NewQueryExecutor(client),
		ResolveWorkers: cmd.Workers,
	})

	record := reports.ReportRecord{
		ID:           "manifest",
		Name:         doc.Name,
		Description:  doc.Description,
		TemplateFile: content,
		Structure:    structure,
		Placeholders: reports.ScanPlaceholders(structure),
		Mappings:     doc.MappingSet(),
	}
	result, err := service.GenerateRecord(ctx, record)
	if err != nil {
		return err
	}

	out := cmd.Out
	if out == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, result.Content, 0o644); err != nil {
		return fmt.Errorf("reportctl: write output %s: %w", out, err)
	}
	if len(result.Failures) > 0 {
		for _, failure := range result.Failures {
			fmt.Fprintf(os.Stderr, "placeholder %s failed: %s\n", failure.PlaceholderID, failure.Error)
		}
		fmt.Fprintf(os.Stdout, "✓ wrote %s with %d failed placeholder(s)\n", out, len(result.Failures))
		return nil
	}
	fmt.Fprintf(os.Stdout, "✓ wrote %s\n", out)
	return nil
}

func scanTemplate(path string) ([]reports.Placeholder, error) {
	content, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reportctl: read template %s: %w", path, err)
	}
	structure, err := reports.ParseTemplate(content)
	if err != nil {
		return nil, err
	}
	return reports.ScanPlaceholders(structure), nil
}

// templatePathFor resolves the template relative to the manifest location.
func templatePathFor(doc *reports.ReportManifestDocument) string {
	if filepath.IsAbs(doc.Template) || doc.Source == "" {
		return doc.Template
	}
	return filepath.Join(filepath.Dir(doc.Source), doc.Template)
}

func loadOrInitManifest(path, name, template string) (*reports.ReportManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &reports.ReportManifestDocument{
				Version:  reports.ManifestVersion,
				Name:     name,
				Template: template,
				Source:   path,
			}, nil
		}
		return nil, fmt.Errorf("reportctl: stat manifest: %w", err)
	}
	return reports.ReadManifest(path)
}

func writeManifest(path string, doc *reports.ReportManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("reportctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("reportctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("reportctl: write manifest: %w", err)
	}
	return nil
}
