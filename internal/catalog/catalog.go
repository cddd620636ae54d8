// Package catalog provides the built-in template catalog: templates embedded
// in the binary, optionally extended by a user YAML file.
package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"
)

//go:embed data/templates.yaml
var builtinTemplates []byte

// Builtin serves the embedded catalog merged with a user overlay file
type Builtin struct {
	overlayPath string
	logger      *slog.Logger
}

// NewBuiltin creates a catalog source; overlayPath may be empty
func NewBuiltin(overlayPath string, logger *slog.Logger) *Builtin {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builtin{overlayPath: overlayPath, logger: logger}
}

// FetchTemplates returns the embedded templates with the overlay applied
// A missing overlay is ignored; a broken one is logged and skipped.
func (b *Builtin) FetchTemplates(ctx context.Context) (store.TemplateCatalog, error) {
	base, err := Parse(builtinTemplates)
	if err != nil {
		return store.TemplateCatalog{}, fmt.Errorf("embedded catalog: %w", err)
	}

	if b.overlayPath == "" {
		return base, nil
	}

	overlay, err := LoadFile(b.overlayPath)
	if errors.Is(err, os.ErrNotExist) {
		b.logger.Debug("no template overlay", "path", b.overlayPath)
		return base, nil
	}
	if err != nil {
		b.logger.Warn("ignoring template overlay", "path", b.overlayPath, "error", err)
		return base, nil
	}

	b.logger.Debug("applied template overlay", "path", b.overlayPath, "templates", len(overlay.Templates))
	return Merge(base, overlay), nil
}

// Embedded returns the embedded catalog without any overlay
func Embedded() (store.TemplateCatalog, error) {
	return Parse(builtinTemplates)
}

// Parse decodes and validates a YAML catalog document
func Parse(data []byte) (store.TemplateCatalog, error) {
	var catalog store.TemplateCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return catalog, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Templates))
	for _, t := range catalog.Templates {
		if t.ID == "" {
			return catalog, fmt.Errorf("template %q has no id", t.Name)
		}
		if seen[t.ID] {
			return catalog, fmt.Errorf("duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
		if err := prompt.ValidateTemplate(t); err != nil {
			return catalog, fmt.Errorf("template %s: %w", t.ID, err)
		}
	}

	return catalog, nil
}

// LoadFile reads a YAML catalog document from path
func LoadFile(path string) (store.TemplateCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.TemplateCatalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Merge applies overlay to base: entries with a known id replace the base
// entry in place, new ones are appended
func Merge(base, overlay store.TemplateCatalog) store.TemplateCatalog {
	merged := store.TemplateCatalog{
		Templates:  append([]prompt.Template(nil), base.Templates...),
		Categories: append([]prompt.Category(nil), base.Categories...),
	}

	templateIndex := make(map[string]int, len(merged.Templates))
	for i, t := range merged.Templates {
		templateIndex[t.ID] = i
	}
	for _, t := range overlay.Templates {
		if i, ok := templateIndex[t.ID]; ok {
			merged.Templates[i] = t
			continue
		}
		templateIndex[t.ID] = len(merged.Templates)
		merged.Templates = append(merged.Templates, t)
	}

	categoryIndex := make(map[string]int, len(merged.Categories))
	for i, c := range merged.Categories {
		categoryIndex[c.ID] = i
	}
	for _, c := range overlay.Categories {
		if i, ok := categoryIndex[c.ID]; ok {
			merged.Categories[i] = c
			continue
		}
		categoryIndex[c.ID] = len(merged.Categories)
		merged.Categories = append(merged.Categories, c)
	}

	return merged
}
