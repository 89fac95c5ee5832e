package weights

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Package-level validator instance for document validation.
var validate = validator.New()

// Document is the named, versioned weight configuration read from a
// weight source. Preset values use raw string keys; the resolver filters
// them against the canonical feature-code set at load time.
type Document struct {
	// Version identifies the document revision for observability.
	Version string `yaml:"version" validate:"required"`

	// Presets maps preset names to feature-code weight mappings.
	Presets map[string]map[string]float64 `yaml:"presets" validate:"required,min=1"`
}

// Source provides weight documents to the resolver, at startup and on
// demand for preset reload.
type Source interface {
	Load(ctx context.Context) (Document, error)
}

var _ Source = (*FileSource)(nil)

// FileSource reads a YAML weight document from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed weight source.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("weight file path cannot be empty")
	}
	return &FileSource{path: path}, nil
}

// Load implements Source. It rejects structurally invalid documents and
// negative weights; unrecognized feature keys are left for the resolver
// to drop so the same filtering applies to every source implementation.
func (s *FileSource) Load(_ context.Context) (Document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, fmt.Errorf("reading weight file %s: %w", s.path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("parsing weight file %s: %w", s.path, err)
	}

	if err := validate.Struct(doc); err != nil {
		return Document{}, fmt.Errorf("invalid weight document %s: %w", s.path, err)
	}

	for preset, mapping := range doc.Presets {
		for key, val := range mapping {
			if val < 0 {
				return Document{}, fmt.Errorf("preset %s: weight %s is negative", preset, key)
			}
		}
	}
	return doc, nil
}
