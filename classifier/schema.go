package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"phishguard/features"
)

// Schema is the ordered list of feature names the model was trained on.
type Schema struct {
	names []string
	order []features.Feature // schema position -> feature
}

// LoadSchema reads a JSON array of feature names from path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	return NewSchema(names)
}

// NewSchema validates names against the extractor's feature set: exactly
// features.NumFeatures entries, every one known, none repeated.
func NewSchema(names []string) (*Schema, error) {
	if len(names) != int(features.NumFeatures) {
		return nil, fmt.Errorf("%w: %d names, want %d", ErrSchema, len(names), features.NumFeatures)
	}

	seen := make(map[features.Feature]bool, len(names))
	order := make([]features.Feature, len(names))
	for i, name := range names {
		f, ok := features.ByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q at position %d", ErrSchema, name, i)
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrSchema, name)
		}
		seen[f] = true
		order[i] = f
	}

	return &Schema{names: append([]string(nil), names...), order: order}, nil
}

// DefaultSchema is the schema in extraction order.
func DefaultSchema() *Schema {
	s, _ := NewSchema(features.Names())
	return s
}

func (s *Schema) Names() []string { return append([]string(nil), s.names...) }

func (s *Schema) Len() int { return len(s.names) }

// Assemble lays out values (indexed by features.Feature) in schema order.
func (s *Schema) Assemble(values [features.NumFeatures]float64) Vector {
	out := make([]float64, len(s.order))
	for i, f := range s.order {
		out[i] = values[f]
	}
	return Vector{schema: s, values: out}
}

// Features returns the features in schema order.
func (s *Schema) Features() []features.Feature {
	return append([]features.Feature(nil), s.order...)
}
