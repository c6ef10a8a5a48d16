// Package corpus loads character files into the store.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"charnnections/internal/attr"
	"charnnections/internal/store"
)

var (
	ErrNoCharacters = errors.New("file has no characters")
	ErrInvalidYAML  = errors.New("invalid YAML in corpus file")
	ErrMissingID    = errors.New("character missing required 'id' field")
	ErrMissingName  = errors.New("character missing required 'name' field")
)

type Document struct {
	Characters []store.Entity
	SourceFile string
}

type fileCharacter struct {
	ID         int64                 `yaml:"id"`
	Name       string                `yaml:"name"`
	Series     string                `yaml:"series"`
	Image      string                `yaml:"image"`
	Attributes map[string]attr.Value `yaml:"attributes"`
}

type file struct {
	Series     string          `yaml:"series"`
	Characters []fileCharacter `yaml:"characters"`
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

// Parse decodes one corpus file. A top-level series applies to every
// character that does not name its own.
func Parse(content []byte) (*Document, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	var f file
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if len(f.Characters) == 0 {
		return nil, ErrNoCharacters
	}

	doc := &Document{Characters: make([]store.Entity, 0, len(f.Characters))}
	seen := make(map[int64]struct{}, len(f.Characters))
	for i, c := range f.Characters {
		if c.ID <= 0 {
			return nil, fmt.Errorf("character %d: %w", i, ErrMissingID)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("character %d: duplicate id %d", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("character %d: %w", c.ID, ErrMissingName)
		}

		attributes, err := normalizeAttributes(c.Attributes)
		if err != nil {
			return nil, fmt.Errorf("character %d: %w", c.ID, err)
		}

		series := strings.TrimSpace(c.Series)
		if series == "" {
			series = strings.TrimSpace(f.Series)
		}

		doc.Characters = append(doc.Characters, store.Entity{
			ID:         c.ID,
			Name:       name,
			Series:     series,
			ImageURL:   strings.TrimSpace(c.Image),
			Attributes: attributes,
		})
	}
	return doc, nil
}

func normalizeAttributes(in map[string]attr.Value) (map[string]attr.Value, error) {
	out := make(map[string]attr.Value, len(in))
	for key, value := range in {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return nil, fmt.Errorf("attribute with empty key")
		}
		if value.IsZero() {
			return nil, fmt.Errorf("attribute %s has no value", trimmed)
		}
		if _, exists := out[trimmed]; exists {
			return nil, fmt.Errorf("duplicate attribute: %s", trimmed)
		}
		out[trimmed] = value
	}
	return out, nil
}
