package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"charnnections/internal/store"
)

var attributeTypes = map[string]struct{}{
	"string":  {},
	"number":  {},
	"boolean": {},
}

// Standards is the attribute standards table: canonical trait keys with their
// type, category and puzzle difficulty.
type Standards struct {
	Version    int                       `yaml:"version"`
	Attributes []store.AttributeStandard `yaml:"attributes"`

	index map[string]*store.AttributeStandard
}

func LoadStandards(path string) (*Standards, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading standards: %w", err)
	}

	var standards Standards
	if err := yaml.Unmarshal(data, &standards); err != nil {
		return nil, fmt.Errorf("loading standards: %w", err)
	}

	if err := validateStandards(&standards); err != nil {
		return nil, fmt.Errorf("loading standards: %w", err)
	}

	standards.index = make(map[string]*store.AttributeStandard, len(standards.Attributes))
	for i := range standards.Attributes {
		std := &standards.Attributes[i]
		standards.index[std.Canonical] = std
	}

	return &standards, nil
}

func validateStandards(s *Standards) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.Attributes) == 0 {
		return fmt.Errorf("at least one attribute is required")
	}

	seen := make(map[string]struct{})
	for i := range s.Attributes {
		std := &s.Attributes[i]
		std.Canonical = strings.TrimSpace(std.Canonical)
		if std.Canonical == "" {
			return fmt.Errorf("attribute %d canonical name is required", i)
		}
		if _, exists := seen[std.Canonical]; exists {
			return fmt.Errorf("duplicate attribute: %s", std.Canonical)
		}
		seen[std.Canonical] = struct{}{}

		std.Type = strings.ToLower(strings.TrimSpace(std.Type))
		if std.Type == "" {
			std.Type = "string"
		}
		if _, ok := attributeTypes[std.Type]; !ok {
			return fmt.Errorf("attribute %s has unsupported type: %s", std.Canonical, std.Type)
		}
		if std.Difficulty < 0 || std.Difficulty > 4 {
			return fmt.Errorf("attribute %s difficulty must be between 1 and 4, got %d", std.Canonical, std.Difficulty)
		}
	}

	return nil
}

func (s *Standards) ByCanonical(name string) (*store.AttributeStandard, bool) {
	if s == nil {
		return nil, false
	}
	std, ok := s.index[name]
	return std, ok
}

func (s *Standards) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Attributes)
}
