package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStandards(t *testing.T) {
	t.Run("valid standards load", func(t *testing.T) {
		standards, err := LoadStandards(filepath.Join("testdata", "valid_standards.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if standards.Len() != 4 {
			t.Fatalf("expected 4 attributes, got %d", standards.Len())
		}
		affiliation, ok := standards.ByCanonical("affiliation")
		if !ok || affiliation.Difficulty != 1 || len(affiliation.Examples) != 3 {
			t.Fatalf("unexpected affiliation standard: %+v", affiliation)
		}
		hair, ok := standards.ByCanonical("hair_color")
		if !ok || hair.Type != "string" {
			t.Fatalf("expected default string type, got %+v", hair)
		}
		if _, ok := standards.ByCanonical("Affiliation"); ok {
			t.Fatalf("canonical names are case sensitive")
		}
	})

	invalid := map[string]string{
		"no attributes":        "version: 1\nattributes: []\n",
		"bad version":          "version: 3\nattributes:\n  - canonical: age\n",
		"missing canonical":    "version: 1\nattributes:\n  - type: string\n",
		"duplicate canonical":  "version: 1\nattributes:\n  - canonical: age\n  - canonical: ' age '\n",
		"unsupported type":     "version: 1\nattributes:\n  - canonical: age\n    type: date\n",
		"difficulty too large": "version: 1\nattributes:\n  - canonical: age\n    difficulty: 9\n",
		"invalid yaml":         "version: [\n",
	}
	for name, contents := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadStandards(writeTempStandards(t, contents)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	t.Run("nil standards", func(t *testing.T) {
		var s *Standards
		if _, ok := s.ByCanonical("age"); ok {
			t.Fatalf("expected miss on nil standards")
		}
	})
}

func writeTempStandards(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standards.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp standards: %v", err)
	}
	return path
}
