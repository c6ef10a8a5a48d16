package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"charnnections/internal/config"
	"charnnections/internal/store"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertEntity(ctx context.Context, e store.Entity) error
	UpsertStandard(ctx context.Context, s store.AttributeStandard) error
}

type Result struct {
	FilesRead          int
	FilesSkipped       int
	CharactersUpserted int
	StandardsUpserted  int
	// UnknownAttributes lists attribute keys that have no standard, sorted.
	UnknownAttributes []string
	Errors            []error
}

type Options struct {
	Standards *config.Standards
	Exclude   []string
}

// Run upserts the standards table and every character found under roots.
// Per-file problems are collected in Result.Errors; only schema and standards
// failures abort the run.
func Run(ctx context.Context, db Store, roots []string, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	result := &Result{}
	if options.Standards != nil {
		for _, std := range options.Standards.Attributes {
			if err := db.UpsertStandard(ctx, std); err != nil {
				return nil, fmt.Errorf("upserting standard %s: %w", std.Canonical, err)
			}
			result.StandardsUpserted++
		}
	}

	files, err := walkCorpusFiles(roots, options.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking corpus files: %w", err)
	}

	unknown := make(map[string]struct{})
	owners := make(map[int64]string)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := ParseFile(path)
		if err != nil {
			if errors.Is(err, ErrNoCharacters) {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}
		result.FilesRead++

		for _, character := range doc.Characters {
			if first, ok := owners[character.ID]; ok {
				result.Errors = append(result.Errors, fmt.Errorf("character %d in %s already defined in %s", character.ID, path, first))
				continue
			}
			owners[character.ID] = path

			if err := db.UpsertEntity(ctx, character); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("upserting character %d from %s: %w", character.ID, path, err))
				continue
			}
			result.CharactersUpserted++

			if options.Standards == nil {
				continue
			}
			for key := range character.Attributes {
				if _, ok := options.Standards.ByCanonical(key); !ok {
					unknown[key] = struct{}{}
				}
			}
		}
	}

	for key := range unknown {
		result.UnknownAttributes = append(result.UnknownAttributes, key)
	}
	sort.Strings(result.UnknownAttributes)

	return result, nil
}

func walkCorpusFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isCorpusFile(d.Name()) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isCorpusFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
