package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"charnnections/internal/index"
	"charnnections/internal/store"
)

// Corpus reports whether the stored characters can feed the generator.
func Corpus(ctx context.Context, entities index.EntityLister, standards store.StandardsLookup) (*Report, error) {
	if entities == nil {
		return nil, fmt.Errorf("entity store is required")
	}

	all, err := entities.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	report := &Report{}
	for _, e := range all {
		entity := fmt.Sprintf("%d", e.ID)
		if strings.TrimSpace(e.Name) == "" {
			report.add(SeverityWarn, codeUnnamedCharacter, 0, entity, "character %d has no name", e.ID)
		}
		if len(e.Attributes) == 0 {
			report.add(SeverityWarn, codeNoAttributes, 0, entity, "character %d has no attributes", e.ID)
		}
	}

	idx := index.Build(all)
	eligible := idx.Eligible()
	keys := distinctKeys(eligible)
	if len(keys) < GroupCount {
		report.add(SeverityError, codeSparseIndex, 0, "",
			"only %d distinct traits have %d or more characters, need %d", len(keys), index.MinGroupSize, GroupCount)
	}

	if standards == nil {
		return report, nil
	}
	for _, key := range keys {
		_, ok, err := standards.DifficultyFor(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("look up standard %s: %w", key, err)
		}
		if !ok {
			report.add(SeverityWarn, codeMissingStandard, 0, "", "trait %q has no attribute standard, default difficulty applies", key)
		}
	}
	return report, nil
}

func distinctKeys(entries []*index.Entry) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, entry := range entries {
		if _, ok := seen[entry.Key]; ok {
			continue
		}
		seen[entry.Key] = struct{}{}
		keys = append(keys, entry.Key)
	}
	sort.Strings(keys)
	return keys
}
