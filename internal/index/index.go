// Package index builds and caches the inverted index from attribute pairs to
// the characters holding them.
package index

import (
	"sort"

	"charnnections/internal/attr"
	"charnnections/internal/store"
)

// MinGroupSize is the number of holders a pair needs to form a puzzle group.
const MinGroupSize = 4

type Pair struct {
	Key   string
	Value attr.Value
}

type Entry struct {
	Key        string
	Value      attr.Value
	Characters []store.CharacterRef
}

func (e *Entry) Pair() Pair { return Pair{Key: e.Key, Value: e.Value} }

// Index is immutable once built.
type Index struct {
	entries []*Entry
	byPair  map[Pair]*Entry
	stats   Stats
}

type Stats struct {
	EntitiesScanned   int
	WithAttributes    int
	WithoutAttributes int
	AttributesSeen    int
	UniquePairs       int
	EligiblePairs     int
}

// Build scans entities once. Entries keep first-encounter order and their
// character lists follow entity scan order.
func Build(entities []store.Entity) *Index {
	idx := &Index{byPair: make(map[Pair]*Entry)}
	idx.stats.EntitiesScanned = len(entities)

	for _, e := range entities {
		if len(e.Attributes) == 0 {
			idx.stats.WithoutAttributes++
			continue
		}
		idx.stats.WithAttributes++

		keys := make([]string, 0, len(e.Attributes))
		for key := range e.Attributes {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		ref := e.Ref()
		for _, key := range keys {
			idx.stats.AttributesSeen++
			pair := Pair{Key: key, Value: e.Attributes[key]}
			entry, ok := idx.byPair[pair]
			if !ok {
				entry = &Entry{Key: key, Value: pair.Value}
				idx.byPair[pair] = entry
				idx.entries = append(idx.entries, entry)
			}
			entry.Characters = append(entry.Characters, ref)
		}
	}

	idx.stats.UniquePairs = len(idx.entries)
	for _, entry := range idx.entries {
		if len(entry.Characters) >= MinGroupSize {
			idx.stats.EligiblePairs++
		}
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.entries) }

func (idx *Index) Stats() Stats { return idx.stats }

func (idx *Index) Lookup(key string, value attr.Value) (*Entry, bool) {
	entry, ok := idx.byPair[Pair{Key: key, Value: value}]
	return entry, ok
}

// Entries returns the entries in first-encounter order. Callers must not
// mutate them.
func (idx *Index) Entries() []*Entry { return idx.entries }

// Eligible returns a fresh slice of the entries with at least MinGroupSize
// characters; callers may reorder it.
func (idx *Index) Eligible() []*Entry {
	eligible := make([]*Entry, 0, idx.stats.EligiblePairs)
	for _, entry := range idx.entries {
		if len(entry.Characters) >= MinGroupSize {
			eligible = append(eligible, entry)
		}
	}
	return eligible
}

// Top returns up to n eligible entries with the most holders.
func (idx *Index) Top(n int) []*Entry {
	eligible := idx.Eligible()
	sort.SliceStable(eligible, func(i, j int) bool {
		return len(eligible[i].Characters) > len(eligible[j].Characters)
	})
	if n >= 0 && len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}
