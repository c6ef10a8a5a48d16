package puzzle

import (
	"context"
	"fmt"
	"math/rand/v2"

	"charnnections/internal/attr"
	"charnnections/internal/index"
	"charnnections/internal/store"
)

type staticIndex struct {
	idx *index.Index
	err error
}

func (s staticIndex) Get(context.Context) (*index.Index, error) { return s.idx, s.err }

type mapStandards map[string]int

func (m mapStandards) DifficultyFor(_ context.Context, canonical string) (int, bool, error) {
	d, ok := m[canonical]
	return d, ok, nil
}

func seeded(seed uint64) func() *rand.Rand {
	return func() *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func character(id int64, attrs map[string]attr.Value) store.Entity {
	return store.Entity{
		ID:         id,
		Name:       fmt.Sprintf("Character %d", id),
		Series:     "Naruto",
		Attributes: attrs,
	}
}

// leafCorpus holds ("affiliation","Leaf") on 1..5 plus three disjoint pairs
// with four holders each.
func leafCorpus() []store.Entity {
	var entities []store.Entity
	for id := int64(1); id <= 5; id++ {
		entities = append(entities, character(id, map[string]attr.Value{
			"affiliation": attr.String("Leaf"),
		}))
	}
	others := []struct {
		key   string
		value attr.Value
	}{
		{"gender", attr.String("female")},
		{"age", attr.Number(16)},
		{"isHuman", attr.Bool(false)},
	}
	next := int64(6)
	for _, o := range others {
		for i := 0; i < 4; i++ {
			entities = append(entities, character(next, map[string]attr.Value{o.key: o.value}))
			next++
		}
	}
	return entities
}

// sparseCorpus has exactly three eligible pairs.
func sparseCorpus() []store.Entity {
	var entities []store.Entity
	for g, key := range []string{"affiliation", "gender", "clan"} {
		for i := 0; i < 5; i++ {
			id := int64(g*5 + i + 1)
			entities = append(entities, character(id, map[string]attr.Value{key: attr.String("x")}))
		}
	}
	entities = append(entities, character(100, map[string]attr.Value{"rank": attr.String("kage")}))
	return entities
}

// curatedGroups returns inputs for four groups over ids 1..16.
func curatedGroups() []GroupInput {
	traits := []string{"affiliation", "gender", "age", "isHuman"}
	values := []attr.Value{attr.String("Leaf"), attr.String("female"), attr.Number(16), attr.Bool(false)}
	inputs := make([]GroupInput, 4)
	for g := range inputs {
		inputs[g] = GroupInput{Trait: traits[g], TraitValue: values[g], Difficulty: g + 1}
		for i := 0; i < 4; i++ {
			inputs[g].IDs = append(inputs[g].IDs, int64(g*4+i+1))
		}
	}
	return inputs
}
