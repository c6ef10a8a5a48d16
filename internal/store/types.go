package store

import (
	"time"

	"charnnections/internal/attr"
)

type Entity struct {
	ID         int64
	Name       string
	Series     string
	ImageURL   string
	Attributes map[string]attr.Value
}

func (e Entity) Ref() CharacterRef {
	return CharacterRef{ID: e.ID, Name: e.Name, Series: e.Series, ImageURL: e.ImageURL}
}

type CharacterRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Series   string `json:"series"`
	ImageURL string `json:"imageUrl"`
}

type PuzzleGroup struct {
	Trait      string         `json:"trait"`
	TraitValue attr.Value     `json:"traitValue"`
	Difficulty int            `json:"difficulty"`
	Characters []CharacterRef `json:"characters"`
}

func (g PuzzleGroup) IDs() []int64 {
	ids := make([]int64, len(g.Characters))
	for i, c := range g.Characters {
		ids[i] = c.ID
	}
	return ids
}

type DailyPuzzle struct {
	ID        string        `json:"id"`
	Date      string        `json:"date"`
	Groups    []PuzzleGroup `json:"groups"`
	CreatedAt time.Time     `json:"createdAt"`
}

type AttributeStandard struct {
	Canonical  string   `json:"canonical" yaml:"canonical"`
	Type       string   `json:"type" yaml:"type"`
	Category   string   `json:"category" yaml:"category"`
	Difficulty int      `json:"difficulty" yaml:"difficulty"`
	Examples   []string `json:"examples" yaml:"examples"`
}
