package mcp

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"charnnections/internal/index"
	"charnnections/internal/store"
)

type GetTodayInput struct{}

type CheckGuessInput struct {
	PuzzleID string  `json:"puzzle_id" jsonschema:"id of the puzzle being played"`
	IDs      []int64 `json:"ids" jsonschema:"exactly four character ids"`
}

type GetSolutionInput struct {
	PuzzleID string `json:"puzzle_id" jsonschema:"id of the puzzle to reveal"`
}

type GetStandardsInput struct{}

type IndexStatsInput struct {
	Top int `json:"top,omitempty" jsonschema:"number of largest eligible pairs to list"`
}

type CharacterOutput struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Series string `json:"series"`
	Image  string `json:"image,omitempty"`
}

type BoardOutput struct {
	PuzzleID   string            `json:"puzzle_id"`
	Date       string            `json:"date"`
	Characters []CharacterOutput `json:"characters"`
}

type GroupOutput struct {
	Trait      string            `json:"trait"`
	Value      string            `json:"value"`
	Difficulty int               `json:"difficulty"`
	Characters []CharacterOutput `json:"characters"`
}

type CheckGuessOutput struct {
	Correct bool         `json:"correct"`
	Group   *GroupOutput `json:"group,omitempty"`
}

type SolutionOutput struct {
	PuzzleID string        `json:"puzzle_id"`
	Date     string        `json:"date"`
	Groups   []GroupOutput `json:"groups"`
}

type StandardOutput struct {
	Canonical  string   `json:"canonical"`
	Type       string   `json:"type"`
	Category   string   `json:"category,omitempty"`
	Difficulty int      `json:"difficulty,omitempty"`
	Examples   []string `json:"examples,omitempty"`
}

type StandardsOutput struct {
	Attributes []StandardOutput `json:"attributes"`
}

type PairOutput struct {
	Trait      string `json:"trait"`
	Value      string `json:"value"`
	Characters int    `json:"characters"`
}

type IndexStatsOutput struct {
	Characters        int          `json:"characters"`
	WithAttributes    int          `json:"with_attributes"`
	WithoutAttributes int          `json:"without_attributes"`
	UniquePairs       int          `json:"unique_pairs"`
	EligiblePairs     int          `json:"eligible_pairs"`
	Top               []PairOutput `json:"top"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_today",
		Description: "Return today's board: the puzzle id and its sixteen characters, ordered by name",
	}, s.handleGetToday)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "check_guess",
		Description: "Check whether four characters form one of the puzzle's groups",
	}, s.handleCheckGuess)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_solution",
		Description: "Reveal every group of a puzzle",
	}, s.handleGetSolution)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_standards",
		Description: "Return the attribute standards table",
	}, s.handleGetStandards)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "index_stats",
		Description: "Summarize the attribute index used to generate puzzles",
	}, s.handleIndexStats)
}

func (s *Server) handleGetToday(ctx context.Context, req *sdk.CallToolRequest, input GetTodayInput) (*sdk.CallToolResult, BoardOutput, error) {
	p, err := s.puzzles.Today(ctx)
	if err != nil {
		return nil, BoardOutput{}, err
	}

	characters := make([]CharacterOutput, 0, 16)
	for _, g := range p.Groups {
		for _, c := range g.Characters {
			characters = append(characters, characterOutput(c))
		}
	}
	sort.Slice(characters, func(i, j int) bool {
		if characters[i].Name != characters[j].Name {
			return characters[i].Name < characters[j].Name
		}
		return characters[i].ID < characters[j].ID
	})
	return nil, BoardOutput{PuzzleID: p.ID, Date: p.Date, Characters: characters}, nil
}

func (s *Server) handleCheckGuess(ctx context.Context, req *sdk.CallToolRequest, input CheckGuessInput) (*sdk.CallToolResult, CheckGuessOutput, error) {
	if input.PuzzleID == "" {
		return nil, CheckGuessOutput{}, fmt.Errorf("puzzle_id is required")
	}
	verdict, err := s.puzzles.CheckGuess(ctx, input.PuzzleID, input.IDs)
	if err != nil {
		return nil, CheckGuessOutput{}, err
	}
	if !verdict.Correct {
		return nil, CheckGuessOutput{}, nil
	}
	group := groupOutput(*verdict.Group)
	return nil, CheckGuessOutput{Correct: true, Group: &group}, nil
}

func (s *Server) handleGetSolution(ctx context.Context, req *sdk.CallToolRequest, input GetSolutionInput) (*sdk.CallToolResult, SolutionOutput, error) {
	if input.PuzzleID == "" {
		return nil, SolutionOutput{}, fmt.Errorf("puzzle_id is required")
	}
	p, err := s.puzzles.Solution(ctx, input.PuzzleID)
	if err != nil {
		return nil, SolutionOutput{}, err
	}

	groups := make([]GroupOutput, 0, len(p.Groups))
	for _, g := range p.Groups {
		groups = append(groups, groupOutput(g))
	}
	return nil, SolutionOutput{PuzzleID: p.ID, Date: p.Date, Groups: groups}, nil
}

func (s *Server) handleGetStandards(ctx context.Context, req *sdk.CallToolRequest, input GetStandardsInput) (*sdk.CallToolResult, StandardsOutput, error) {
	if s.standards == nil {
		return nil, StandardsOutput{Attributes: []StandardOutput{}}, nil
	}
	standards, err := s.standards.ListStandards(ctx)
	if err != nil {
		return nil, StandardsOutput{}, err
	}
	return nil, standardsOutput(standards), nil
}

func (s *Server) handleIndexStats(ctx context.Context, req *sdk.CallToolRequest, input IndexStatsInput) (*sdk.CallToolResult, IndexStatsOutput, error) {
	if s.indexes == nil {
		return nil, IndexStatsOutput{}, fmt.Errorf("index is not available")
	}
	idx, err := s.indexes.Get(ctx)
	if err != nil {
		return nil, IndexStatsOutput{}, err
	}

	top := input.Top
	if top <= 0 {
		top = 10
	}
	return nil, indexStatsOutput(idx, top), nil
}

func standardsOutput(standards []store.AttributeStandard) StandardsOutput {
	out := StandardsOutput{Attributes: make([]StandardOutput, 0, len(standards))}
	for _, std := range standards {
		out.Attributes = append(out.Attributes, StandardOutput{
			Canonical:  std.Canonical,
			Type:       std.Type,
			Category:   std.Category,
			Difficulty: std.Difficulty,
			Examples:   append([]string{}, std.Examples...),
		})
	}
	return out
}

func indexStatsOutput(idx *index.Index, top int) IndexStatsOutput {
	stats := idx.Stats()
	out := IndexStatsOutput{
		Characters:        stats.EntitiesScanned,
		WithAttributes:    stats.WithAttributes,
		WithoutAttributes: stats.WithoutAttributes,
		UniquePairs:       stats.UniquePairs,
		EligiblePairs:     stats.EligiblePairs,
		Top:               []PairOutput{},
	}
	for _, entry := range idx.Top(top) {
		out.Top = append(out.Top, PairOutput{
			Trait:      entry.Key,
			Value:      entry.Value.String(),
			Characters: len(entry.Characters),
		})
	}
	return out
}

func groupOutput(g store.PuzzleGroup) GroupOutput {
	characters := make([]CharacterOutput, 0, len(g.Characters))
	for _, c := range g.Characters {
		characters = append(characters, characterOutput(c))
	}
	return GroupOutput{
		Trait:      g.Trait,
		Value:      g.TraitValue.String(),
		Difficulty: g.Difficulty,
		Characters: characters,
	}
}

func characterOutput(c store.CharacterRef) CharacterOutput {
	return CharacterOutput{ID: c.ID, Name: c.Name, Series: c.Series, Image: c.ImageURL}
}
