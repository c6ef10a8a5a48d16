package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"charnnections/internal/attr"
	"charnnections/internal/index"
	"charnnections/internal/puzzle"
	"charnnections/internal/store"
)

type mockPuzzles struct {
	puzzle *store.DailyPuzzle
	err    error

	lastPuzzleID string
	lastIDs      []int64
}

func (m *mockPuzzles) Today(ctx context.Context) (*store.DailyPuzzle, error) {
	return m.puzzle, m.err
}

func (m *mockPuzzles) CheckGuess(ctx context.Context, puzzleID string, ids []int64) (puzzle.Verdict, error) {
	m.lastPuzzleID = puzzleID
	m.lastIDs = ids
	if m.err != nil {
		return puzzle.Verdict{}, m.err
	}
	return puzzle.Check(m.puzzle.Groups, ids)
}

func (m *mockPuzzles) Solution(ctx context.Context, puzzleID string) (*store.DailyPuzzle, error) {
	m.lastPuzzleID = puzzleID
	return m.puzzle, m.err
}

type staticStandards struct {
	standards []store.AttributeStandard
	err       error
}

func (s staticStandards) ListStandards(ctx context.Context) ([]store.AttributeStandard, error) {
	return s.standards, s.err
}

type staticIndex struct {
	idx *index.Index
	err error
}

func (s staticIndex) Get(ctx context.Context) (*index.Index, error) { return s.idx, s.err }

func testPuzzle() *store.DailyPuzzle {
	p := &store.DailyPuzzle{ID: "puzzle-1", Date: "2024-01-01"}
	names := []string{"Zabuza", "Haku", "Itachi", "Kisame"}
	for g, trait := range []string{"affiliation", "age", "isHuman", "clan"} {
		group := store.PuzzleGroup{Trait: trait, TraitValue: attr.Number(float64(g)), Difficulty: 3}
		for i := 0; i < 4; i++ {
			id := int64(g*4 + i + 1)
			group.Characters = append(group.Characters, store.CharacterRef{ID: id, Name: fmt.Sprintf("%s %d", names[i], g)})
		}
		p.Groups = append(p.Groups, group)
	}
	return p
}

func TestGetToday(t *testing.T) {
	server := NewServer(nil, &mockPuzzles{puzzle: testPuzzle()}, nil, "test")

	_, output, err := server.handleGetToday(context.Background(), nil, GetTodayInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.PuzzleID != "puzzle-1" || len(output.Characters) != 16 {
		t.Fatalf("unexpected board: %+v", output)
	}
	if output.Characters[0].Name != "Haku 0" || output.Characters[15].Name != "Zabuza 3" {
		t.Fatalf("board should be ordered by name, got %q..%q", output.Characters[0].Name, output.Characters[15].Name)
	}
}

func TestGetToday_Error(t *testing.T) {
	server := NewServer(nil, &mockPuzzles{err: &puzzle.GenerationExhaustedError{Attempts: 50}}, nil, "test")

	if _, _, err := server.handleGetToday(context.Background(), nil, GetTodayInput{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCheckGuess(t *testing.T) {
	puzzles := &mockPuzzles{puzzle: testPuzzle()}
	server := NewServer(nil, puzzles, nil, "test")

	_, output, err := server.handleCheckGuess(context.Background(), nil, CheckGuessInput{PuzzleID: "puzzle-1", IDs: []int64{8, 7, 6, 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Correct || output.Group == nil || output.Group.Trait != "age" || output.Group.Value != "1" {
		t.Fatalf("unexpected verdict: %+v", output)
	}
	if puzzles.lastPuzzleID != "puzzle-1" || len(puzzles.lastIDs) != 4 {
		t.Fatalf("unexpected check params")
	}

	_, output, err = server.handleCheckGuess(context.Background(), nil, CheckGuessInput{PuzzleID: "puzzle-1", IDs: []int64{1, 2, 3, 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Correct || output.Group != nil {
		t.Fatalf("incorrect guess must not reveal a group: %+v", output)
	}

	_, _, err = server.handleCheckGuess(context.Background(), nil, CheckGuessInput{PuzzleID: "puzzle-1", IDs: []int64{1}})
	var verr *puzzle.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, _, err := server.handleCheckGuess(context.Background(), nil, CheckGuessInput{IDs: []int64{1, 2, 3, 4}}); err == nil {
		t.Fatalf("expected error for missing puzzle id")
	}
}

func TestGetSolution(t *testing.T) {
	puzzles := &mockPuzzles{puzzle: testPuzzle()}
	server := NewServer(nil, puzzles, nil, "test")

	_, output, err := server.handleGetSolution(context.Background(), nil, GetSolutionInput{PuzzleID: "puzzle-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Groups) != 4 || output.Groups[3].Trait != "clan" || len(output.Groups[3].Characters) != 4 {
		t.Fatalf("unexpected solution: %+v", output)
	}

	puzzles.err = puzzle.ErrNotFound
	_, _, err = server.handleGetSolution(context.Background(), nil, GetSolutionInput{PuzzleID: "other"})
	if !errors.Is(err, puzzle.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetStandards(t *testing.T) {
	table := staticStandards{standards: []store.AttributeStandard{
		{Canonical: "affiliation", Type: "string", Category: "social", Difficulty: 1, Examples: []string{"Leaf"}},
		{Canonical: "isHuman", Type: "boolean", Difficulty: 4},
	}}
	server := NewServer(table, &mockPuzzles{}, nil, "test")

	_, output, err := server.handleGetStandards(context.Background(), nil, GetStandardsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Attributes) != 2 || output.Attributes[0].Canonical != "affiliation" || output.Attributes[1].Difficulty != 4 {
		t.Fatalf("unexpected standards output: %+v", output)
	}
	if output.Attributes[1].Examples == nil {
		t.Fatalf("expected empty examples slice, got nil")
	}

	failing := NewServer(staticStandards{err: errors.New("db down")}, &mockPuzzles{}, nil, "test")
	if _, _, err := failing.handleGetStandards(context.Background(), nil, GetStandardsInput{}); err == nil {
		t.Fatal("expected store error")
	}

	server = NewServer(nil, &mockPuzzles{}, nil, "test")
	_, output, _ = server.handleGetStandards(context.Background(), nil, GetStandardsInput{})
	if output.Attributes == nil || len(output.Attributes) != 0 {
		t.Fatalf("expected empty standards, got %+v", output)
	}
}

func TestIndexStats(t *testing.T) {
	var entities []store.Entity
	for id := int64(1); id <= 6; id++ {
		attrs := map[string]attr.Value{"affiliation": attr.String("Leaf")}
		if id <= 2 {
			attrs["clan"] = attr.String("Uchiha")
		}
		entities = append(entities, store.Entity{ID: id, Name: "c", Attributes: attrs})
	}
	entities = append(entities, store.Entity{ID: 7, Name: "bare"})
	server := NewServer(nil, &mockPuzzles{}, staticIndex{idx: index.Build(entities)}, "test")

	_, output, err := server.handleIndexStats(context.Background(), nil, IndexStatsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Characters != 7 || output.WithoutAttributes != 1 || output.UniquePairs != 2 || output.EligiblePairs != 1 {
		t.Fatalf("unexpected stats: %+v", output)
	}
	if len(output.Top) != 1 || output.Top[0].Trait != "affiliation" || output.Top[0].Value != "Leaf" || output.Top[0].Characters != 6 {
		t.Fatalf("unexpected top pairs: %+v", output.Top)
	}

	failing := NewServer(nil, &mockPuzzles{}, staticIndex{err: errors.New("db down")}, "test")
	if _, _, err := failing.handleIndexStats(context.Background(), nil, IndexStatsInput{}); err == nil {
		t.Fatalf("expected error")
	}
	unavailable := NewServer(nil, &mockPuzzles{}, nil, "test")
	if _, _, err := unavailable.handleIndexStats(context.Background(), nil, IndexStatsInput{}); err == nil {
		t.Fatalf("expected error")
	}
}
