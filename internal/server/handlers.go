package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"charnnections/internal/attr"
	"charnnections/internal/puzzle"
	"charnnections/internal/store"
)

type TodayResponse struct {
	PuzzleID   string               `json:"puzzleId"`
	Date       string               `json:"date"`
	Characters []store.CharacterRef `json:"characters"`
}

// CheckRequest also accepts the board client's malIds field name.
type CheckRequest struct {
	IDs    []int64 `json:"ids"`
	MalIDs []int64 `json:"malIds,omitempty"`
}

func (r CheckRequest) guess() []int64 {
	return pickIDs(r.IDs, r.MalIDs)
}

type CheckResponse struct {
	Correct    bool                 `json:"correct"`
	Trait      string               `json:"trait,omitempty"`
	TraitValue *attr.Value          `json:"traitValue,omitempty"`
	Difficulty int                  `json:"difficulty,omitempty"`
	Characters []store.CharacterRef `json:"characters,omitempty"`
}

type SolutionGroup struct {
	Trait      string               `json:"trait"`
	Value      attr.Value           `json:"value"`
	Difficulty int                  `json:"difficulty"`
	Characters []store.CharacterRef `json:"characters"`
}

type SolutionResponse struct {
	PuzzleID string          `json:"puzzleId"`
	Date     string          `json:"date"`
	Groups   []SolutionGroup `json:"groups"`
}

type SetPuzzleGroup struct {
	Trait      string     `json:"trait"`
	TraitValue attr.Value `json:"traitValue"`
	Difficulty int        `json:"difficulty"`
	IDs        []int64    `json:"ids"`
	MalIDs     []int64    `json:"malIds,omitempty"`
}

func pickIDs(ids, malIDs []int64) []int64 {
	if len(ids) > 0 {
		return ids
	}
	return malIDs
}

type SetPuzzleRequest struct {
	Date   string           `json:"date"`
	Groups []SetPuzzleGroup `json:"groups"`
}

type PuzzleCreatedResponse struct {
	Message  string          `json:"message"`
	PuzzleID string          `json:"puzzleId"`
	Date     string          `json:"date"`
	Groups   []SolutionGroup `json:"groups,omitempty"`
}

// Today serves the board: all sixteen characters in random order, without
// their groups.
func (s *Server) Today(c *gin.Context) {
	p, err := s.puzzles.Today(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	characters := make([]store.CharacterRef, 0, puzzle.GroupCount*puzzle.GroupSize)
	for _, g := range p.Groups {
		characters = append(characters, g.Characters...)
	}
	s.shuffle(len(characters), func(i, j int) {
		characters[i], characters[j] = characters[j], characters[i]
	})

	c.JSON(http.StatusOK, TodayResponse{PuzzleID: p.ID, Date: p.Date, Characters: characters})
}

func (s *Server) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	verdict, err := s.puzzles.CheckGuess(c.Request.Context(), c.Param("puzzleId"), req.guess())
	if err != nil {
		s.writeError(c, err)
		return
	}

	if !verdict.Correct {
		c.JSON(http.StatusOK, CheckResponse{Correct: false})
		return
	}
	value := verdict.Group.TraitValue
	c.JSON(http.StatusOK, CheckResponse{
		Correct:    true,
		Trait:      verdict.Group.Trait,
		TraitValue: &value,
		Difficulty: verdict.Group.Difficulty,
		Characters: verdict.Group.Characters,
	})
}

func (s *Server) Solution(c *gin.Context) {
	p, err := s.puzzles.Solution(c.Request.Context(), c.Param("puzzleId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SolutionResponse{PuzzleID: p.ID, Date: p.Date, Groups: solutionGroups(p.Groups)})
}

func (s *Server) SetPuzzle(c *gin.Context) {
	var req SetPuzzleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	inputs := make([]puzzle.GroupInput, len(req.Groups))
	for i, g := range req.Groups {
		inputs[i] = puzzle.GroupInput{
			Trait:      g.Trait,
			TraitValue: g.TraitValue,
			Difficulty: g.Difficulty,
			IDs:        pickIDs(g.IDs, g.MalIDs),
		}
	}

	p, err := s.puzzles.SetPuzzle(c.Request.Context(), req.Date, inputs)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PuzzleCreatedResponse{
		Message:  fmt.Sprintf("Puzzle set for %s", p.Date),
		PuzzleID: p.ID,
		Date:     p.Date,
		Groups:   solutionGroups(p.Groups),
	})
}

func (s *Server) RegenerateToday(c *gin.Context) {
	p, err := s.puzzles.RegenerateToday(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PuzzleCreatedResponse{
		Message:  fmt.Sprintf("Regenerated puzzle for %s", p.Date),
		PuzzleID: p.ID,
		Date:     p.Date,
	})
}

func solutionGroups(groups []store.PuzzleGroup) []SolutionGroup {
	out := make([]SolutionGroup, len(groups))
	for i, g := range groups {
		out[i] = SolutionGroup{
			Trait:      g.Trait,
			Value:      g.TraitValue,
			Difficulty: g.Difficulty,
			Characters: g.Characters,
		}
	}
	return out
}
