package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"charnnections/internal/index"
	"charnnections/internal/puzzle"
	"charnnections/internal/store"
)

type PuzzleService interface {
	Today(ctx context.Context) (*store.DailyPuzzle, error)
	CheckGuess(ctx context.Context, puzzleID string, ids []int64) (puzzle.Verdict, error)
	Solution(ctx context.Context, puzzleID string) (*store.DailyPuzzle, error)
}

type IndexSource interface {
	Get(ctx context.Context) (*index.Index, error)
}

type Server struct {
	standards store.StandardsLister
	puzzles   PuzzleService
	indexes   IndexSource
	mcp       *sdk.Server
}

// NewServer registers the tools. A nil standards lister reports an empty table.
func NewServer(standards store.StandardsLister, puzzles PuzzleService, indexes IndexSource, version string) *Server {
	s := &Server{
		standards: standards,
		puzzles:   puzzles,
		indexes:   indexes,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "charnnections",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
