// Package server exposes the puzzle service over HTTP.
package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"charnnections/internal/puzzle"
	"charnnections/internal/store"
)

type PuzzleService interface {
	Today(ctx context.Context) (*store.DailyPuzzle, error)
	CheckGuess(ctx context.Context, puzzleID string, ids []int64) (puzzle.Verdict, error)
	Solution(ctx context.Context, puzzleID string) (*store.DailyPuzzle, error)
	SetPuzzle(ctx context.Context, date string, inputs []puzzle.GroupInput) (*store.DailyPuzzle, error)
	RegenerateToday(ctx context.Context) (*store.DailyPuzzle, error)
}

type Server struct {
	puzzles PuzzleService
	logger  *zap.Logger
	shuffle func(n int, swap func(i, j int))
}

type Option func(*Server)

// WithShuffle replaces the board shuffle, which defaults to math/rand/v2.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Server) { s.shuffle = shuffle }
}

func NewServer(puzzles PuzzleService, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{puzzles: puzzles, logger: logger, shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	game := r.Group("/api/game")
	game.GET("/today", s.Today)
	game.POST("/:puzzleId/check", s.Check)
	game.GET("/:puzzleId/solution", s.Solution)

	admin := r.Group("/api/admin")
	admin.POST("/set-puzzle", s.SetPuzzle)
	admin.POST("/regenerate-today", s.RegenerateToday)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps service errors onto status codes. Internal failures are
// logged and reported without detail.
func (s *Server) writeError(c *gin.Context, err error) {
	var validation *puzzle.ValidationError
	var exhausted *puzzle.GenerationExhaustedError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Reason})
	case errors.Is(err, puzzle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Puzzle not found"})
	case errors.As(err, &exhausted):
		s.logger.Error("puzzle generation exhausted", zap.Int("attempts", exhausted.Attempts), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": exhausted.Error()})
	default:
		s.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
