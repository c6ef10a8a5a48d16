package puzzle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"charnnections/internal/attr"
	"charnnections/internal/store"
	"charnnections/internal/validate"
)

const dateLayout = "2006-01-02"

type GroupGenerator interface {
	Generate(ctx context.Context) ([]store.PuzzleGroup, error)
}

// GroupInput is one hand-curated group: a trait and the ids of its four
// characters.
type GroupInput struct {
	Trait      string
	TraitValue attr.Value
	Difficulty int
	IDs        []int64
}

// Service serves the daily puzzle. The puzzle store's unique date key is the
// only guard against two puzzles for one date; generation itself may run
// concurrently.
type Service struct {
	puzzles           store.PuzzleStore
	entities          store.EntityStore
	generator         GroupGenerator
	now               func() time.Time
	defaultDifficulty int
	logger            *zap.Logger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithCuratedDifficulty(d int) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.defaultDifficulty = d
		}
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(puzzles store.PuzzleStore, entities store.EntityStore, generator GroupGenerator, opts ...ServiceOption) *Service {
	s := &Service{
		puzzles:           puzzles,
		entities:          entities,
		generator:         generator,
		now:               time.Now,
		defaultDifficulty: DefaultDifficulty,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DateOf returns the UTC calendar date of t as yyyy-mm-dd.
func DateOf(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func ParseDate(date string) (string, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return "", invalidf("date %q must be formatted as yyyy-mm-dd", date)
	}
	return parsed.Format(dateLayout), nil
}

func (s *Service) TodayDate() string {
	return DateOf(s.now())
}

func (s *Service) Today(ctx context.Context) (*store.DailyPuzzle, error) {
	return s.GetOrCreateForDate(ctx, s.TodayDate())
}

// GetOrCreateForDate returns the stored puzzle for date, generating and
// persisting one on a miss. When another caller persists first, its puzzle is
// returned instead.
func (s *Service) GetOrCreateForDate(ctx context.Context, date string) (*store.DailyPuzzle, error) {
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	existing, err := s.puzzles.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Debug("loading existing puzzle", zap.String("date", date), zap.String("puzzle_id", existing.ID))
		return existing, nil
	}

	s.logger.Info("creating new puzzle", zap.String("date", date))
	groups, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if report := validate.Puzzle(groups); report.HasErrors() {
		return nil, fmt.Errorf("generated puzzle is invalid: %s", report.Summary())
	}

	created, err := s.puzzles.CreateUnique(ctx, date, groups)
	if errors.Is(err, store.ErrDuplicateDate) {
		conflictsTotal.Inc()
		winner, err := s.puzzles.FindByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("puzzle for %s missing after uniqueness conflict", date)
		}
		s.logger.Info("another caller created the puzzle first",
			zap.String("date", date), zap.String("puzzle_id", winner.ID))
		return winner, nil
	}
	if err != nil {
		return nil, err
	}

	createdTotal.WithLabelValues("generated").Inc()
	s.logger.Info("puzzle created", zap.String("date", date), zap.String("puzzle_id", created.ID))
	return created, nil
}

// RegenerateToday drops today's puzzle and generates a new one. Meant for an
// operator, not for concurrent players.
func (s *Service) RegenerateToday(ctx context.Context) (*store.DailyPuzzle, error) {
	date := s.TodayDate()
	deleted, err := s.puzzles.DeleteByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	s.logger.Info("regenerating puzzle", zap.String("date", date), zap.Bool("replaced", deleted))
	return s.GetOrCreateForDate(ctx, date)
}

// SetPuzzle replaces the puzzle for date with hand-picked groups. An empty
// date means today. Every id must resolve to a known character.
func (s *Service) SetPuzzle(ctx context.Context, date string, inputs []GroupInput) (*store.DailyPuzzle, error) {
	if strings.TrimSpace(date) == "" {
		date = s.TodayDate()
	}
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	if len(inputs) != GroupCount {
		return nil, invalidf("must provide exactly %d groups, got %d", GroupCount, len(inputs))
	}
	for i, in := range inputs {
		if len(in.IDs) != GroupSize {
			return nil, invalidf("group %d must have exactly %d character ids", i+1, GroupSize)
		}
		if strings.TrimSpace(in.Trait) == "" {
			return nil, invalidf("group %d trait is required", i+1)
		}
		if in.TraitValue.IsZero() {
			return nil, invalidf("group %d trait value is required", i+1)
		}
		if dup, ok := firstDuplicate(in.IDs); ok {
			return nil, invalidf("group %d lists character %d twice", i+1, dup)
		}
	}

	groups := make([]store.PuzzleGroup, 0, GroupCount)
	for _, in := range inputs {
		found, err := s.entities.FindByIDs(ctx, in.IDs)
		if err != nil {
			return nil, err
		}
		if len(found) != GroupSize {
			return nil, invalidf("could not find all characters for group %q: found %d of %d", in.Trait, len(found), GroupSize)
		}

		difficulty := in.Difficulty
		if difficulty == 0 {
			difficulty = s.defaultDifficulty
		}
		refs := make([]store.CharacterRef, len(found))
		for i, e := range found {
			refs[i] = e.Ref()
		}
		groups = append(groups, store.PuzzleGroup{
			Trait:      strings.TrimSpace(in.Trait),
			TraitValue: in.TraitValue,
			Difficulty: difficulty,
			Characters: refs,
		})
	}

	if report := validate.Puzzle(groups); report.HasErrors() {
		return nil, invalidf("%s", report.Summary())
	}

	if _, err := s.puzzles.DeleteByDate(ctx, date); err != nil {
		return nil, err
	}
	created, err := s.puzzles.CreateUnique(ctx, date, groups)
	if err != nil {
		return nil, err
	}

	createdTotal.WithLabelValues("curated").Inc()
	s.logger.Info("puzzle set", zap.String("date", date), zap.String("puzzle_id", created.ID))
	return created, nil
}

func (s *Service) CheckGuess(ctx context.Context, puzzleID string, ids []int64) (Verdict, error) {
	p, err := s.find(ctx, puzzleID)
	if err != nil {
		return Verdict{}, err
	}

	verdict, err := Check(p.Groups, ids)
	switch {
	case err != nil:
		guessesTotal.WithLabelValues("invalid").Inc()
	case verdict.Correct:
		guessesTotal.WithLabelValues("correct").Inc()
	default:
		guessesTotal.WithLabelValues("incorrect").Inc()
	}
	return verdict, err
}

func (s *Service) Solution(ctx context.Context, puzzleID string) (*store.DailyPuzzle, error) {
	return s.find(ctx, puzzleID)
}

func (s *Service) find(ctx context.Context, puzzleID string) (*store.DailyPuzzle, error) {
	if strings.TrimSpace(puzzleID) == "" {
		return nil, invalidf("puzzle id is required")
	}
	p, err := s.puzzles.FindByID(ctx, puzzleID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, puzzleID)
	}
	return p, nil
}

func firstDuplicate(ids []int64) (int64, bool) {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}
