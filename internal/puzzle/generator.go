package puzzle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"charnnections/internal/index"
	"charnnections/internal/store"
)

const (
	GroupCount = 4
	GroupSize  = index.MinGroupSize

	DefaultMaxAttempts = 50
	DefaultDifficulty  = 3
)

type IndexSource interface {
	Get(ctx context.Context) (*index.Index, error)
}

type Generator struct {
	indexes           IndexSource
	standards         store.StandardsLookup
	maxAttempts       int
	defaultDifficulty int
	newRand           func() *rand.Rand
	logger            *zap.Logger
}

type GeneratorOption func(*Generator)

func WithMaxAttempts(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func WithDefaultDifficulty(d int) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.defaultDifficulty = d
		}
	}
}

// WithRand sets the source of randomness; each Generate call takes one
// *rand.Rand from it and uses it for every attempt.
func WithRand(newRand func() *rand.Rand) GeneratorOption {
	return func(g *Generator) { g.newRand = newRand }
}

func WithGeneratorLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewGenerator(indexes IndexSource, standards store.StandardsLookup, opts ...GeneratorOption) *Generator {
	g := &Generator{
		indexes:           indexes,
		standards:         standards,
		maxAttempts:       DefaultMaxAttempts,
		defaultDifficulty: DefaultDifficulty,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns four groups or a *GenerationExhaustedError. Index and
// standards lookup failures are returned as they are, without retrying.
func (g *Generator) Generate(ctx context.Context) ([]store.PuzzleGroup, error) {
	rng := g.newRand()

	var last error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		idx, err := g.indexes.Get(ctx)
		if err != nil {
			return nil, err
		}

		groups, err := selectGroups(ctx, idx.Eligible(), rng, g.difficulty)
		switch {
		case err == nil:
			attemptsTotal.WithLabelValues("ok").Inc()
			g.logger.Info("puzzle generated",
				zap.Int("attempt", attempt),
				zap.Strings("traits", traitsOf(groups)))
			return groups, nil
		case errors.Is(err, ErrInsufficientData):
			attemptsTotal.WithLabelValues("insufficient").Inc()
		case errors.Is(err, errIncomplete):
			attemptsTotal.WithLabelValues("incomplete").Inc()
		default:
			return nil, err
		}

		last = err
		g.logger.Debug("generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxAttempts),
			zap.Error(err))
	}

	exhaustedTotal.Inc()
	return nil, &GenerationExhaustedError{Attempts: g.maxAttempts, Last: last}
}

func (g *Generator) difficulty(ctx context.Context, trait string) (int, error) {
	if g.standards == nil {
		return g.defaultDifficulty, nil
	}
	d, ok, err := g.standards.DifficultyFor(ctx, trait)
	if err != nil {
		return 0, fmt.Errorf("difficulty for %s: %w", trait, err)
	}
	if !ok || d <= 0 {
		return g.defaultDifficulty, nil
	}
	return d, nil
}

type difficultyFunc func(ctx context.Context, trait string) (int, error)

// selectGroups runs one attempt: shuffle the eligible entries, then walk them
// greedily, skipping used trait keys and taking the first four unused
// characters of each entry. The result depends only on eligible, rng and the
// difficulty lookup. eligible is reordered in place.
func selectGroups(ctx context.Context, eligible []*index.Entry, rng *rand.Rand, difficulty difficultyFunc) ([]store.PuzzleGroup, error) {
	if len(eligible) < GroupCount {
		return nil, fmt.Errorf("%w: found %d, need at least %d", ErrInsufficientData, len(eligible), GroupCount)
	}

	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	usedCharacters := make(map[int64]struct{}, GroupCount*GroupSize)
	usedTraits := make(map[string]struct{}, GroupCount)
	groups := make([]store.PuzzleGroup, 0, GroupCount)

	for _, entry := range eligible {
		if _, used := usedTraits[entry.Key]; used {
			continue
		}

		available := make([]store.CharacterRef, 0, GroupSize)
		for _, c := range entry.Characters {
			if _, used := usedCharacters[c.ID]; used {
				continue
			}
			available = append(available, c)
			if len(available) == GroupSize {
				break
			}
		}
		if len(available) < GroupSize {
			continue
		}

		d, err := difficulty(ctx, entry.Key)
		if err != nil {
			return nil, err
		}

		for _, c := range available {
			usedCharacters[c.ID] = struct{}{}
		}
		usedTraits[entry.Key] = struct{}{}
		groups = append(groups, store.PuzzleGroup{
			Trait:      entry.Key,
			TraitValue: entry.Value,
			Difficulty: d,
			Characters: available,
		})

		if len(groups) == GroupCount {
			return groups, nil
		}
	}

	return nil, fmt.Errorf("%w: got %d", errIncomplete, len(groups))
}

func traitsOf(groups []store.PuzzleGroup) []string {
	traits := make([]string, len(groups))
	for i, g := range groups {
		traits[i] = fmt.Sprintf("%s=%s", g.Trait, g.TraitValue)
	}
	return traits
}
