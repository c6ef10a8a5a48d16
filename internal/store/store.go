package store

import (
	"context"
	"errors"
)

// ErrDuplicateDate is returned by CreateUnique when a puzzle already exists for
// the date. It is the signal the get-or-create path recovers from.
var ErrDuplicateDate = errors.New("daily puzzle already exists for date")

type EntityStore interface {
	ListAll(ctx context.Context) ([]Entity, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Entity, error)
}

type StandardsLookup interface {
	DifficultyFor(ctx context.Context, canonical string) (int, bool, error)
}

type StandardsLister interface {
	ListStandards(ctx context.Context) ([]AttributeStandard, error)
}

type PuzzleStore interface {
	FindByDate(ctx context.Context, date string) (*DailyPuzzle, error)
	FindByID(ctx context.Context, id string) (*DailyPuzzle, error)
	CreateUnique(ctx context.Context, date string, groups []PuzzleGroup) (*DailyPuzzle, error)
	DeleteByDate(ctx context.Context, date string) (bool, error)
}

// Store is implemented by the postgres and sqlite backends.
type Store interface {
	EntityStore
	StandardsLookup
	StandardsLister
	PuzzleStore

	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertEntity(ctx context.Context, e Entity) error
	UpsertStandard(ctx context.Context, s AttributeStandard) error
	CountEntities(ctx context.Context) (int, error)
}
