package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"charnnections/internal/store"
)

const puzzleColumns = `id::text, date, groups_json, created_at`

func (c *Client) FindByDate(ctx context.Context, date string) (*store.DailyPuzzle, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+puzzleColumns+` FROM daily_puzzles WHERE date = $1`, date)
	p, err := scanPuzzle(row)
	if err != nil {
		return nil, fmt.Errorf("finding puzzle for %s: %w", date, err)
	}
	return p, nil
}

func (c *Client) FindByID(ctx context.Context, id string) (*store.DailyPuzzle, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		// not a puzzle id this store could have issued
		return nil, nil
	}
	row := c.pool.QueryRow(ctx, `SELECT `+puzzleColumns+` FROM daily_puzzles WHERE id = $1`, parsed.String())
	p, err := scanPuzzle(row)
	if err != nil {
		return nil, fmt.Errorf("finding puzzle %s: %w", id, err)
	}
	return p, nil
}

func (c *Client) CreateUnique(ctx context.Context, date string, groups []store.PuzzleGroup) (*store.DailyPuzzle, error) {
	groupsJSON, err := json.Marshal(groups)
	if err != nil {
		return nil, fmt.Errorf("marshaling groups: %w", err)
	}

	p := &store.DailyPuzzle{
		ID:        uuid.NewString(),
		Date:      date,
		Groups:    groups,
		CreatedAt: c.now().UTC(),
	}

	_, err = c.pool.Exec(ctx,
		`INSERT INTO daily_puzzles (id, date, groups_json, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Date, groupsJSON, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating puzzle for %s: %w", date, store.ErrDuplicateDate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating puzzle for %s: %w", date, err)
	}
	return p, nil
}

func (c *Client) DeleteByDate(ctx context.Context, date string) (bool, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM daily_puzzles WHERE date = $1`, date)
	if err != nil {
		return false, fmt.Errorf("deleting puzzle for %s: %w", date, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPuzzle(row pgx.Row) (*store.DailyPuzzle, error) {
	var p store.DailyPuzzle
	var groupsBytes []byte
	err := row.Scan(&p.ID, &p.Date, &groupsBytes, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning puzzle: %w", err)
	}
	if err := json.Unmarshal(groupsBytes, &p.Groups); err != nil {
		return nil, fmt.Errorf("unmarshaling groups: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
