package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"charnnections/internal/store"
)

const puzzleColumns = `id, date, groups_json, created_at`

func (c *Client) FindByDate(ctx context.Context, date string) (*store.DailyPuzzle, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+puzzleColumns+` FROM daily_puzzles WHERE date = ?`, date)
	p, err := scanPuzzle(row)
	if err != nil {
		return nil, fmt.Errorf("finding puzzle for %s: %w", date, err)
	}
	return p, nil
}

func (c *Client) FindByID(ctx context.Context, id string) (*store.DailyPuzzle, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+puzzleColumns+` FROM daily_puzzles WHERE id = ?`, id)
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

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO daily_puzzles (`+puzzleColumns+`) VALUES (?, ?, ?, ?)`,
		p.ID, p.Date, string(groupsJSON), p.CreatedAt.Format(time.RFC3339Nano),
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
	res, err := c.db.ExecContext(ctx, `DELETE FROM daily_puzzles WHERE date = ?`, date)
	if err != nil {
		return false, fmt.Errorf("deleting puzzle for %s: %w", date, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("counting deleted puzzles: %w", err)
	}
	return affected > 0, nil
}

func scanPuzzle(row *sql.Row) (*store.DailyPuzzle, error) {
	var p store.DailyPuzzle
	var groupsText, createdAt string
	err := row.Scan(&p.ID, &p.Date, &groupsText, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning puzzle: %w", err)
	}
	if err := json.Unmarshal([]byte(groupsText), &p.Groups); err != nil {
		return nil, fmt.Errorf("unmarshaling groups: %w", err)
	}
	p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &p, nil
}
