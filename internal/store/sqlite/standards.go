package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"charnnections/internal/store"
)

func (c *Client) UpsertStandard(ctx context.Context, s store.AttributeStandard) error {
	examples := s.Examples
	if examples == nil {
		examples = []string{}
	}
	examplesJSON, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("marshaling examples: %w", err)
	}

	query := `
	INSERT INTO attribute_standards (canonical, type, category, difficulty, examples)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (canonical) DO UPDATE SET
		type = excluded.type,
		category = excluded.category,
		difficulty = excluded.difficulty,
		examples = excluded.examples
	`
	if _, err := c.db.ExecContext(ctx, query, s.Canonical, s.Type, s.Category, s.Difficulty, string(examplesJSON)); err != nil {
		return fmt.Errorf("upserting attribute standard %q: %w", s.Canonical, err)
	}
	return nil
}

func (c *Client) DifficultyFor(ctx context.Context, canonical string) (int, bool, error) {
	var difficulty int
	err := c.db.QueryRowContext(ctx,
		`SELECT difficulty FROM attribute_standards WHERE canonical = ?`, canonical,
	).Scan(&difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up difficulty for %q: %w", canonical, err)
	}
	return difficulty, true, nil
}

func (c *Client) ListStandards(ctx context.Context) ([]store.AttributeStandard, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT canonical, type, category, difficulty, examples FROM attribute_standards ORDER BY canonical`)
	if err != nil {
		return nil, fmt.Errorf("listing attribute standards: %w", err)
	}
	defer rows.Close()

	standards := []store.AttributeStandard{}
	for rows.Next() {
		var s store.AttributeStandard
		var examplesText string
		if err := rows.Scan(&s.Canonical, &s.Type, &s.Category, &s.Difficulty, &examplesText); err != nil {
			return nil, fmt.Errorf("scanning attribute standard: %w", err)
		}
		if err := json.Unmarshal([]byte(examplesText), &s.Examples); err != nil {
			return nil, fmt.Errorf("unmarshaling examples of %q: %w", s.Canonical, err)
		}
		standards = append(standards, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attribute standards: %w", err)
	}
	return standards, nil
}
