package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"charnnections/internal/store"
)

func (c *Client) UpsertStandard(ctx context.Context, s store.AttributeStandard) error {
	examples := s.Examples
	if examples == nil {
		examples = []string{}
	}

	query := `
INSERT INTO attribute_standards (canonical, type, category, difficulty, examples)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (canonical) DO UPDATE SET
    type = EXCLUDED.type,
    category = EXCLUDED.category,
    difficulty = EXCLUDED.difficulty,
    examples = EXCLUDED.examples
`
	if _, err := c.pool.Exec(ctx, query, s.Canonical, s.Type, s.Category, s.Difficulty, examples); err != nil {
		return fmt.Errorf("upserting attribute standard %q: %w", s.Canonical, err)
	}
	return nil
}

func (c *Client) DifficultyFor(ctx context.Context, canonical string) (int, bool, error) {
	var difficulty int
	err := c.pool.QueryRow(ctx,
		`SELECT difficulty FROM attribute_standards WHERE canonical = $1`, canonical,
	).Scan(&difficulty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("looking up difficulty for %q: %w", canonical, err)
	}
	return difficulty, true, nil
}

func (c *Client) ListStandards(ctx context.Context) ([]store.AttributeStandard, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT canonical, type, category, difficulty, examples FROM attribute_standards ORDER BY canonical`)
	if err != nil {
		return nil, fmt.Errorf("listing attribute standards: %w", err)
	}
	defer rows.Close()

	standards := []store.AttributeStandard{}
	for rows.Next() {
		var s store.AttributeStandard
		if err := rows.Scan(&s.Canonical, &s.Type, &s.Category, &s.Difficulty, &s.Examples); err != nil {
			return nil, fmt.Errorf("scanning attribute standard: %w", err)
		}
		standards = append(standards, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attribute standards: %w", err)
	}
	return standards, nil
}
