package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction; IF NOT EXISTS keeps the
	// call idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS characters (
    id          BIGINT PRIMARY KEY,
    name        TEXT NOT NULL,
    series      TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    attributes  JSONB NOT NULL DEFAULT '{}',
    scraped_at  TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attribute_standards (
    canonical   TEXT PRIMARY KEY,
    type        TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    difficulty  INTEGER NOT NULL,
    examples    TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS daily_puzzles (
    id          UUID PRIMARY KEY,
    date        TEXT NOT NULL,
    groups_json JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    CONSTRAINT uq_daily_puzzle_date UNIQUE (date)
);

CREATE INDEX IF NOT EXISTS idx_characters_attributes ON characters USING GIN (attributes);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
