package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS characters (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		series      TEXT NOT NULL DEFAULT '',
		image_url   TEXT NOT NULL DEFAULT '',
		attributes  TEXT NOT NULL DEFAULT '{}',
		scraped_at  TEXT DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS attribute_standards (
		canonical   TEXT PRIMARY KEY,
		type        TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		difficulty  INTEGER NOT NULL,
		examples    TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS daily_puzzles (
		id          TEXT PRIMARY KEY,
		date        TEXT NOT NULL,
		groups_json TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		CONSTRAINT uq_daily_puzzle_date UNIQUE (date)
	);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}
	return statements
}
