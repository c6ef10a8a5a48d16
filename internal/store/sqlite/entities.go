package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"charnnections/internal/attr"
	"charnnections/internal/store"
)

func (c *Client) UpsertEntity(ctx context.Context, e store.Entity) error {
	if err := attr.CheckMap(e.Attributes); err != nil {
		return fmt.Errorf("character %d: %w", e.ID, err)
	}
	attrsJSON, err := json.Marshal(e.Attributes)
	if err != nil {
		return fmt.Errorf("marshaling attributes: %w", err)
	}
	if e.Attributes == nil {
		attrsJSON = []byte("{}")
	}

	query := `
	INSERT INTO characters (id, name, series, image_url, attributes, scraped_at)
	VALUES (?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		series = excluded.series,
		image_url = excluded.image_url,
		attributes = excluded.attributes,
		scraped_at = datetime('now')
	`

	_, err = c.db.ExecContext(ctx, query, e.ID, e.Name, e.Series, e.ImageURL, string(attrsJSON))
	if err != nil {
		return fmt.Errorf("upserting character %d: %w", e.ID, err)
	}
	return nil
}

func (c *Client) ListAll(ctx context.Context) ([]store.Entity, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, series, image_url, attributes FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	entities, err := scanEntities(rows)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// FindByIDs returns the known entities among ids, in request order.
func (c *Client) FindByIDs(ctx context.Context, ids []int64) ([]store.Entity, error) {
	if len(ids) == 0 {
		return []store.Entity{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, name, series, image_url, attributes FROM characters WHERE id IN (%s)`,
		strings.Join(placeholders, ", "))

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding characters: %w", err)
	}
	defer rows.Close()

	found, err := scanEntities(rows)
	if err != nil {
		return nil, err
	}
	return store.OrderByIDs(found, ids), nil
}

func (c *Client) CountEntities(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting characters: %w", err)
	}
	return count, nil
}

func scanEntities(rows *sql.Rows) ([]store.Entity, error) {
	entities := []store.Entity{}
	for rows.Next() {
		var e store.Entity
		var attrsText string
		if err := rows.Scan(&e.ID, &e.Name, &e.Series, &e.ImageURL, &attrsText); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		if attrsText != "" {
			if err := json.Unmarshal([]byte(attrsText), &e.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshaling attributes of character %d: %w", e.ID, err)
			}
		}
		if err := attr.CheckMap(e.Attributes); err != nil {
			return nil, fmt.Errorf("character %d: %w", e.ID, err)
		}
		if e.Attributes == nil {
			e.Attributes = map[string]attr.Value{}
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters: %w", err)
	}
	return entities, nil
}
