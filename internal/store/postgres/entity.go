package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"charnnections/internal/attr"
	"charnnections/internal/store"
)

func (c *Client) UpsertEntity(ctx context.Context, e store.Entity) error {
	if err := attr.CheckMap(e.Attributes); err != nil {
		return fmt.Errorf("character %d: %w", e.ID, err)
	}
	attrs := e.Attributes
	if attrs == nil {
		attrs = map[string]attr.Value{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshaling attributes: %w", err)
	}

	query := `
INSERT INTO characters (id, name, series, image_url, attributes, scraped_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    series = EXCLUDED.series,
    image_url = EXCLUDED.image_url,
    attributes = EXCLUDED.attributes,
    scraped_at = now()
`
	if _, err := c.pool.Exec(ctx, query, e.ID, e.Name, e.Series, e.ImageURL, attrsJSON); err != nil {
		return fmt.Errorf("upserting character %d: %w", e.ID, err)
	}
	return nil
}

func (c *Client) ListAll(ctx context.Context) ([]store.Entity, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, name, series, image_url, attributes FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return collectEntities(rows)
}

// FindByIDs returns the known entities among ids, in request order.
func (c *Client) FindByIDs(ctx context.Context, ids []int64) ([]store.Entity, error) {
	if len(ids) == 0 {
		return []store.Entity{}, nil
	}
	rows, err := c.pool.Query(ctx,
		`SELECT id, name, series, image_url, attributes FROM characters WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("finding characters: %w", err)
	}
	found, err := collectEntities(rows)
	if err != nil {
		return nil, err
	}
	return store.OrderByIDs(found, ids), nil
}

func (c *Client) CountEntities(ctx context.Context) (int, error) {
	var count int
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM characters`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting characters: %w", err)
	}
	return count, nil
}

func collectEntities(rows pgx.Rows) ([]store.Entity, error) {
	defer rows.Close()

	entities := []store.Entity{}
	for rows.Next() {
		var e store.Entity
		var attrsBytes []byte
		if err := rows.Scan(&e.ID, &e.Name, &e.Series, &e.ImageURL, &attrsBytes); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		if len(attrsBytes) > 0 {
			if err := json.Unmarshal(attrsBytes, &e.Attributes); err != nil {
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
