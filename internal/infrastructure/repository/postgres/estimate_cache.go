package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// EstimateCache remembers model day counts per normalized query.
type EstimateCache struct {
	db *sql.DB
}

func NewEstimateCache(db *sql.DB) *EstimateCache {
	return &EstimateCache{db: db}
}

func (c *EstimateCache) GetMany(ctx context.Context, queries []string) (map[string]domain.CachedEstimate, error) {
	out := make(map[string]domain.CachedEstimate, len(queries))
	if len(queries) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(queries))
	args := make([]any, len(queries))
	for i, q := range queries {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = q
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT query, days, updated_at FROM food_estimate_cache WHERE query IN (`+strings.Join(placeholders, ",")+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query estimate cache: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.CachedEstimate
		if err := rows.Scan(&e.Query, &e.Days, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan estimate cache row: %w", err)
		}
		out[e.Query] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate cache: %w", err)
	}
	return out, nil
}

func (c *EstimateCache) Upsert(ctx context.Context, entries []domain.CachedEstimate) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin estimate cache tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range entries {
		if e.Days <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO food_estimate_cache (query, days, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (query) DO UPDATE SET days = EXCLUDED.days, updated_at = EXCLUDED.updated_at
`, e.Query, e.Days, e.UpdatedAt); err != nil {
			return fmt.Errorf("upsert estimate %q: %w", e.Query, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit estimate cache tx: %w", err)
	}
	return nil
}
