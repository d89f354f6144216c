package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"carmarket-backend/internal/models"
)

// Lookup tables are closed sets; queries build table names from this map,
// never from caller input.
var lookupTables = map[string]bool{
	"makes":         true,
	"body_types":    true,
	"colors":        true,
	"fuel_types":    true,
	"gearbox_types": true,
}

func (s *Store) ListLookup(ctx context.Context, table string) ([]models.Lookup, error) {
	if !lookupTables[table] {
		return nil, fmt.Errorf("unknown lookup table %q", table)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name, created_at, updated_at
		FROM %s
		ORDER BY name ASC
	`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var items []models.Lookup
	for rows.Next() {
		var item models.Lookup
		if err := rows.Scan(&item.ID, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) ListModels(ctx context.Context) ([]models.CarModel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, make_id, name, created_at, updated_at
		FROM models
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var items []models.CarModel
	for rows.Next() {
		var item models.CarModel
		if err := rows.Scan(&item.ID, &item.MakeID, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LookupExists reports whether a lookup row with the given id exists.
// Used by validation so a dangling reference fails before the transaction
// begins.
func (s *Store) LookupExists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	if table != "models" && !lookupTables[table] {
		return false, fmt.Errorf("unknown lookup table %q", table)
	}

	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE id = $1
	`, table), id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return count > 0, nil
}
