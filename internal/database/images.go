package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"carmarket-backend/internal/models"
)

// SaveImage inserts an image row. When the row is primary, every other
// primary image of the same car is demoted first, inside the same
// transaction. That demotion is best-effort convenience; the partial
// unique index on images(car_id) is what actually rejects a concurrent
// double-primary, and that violation comes back as ErrDuplicatePrimary.
func (s *Store) SaveImage(ctx context.Context, q Querier, img *models.Image) error {
	if img.IsPrimary {
		if err := s.demoteOtherPrimaries(ctx, q, img.CarID, img.ID); err != nil {
			return err
		}
	}

	err := q.QueryRowContext(ctx, `
		INSERT INTO images (id, car_id, storage_key, is_primary)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, img.ID, img.CarID, img.StorageKey, img.IsPrimary).Scan(&img.CreatedAt)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// SetPrimaryImage flips an existing image of the car to primary, demoting
// the rest.
func (s *Store) SetPrimaryImage(ctx context.Context, q Querier, carID, imageID uuid.UUID) error {
	if err := s.demoteOtherPrimaries(ctx, q, carID, imageID); err != nil {
		return err
	}

	res, err := q.ExecContext(ctx, `
		UPDATE images
		SET is_primary = TRUE
		WHERE id = $1 AND car_id = $2
	`, imageID, carID)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to set primary image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) demoteOtherPrimaries(ctx context.Context, q Querier, carID, excludeID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		UPDATE images
		SET is_primary = FALSE
		WHERE car_id = $1 AND is_primary AND id <> $2
	`, carID, excludeID)
	if err != nil {
		return fmt.Errorf("failed to demote primary images: %w", err)
	}
	return nil
}

func (s *Store) DeleteImage(ctx context.Context, q Querier, carID, imageID uuid.UUID) error {
	res, err := q.ExecContext(ctx, `
		DELETE FROM images
		WHERE id = $1 AND car_id = $2
	`, imageID, carID)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListImages(ctx context.Context, carID uuid.UUID) ([]models.Image, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, car_id, storage_key, is_primary, created_at
		FROM images
		WHERE car_id = $1
		ORDER BY created_at ASC
	`, carID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []models.Image
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.CarID, &img.StorageKey, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// PrimaryImages returns the primary image per car for the given set of
// car ids. Cars without a primary image are simply absent from the map.
func (s *Store) PrimaryImages(ctx context.Context, carIDs []uuid.UUID) (map[uuid.UUID]models.Image, error) {
	if len(carIDs) == 0 {
		return map[uuid.UUID]models.Image{}, nil
	}

	ids := make([]string, len(carIDs))
	for i, id := range carIDs {
		ids[i] = id.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, car_id, storage_key, is_primary, created_at
		FROM images
		WHERE car_id = ANY($1::uuid[]) AND is_primary
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list primary images: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]models.Image)
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.CarID, &img.StorageKey, &img.IsPrimary, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		result[img.CarID] = img
	}
	return result, rows.Err()
}

// PrimaryImage returns the car's primary image, or ErrNoPrimaryImage when
// no image carries the flag.
func (s *Store) PrimaryImage(ctx context.Context, carID uuid.UUID) (*models.Image, error) {
	var img models.Image
	err := s.db.QueryRowContext(ctx, `
		SELECT id, car_id, storage_key, is_primary, created_at
		FROM images
		WHERE car_id = $1 AND is_primary
		LIMIT 1
	`, carID).Scan(&img.ID, &img.CarID, &img.StorageKey, &img.IsPrimary, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPrimaryImage
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get primary image: %w", err)
	}
	return &img, nil
}
