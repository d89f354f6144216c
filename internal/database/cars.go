package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"carmarket-backend/internal/models"
)

const carColumns = `id, make_id, model_id, body_type_id, color_id, fuel_type_id, gearbox_type_id,
		mileage, engine_capacity, year, price, description, owner_id, created_at, updated_at`

func scanCar(row interface{ Scan(...any) error }) (*models.Car, error) {
	var car models.Car
	err := row.Scan(
		&car.ID, &car.MakeID, &car.ModelID, &car.BodyTypeID, &car.ColorID,
		&car.FuelTypeID, &car.GearboxTypeID, &car.Mileage, &car.EngineCapacity,
		&car.Year, &car.Price, &car.Description, &car.OwnerID,
		&car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (s *Store) CreateCar(ctx context.Context, q Querier, car *models.Car) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO cars (id, make_id, model_id, body_type_id, color_id, fuel_type_id, gearbox_type_id,
			mileage, engine_capacity, year, price, description, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`, car.ID, car.MakeID, car.ModelID, car.BodyTypeID, car.ColorID, car.FuelTypeID, car.GearboxTypeID,
		car.Mileage, car.EngineCapacity, car.Year, car.Price, car.Description, car.OwnerID,
	).Scan(&car.CreatedAt, &car.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// UpdateCar persists the mutable fields of an owner's car. Zero rows
// affected means the car does not exist or belongs to someone else; both
// surface as ErrNotFound.
func (s *Store) UpdateCar(ctx context.Context, q Querier, car *models.Car) error {
	res, err := q.ExecContext(ctx, `
		UPDATE cars
		SET make_id = $1, model_id = $2, body_type_id = $3, color_id = $4,
			fuel_type_id = $5, gearbox_type_id = $6, mileage = $7, engine_capacity = $8,
			year = $9, price = $10, description = $11, updated_at = NOW()
		WHERE id = $12 AND owner_id = $13
	`, car.MakeID, car.ModelID, car.BodyTypeID, car.ColorID, car.FuelTypeID, car.GearboxTypeID,
		car.Mileage, car.EngineCapacity, car.Year, car.Price, car.Description,
		car.ID, car.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
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

func (s *Store) GetCar(ctx context.Context, carID uuid.UUID) (*models.Car, error) {
	car, err := scanCar(s.db.QueryRowContext(ctx, `
		SELECT `+carColumns+`
		FROM cars
		WHERE id = $1
	`, carID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

// GetOwnedCar is the ownership-scoped read used by update and delete
// flows: another user's car is indistinguishable from a missing one.
func (s *Store) GetOwnedCar(ctx context.Context, carID, ownerID uuid.UUID) (*models.Car, error) {
	car, err := scanCar(s.db.QueryRowContext(ctx, `
		SELECT `+carColumns+`
		FROM cars
		WHERE id = $1 AND owner_id = $2
	`, carID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

func (s *Store) ListCars(ctx context.Context) ([]models.Car, error) {
	return s.listCars(ctx, `
		SELECT `+carColumns+`
		FROM cars
		ORDER BY created_at DESC
	`)
}

func (s *Store) ListCarsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Car, error) {
	return s.listCars(ctx, `
		SELECT `+carColumns+`
		FROM cars
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
}

func (s *Store) listCars(ctx context.Context, query string, args ...any) ([]models.Car, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	var cars []models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, *car)
	}
	return cars, rows.Err()
}

// DeleteCar removes an owner's car; image rows go with it via the cascade.
func (s *Store) DeleteCar(ctx context.Context, carID, ownerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM cars
		WHERE id = $1 AND owner_id = $2
	`, carID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
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
