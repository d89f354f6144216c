// Package database is the PostgreSQL persistence layer: embedded SQL
// migrations plus a Store exposing queries for users, lookups, cars and
// images. Mutations that must commit together run through WithTx.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound covers both genuinely missing rows and rows the caller
	// does not own; the two are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePrimary is the mapped form of the partial unique index
	// on images(car_id) WHERE is_primary: a concurrent writer already
	// committed a primary image for the same car.
	ErrDuplicatePrimary = errors.New("car already has a primary image")

	// ErrUsernameTaken and ErrEmailTaken carry the violated constraint
	// through, so registration can report the conflict on the right field.
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")

	// ErrNoPrimaryImage is returned by PrimaryImage when no image of the
	// car is flagged primary.
	ErrNoPrimaryImage = errors.New("car has no primary image")
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx,
// so query methods can run standalone or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(dbURL string) (*Store, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for queries outside a transaction.
func (s *Store) DB() Querier {
	return s.db
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Panics are rethrown after rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx Querier) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

const uniqueViolation = pq.ErrorCode("23505")

// mapConstraintError translates unique-constraint violations into sentinel
// errors the service layer can surface as validation failures.
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case "unique_primary_image_per_car":
		return ErrDuplicatePrimary
	case "users_username_key":
		return ErrUsernameTaken
	case "users_email_key":
		return ErrEmailTaken
	}
	return err
}
