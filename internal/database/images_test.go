package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carmarket-backend/internal/models"
)

const (
	demoteSQL  = `UPDATE images SET is_primary = FALSE WHERE car_id = $1 AND is_primary AND id <> $2`
	promoteSQL = `UPDATE images SET is_primary = TRUE WHERE id = $1 AND car_id = $2`
	insertSQL  = `INSERT INTO images (id, car_id, storage_key, is_primary) VALUES ($1, $2, $3, $4) RETURNING created_at`
)

// sqlPattern matches a query ignoring the whitespace layout of the
// embedded SQL literals.
func sqlPattern(query string) string {
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(query), `\s+`)
}

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock, Querier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: db}, mock, db
}

func TestSaveImage_PrimaryDemotesOthersFirst(t *testing.T) {
	store, mock, q := mockStore(t)
	img := &models.Image{
		ID:         uuid.New(),
		CarID:      uuid.New(),
		StorageKey: "cars/abc.jpg",
		IsPrimary:  true,
	}

	// Ordered: the demotion of the car's other primaries must run before
	// the insert, scoped to this car and excluding the new row.
	mock.ExpectExec(sqlPattern(demoteSQL)).
		WithArgs(img.CarID, img.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(sqlPattern(insertSQL)).
		WithArgs(img.ID, img.CarID, img.StorageKey, true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	require.NoError(t, store.SaveImage(context.Background(), q, img))
	assert.False(t, img.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveImage_NonPrimarySkipsDemotion(t *testing.T) {
	store, mock, q := mockStore(t)
	img := &models.Image{
		ID:         uuid.New(),
		CarID:      uuid.New(),
		StorageKey: "cars/def.jpg",
	}

	mock.ExpectQuery(sqlPattern(insertSQL)).
		WithArgs(img.ID, img.CarID, img.StorageKey, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	require.NoError(t, store.SaveImage(context.Background(), q, img))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPrimaryImage_DemotesCurrentPrimary(t *testing.T) {
	store, mock, q := mockStore(t)
	carID := uuid.New()
	imageID := uuid.New()

	mock.ExpectExec(sqlPattern(demoteSQL)).
		WithArgs(carID, imageID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlPattern(promoteSQL)).
		WithArgs(imageID, carID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetPrimaryImage(context.Background(), q, carID, imageID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPrimaryImage_UnknownImage(t *testing.T) {
	store, mock, q := mockStore(t)
	carID := uuid.New()
	imageID := uuid.New()

	mock.ExpectExec(sqlPattern(demoteSQL)).
		WithArgs(carID, imageID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(sqlPattern(promoteSQL)).
		WithArgs(imageID, carID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetPrimaryImage(context.Background(), q, carID, imageID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
