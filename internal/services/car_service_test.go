package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carmarket-backend/internal/database"
)

func testCarService() *CarService {
	return &CarService{logger: zap.NewNop().Sugar()}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateUploads(t *testing.T) {
	tests := []struct {
		name      string
		uploads   []ImageUpload
		wantField bool
	}{
		{
			name:    "no uploads",
			uploads: nil,
		},
		{
			name: "one primary",
			uploads: []ImageUpload{
				{Filename: "a.jpg", Data: []byte("x"), Primary: true},
				{Filename: "b.jpg", Data: []byte("x")},
			},
		},
		{
			name: "two primaries rejected",
			uploads: []ImageUpload{
				{Filename: "a.jpg", Data: []byte("x"), Primary: true},
				{Filename: "b.jpg", Data: []byte("x"), Primary: true},
			},
			wantField: true,
		},
		{
			name:      "empty file rejected",
			uploads:   []ImageUpload{{Filename: "a.jpg"}},
			wantField: true,
		},
		{
			name: "oversized file rejected",
			uploads: []ImageUpload{
				{Filename: "a.jpg", Data: make([]byte, MaxImageBytes+1)},
			},
			wantField: true,
		},
		{
			name: "too many files rejected",
			uploads: func() []ImageUpload {
				ups := make([]ImageUpload, MaxImagesPerSubmission+1)
				for i := range ups {
					ups[i] = ImageUpload{Filename: fmt.Sprintf("%d.jpg", i), Data: []byte("x")}
				}
				return ups
			}(),
			wantField: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := newValidationError()
			validateUploads(tt.uploads, verr)
			if tt.wantField {
				assert.Contains(t, verr.Fields, "images")
			} else {
				assert.Empty(t, verr.Fields)
			}
		})
	}
}

func TestValidatePrimaryDesignation(t *testing.T) {
	tests := []struct {
		name           string
		primaryImageID string
		uploads        []ImageUpload
		wantField      bool
	}{
		{
			name:    "no promotion",
			uploads: []ImageUpload{{Filename: "a.jpg", Data: []byte("x"), Primary: true}},
		},
		{
			name:           "promotion with non-primary uploads",
			primaryImageID: uuid.NewString(),
			uploads:        []ImageUpload{{Filename: "a.jpg", Data: []byte("x")}},
		},
		{
			name:           "promotion plus primary upload rejected",
			primaryImageID: uuid.NewString(),
			uploads: []ImageUpload{
				{Filename: "a.jpg", Data: []byte("x"), Primary: true},
			},
			wantField: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := newValidationError()
			validatePrimaryDesignation(tt.primaryImageID, tt.uploads, verr)
			if tt.wantField {
				assert.Contains(t, verr.Fields, "primary_image_id")
			} else {
				assert.Empty(t, verr.Fields)
			}
		})
	}
}

func TestValidatePrimaryTarget(t *testing.T) {
	owned := uuid.New()
	keysByID := map[uuid.UUID]string{owned: "cars/abc.jpg"}

	t.Run("no promotion", func(t *testing.T) {
		verr := newValidationError()
		validatePrimaryTarget(uuid.Nil, nil, keysByID, verr)
		assert.Empty(t, verr.Fields)
	})

	t.Run("image of this car", func(t *testing.T) {
		verr := newValidationError()
		validatePrimaryTarget(owned, nil, keysByID, verr)
		assert.Empty(t, verr.Fields)
	})

	t.Run("image of another car rejected", func(t *testing.T) {
		verr := newValidationError()
		validatePrimaryTarget(uuid.New(), nil, keysByID, verr)
		assert.Contains(t, verr.Fields, "primary_image_id")
	})

	t.Run("image removed by the same submission rejected", func(t *testing.T) {
		verr := newValidationError()
		validatePrimaryTarget(owned, []uuid.UUID{owned}, keysByID, verr)
		assert.Contains(t, verr.Fields, "primary_image_id")
	})
}

func TestPrepareUploads_NormalizesValidImage(t *testing.T) {
	svc := testCarService()
	raw := pngBytes(t, 2000, 1000)

	prepared := svc.prepareUploads([]ImageUpload{
		{Filename: "big.png", Data: raw, Primary: true},
	})
	require.Len(t, prepared, 1)

	// Successful normalization re-encodes as JPEG and retargets the key.
	assert.True(t, strings.HasSuffix(prepared[0].key, ".jpg"))
	assert.NotEqual(t, raw, prepared[0].data)
	assert.True(t, prepared[0].primary)
}

func TestPrepareUploads_KeepsRawOnCorruptImage(t *testing.T) {
	svc := testCarService()
	raw := []byte("this is not an image")

	prepared := svc.prepareUploads([]ImageUpload{
		{Filename: "broken.png", Data: raw},
	})
	require.Len(t, prepared, 1)

	// Corrupt payload: raw bytes kept, policy key (with its extension) kept.
	assert.Equal(t, raw, prepared[0].data)
	assert.True(t, strings.HasSuffix(prepared[0].key, ".png"))
}

func TestMapSaveError(t *testing.T) {
	mapped := mapSaveError(fmt.Errorf("save failed: %w", database.ErrDuplicatePrimary))
	var verr *ValidationError
	require.ErrorAs(t, mapped, &verr)
	assert.Contains(t, verr.Fields, "images")

	mapped = mapSaveError(errPrimaryImageGone)
	verr = nil
	require.ErrorAs(t, mapped, &verr)
	assert.Contains(t, verr.Fields, "primary_image_id")

	plain := errors.New("disk on fire")
	assert.Equal(t, plain, mapSaveError(plain))

	assert.Equal(t, database.ErrNotFound, mapSaveError(database.ErrNotFound))
}
