package images

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"carmarket-backend/internal/storage"
)

const (
	// OriginalBound is the bounding box applied to originals before they
	// are written to storage.
	OriginalBound = 1200
	// ThumbnailBound is the bounding box for derived thumbnails.
	ThumbnailBound = 400

	jpegQuality = 85
)

// Normalize decodes an uploaded payload, shrinks it to fit inside
// bound x bound preserving aspect ratio (never upscaling), and re-encodes
// it as a quality-85 JPEG. JPEG encoding flattens any exotic color mode,
// matching the save-safe conversion the listing photos need.
func Normalize(data []byte, bound int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Fit only scales down; an image already inside the box passes through
	// at its original size.
	img = imaging.Fit(img, bound, bound, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailStatus classifies the outcome of EnsureThumbnail.
type ThumbnailStatus int

const (
	ThumbnailGenerated ThumbnailStatus = iota
	ThumbnailExists
	ThumbnailFailed
)

// ThumbnailResult reports what EnsureThumbnail did for one original.
// Err is set only when Status is ThumbnailFailed.
type ThumbnailResult struct {
	Key    string
	Status ThumbnailStatus
	Err    error
}

// EnsureThumbnail generates the derived thumbnail for a stored original if
// it does not exist yet. The derivation is idempotent: an existing
// thumbnail short-circuits with zero storage writes. Failures are reported
// in the result rather than returned, so callers can log and move on;
// a broken thumbnail must never block the record save.
func EnsureThumbnail(ctx context.Context, store storage.BlobStore, originalKey string) ThumbnailResult {
	key := ThumbnailKey(originalKey)

	exists, err := store.Exists(ctx, key)
	if err != nil {
		return ThumbnailResult{Key: key, Status: ThumbnailFailed, Err: fmt.Errorf("failed to check thumbnail existence: %w", err)}
	}
	if exists {
		return ThumbnailResult{Key: key, Status: ThumbnailExists}
	}

	rc, err := store.Open(ctx, originalKey)
	if err != nil {
		return ThumbnailResult{Key: key, Status: ThumbnailFailed, Err: fmt.Errorf("failed to open original: %w", err)}
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return ThumbnailResult{Key: key, Status: ThumbnailFailed, Err: fmt.Errorf("failed to decode original: %w", err)}
	}
	img = imaging.Fit(img, ThumbnailBound, ThumbnailBound, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return ThumbnailResult{Key: key, Status: ThumbnailFailed, Err: fmt.Errorf("failed to encode thumbnail: %w", err)}
	}

	if err := store.Save(ctx, key, buf.Bytes()); err != nil {
		return ThumbnailResult{Key: key, Status: ThumbnailFailed, Err: fmt.Errorf("failed to save thumbnail: %w", err)}
	}
	return ThumbnailResult{Key: key, Status: ThumbnailGenerated}
}
