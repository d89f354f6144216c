// Package storage is the blob-store collaborator: originals and thumbnails
// are addressed by opaque keys, backed either by a local directory or by a
// Supabase Storage bucket.
package storage

import (
	"context"
	"io"
)

type BlobStore interface {
	// Exists reports whether a blob is present at key.
	Exists(ctx context.Context, key string) (bool, error)
	// Open returns the blob's contents for reading. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Save writes data at key, replacing any existing blob.
	Save(ctx context.Context, key string, data []byte) error
	// Delete removes the blob at key. Missing blobs are not an error.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the externally reachable URL for key.
	PublicURL(key string) string
}
