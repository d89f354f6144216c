// Package images holds the upload naming policy and the resize pipeline
// for car photos: originals are normalized to bounded JPEGs before they
// reach storage, thumbnails are derived lazily from stored originals.
package images

import (
	"encoding/hex"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	uploadPrefix    = "cars"
	thumbnailPrefix = "cars/thumbnails"
	thumbnailSuffix = "_thumb.jpg"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".avif": true,
}

// UploadKey builds the storage key for an uploaded file: a random 128-bit
// hex identifier under the upload prefix, keeping the upload's extension
// when it is on the allow-list and falling back to .jpg otherwise.
func UploadKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		ext = ".jpg"
	}
	id := uuid.New()
	return uploadPrefix + "/" + hex.EncodeToString(id[:]) + ext
}

// ThumbnailKey derives the thumbnail key from an original's key. It is a
// pure function of its input, so a thumbnail can always be located without
// a database lookup.
func ThumbnailKey(originalKey string) string {
	base := path.Base(originalKey)
	base = strings.TrimSuffix(base, path.Ext(base))
	return thumbnailPrefix + "/" + base + thumbnailSuffix
}

// JPEGKey rewrites a key's extension to .jpg. Normalization always
// re-encodes as JPEG, so a successfully normalized upload is stored under
// this key and the declared extension matches the encoded format.
func JPEGKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ".jpg"
}
