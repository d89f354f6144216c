package images

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadKey_ExtensionPolicy(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{"jpg kept", "photo.jpg", ".jpg"},
		{"jpeg kept", "photo.jpeg", ".jpeg"},
		{"png kept", "photo.png", ".png"},
		{"webp kept", "photo.webp", ".webp"},
		{"gif kept", "photo.gif", ".gif"},
		{"avif kept", "photo.avif", ".avif"},
		{"uppercase normalized", "PHOTO.PNG", ".png"},
		{"mixed case normalized", "Photo.JpEg", ".jpeg"},
		{"unknown extension", "document.bmp", ".jpg"},
		{"executable extension", "payload.exe", ".jpg"},
		{"no extension", "photo", ".jpg"},
		{"empty filename", "", ".jpg"},
		{"dotfile", ".gitignore", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := UploadKey(tt.filename)
			assert.True(t, strings.HasPrefix(key, "cars/"))
			assert.True(t, strings.HasSuffix(key, tt.wantExt), "key %q should end with %q", key, tt.wantExt)
		})
	}
}

func TestUploadKey_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := UploadKey("photo.jpg")
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
}

func TestUploadKey_HexIdentifier(t *testing.T) {
	key := UploadKey("photo.png")
	base := strings.TrimPrefix(key, "cars/")
	base = strings.TrimSuffix(base, ".png")
	assert.Len(t, base, 32)
	for _, r := range base {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestThumbnailKey_Derivation(t *testing.T) {
	tests := []struct {
		originalKey string
		want        string
	}{
		{"cars/abc123.png", "cars/thumbnails/abc123_thumb.jpg"},
		{"cars/abc123.jpg", "cars/thumbnails/abc123_thumb.jpg"},
		{"cars/deadbeef.webp", "cars/thumbnails/deadbeef_thumb.jpg"},
		{"noprefix.gif", "cars/thumbnails/noprefix_thumb.jpg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ThumbnailKey(tt.originalKey))
	}
}

func TestThumbnailKey_Pure(t *testing.T) {
	key := UploadKey("photo.png")
	first := ThumbnailKey(key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ThumbnailKey(key))
	}
}

func TestJPEGKey(t *testing.T) {
	assert.Equal(t, "cars/abc.jpg", JPEGKey("cars/abc.png"))
	assert.Equal(t, "cars/abc.jpg", JPEGKey("cars/abc.jpg"))
	assert.Equal(t, "cars/abc.jpg", JPEGKey("cars/abc.webp"))
}
