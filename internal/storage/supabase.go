package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	supastorage "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps blobs in a Supabase Storage bucket.
type SupabaseStore struct {
	client  *supastorage.Client
	bucket  string
	baseURL string
}

func NewSupabaseStore(supabaseURL, serviceKey, bucket string) (*SupabaseStore, error) {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := supastorage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &SupabaseStore{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

func (s *SupabaseStore) Exists(_ context.Context, key string) (bool, error) {
	dir, base := path.Split(key)
	files, err := s.client.ListFiles(s.bucket, strings.TrimRight(dir, "/"), supastorage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list files: %w", err)
	}
	for _, f := range files {
		if f.Name == base {
			return true, nil
		}
	}
	return false, nil
}

func (s *SupabaseStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *SupabaseStore) Save(_ context.Context, key string, data []byte) error {
	contentType := contentTypeForKey(key)
	upsert := true
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), supastorage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) Delete(_ context.Context, key string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{key})
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".avif":
		return "image/avif"
	default:
		return "image/jpeg"
	}
}
