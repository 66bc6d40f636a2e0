package gcs

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// ArtworkStorage stores artwork binaries in a GCS bucket and hands out
// short-lived signed URLs for viewing.
type ArtworkStorage struct {
	client *storage.Client
	bucket string
}

func NewArtworkStorage(client *storage.Client, bucket string) *ArtworkStorage {
	return &ArtworkStorage{client: client, bucket: bucket}
}

func (s *ArtworkStorage) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, key, contentType, r)
}

func (s *ArtworkStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
}

var _ application.ObjectStorage = (*ArtworkStorage)(nil)
