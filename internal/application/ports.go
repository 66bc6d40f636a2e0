package application

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the durable artwork store. Key derivation is the
// caller's job; the store only guarantees durability.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (url string, err error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Notifier hands an email job to the background dispatch queue.
// Best effort: publish failures are logged by callers, never returned
// to the end user, and are not retried (the user-facing "resend" action
// is the recovery path).
type Notifier interface {
	PublishJSON(ctx context.Context, body any) error
}

// SessionRevoker drops a user's server-side session record so tokens
// already in flight stop passing the session check.
type SessionRevoker interface {
	Destroy(ctx context.Context, userID string)
}

// ArtworkIndexer mirrors submissions into the search index. Indexing is
// best effort and must never fail a submission.
type ArtworkIndexer interface {
	Index(ctx context.Context, doc ArtworkDoc) error
	Search(ctx context.Context, query string, size int) ([]ArtworkDoc, error)
}

// ArtworkDoc is the search-index projection of an artwork.
type ArtworkDoc struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	AuthorName   string `json:"author_name"`
	NominationID string `json:"nomination_id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}
