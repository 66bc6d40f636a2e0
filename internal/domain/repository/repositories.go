package repository

import (
	"context"
	"errors"
	"time"

	"github.com/palitra-app/palitra/internal/domain/entity"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
	// ErrLimitExceeded is returned when a capped insert would pass the cap.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// UserRepository persists accounts and their lifecycle tokens.
// Token-consuming methods clear the token in the same statement as the
// state change they authorize, so a token can never be replayed.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)

	SetVerificationToken(ctx context.Context, userID, token string, issuedAt time.Time, status entity.UserStatus) error
	ConsumeVerificationToken(ctx context.Context, token string) (*entity.User, error)

	SetResetToken(ctx context.Context, userID, token string, issuedAt time.Time) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (*entity.User, error)

	UpdateStatus(ctx context.Context, userID string, status entity.UserStatus) error
}

type CompetitionRepository interface {
	Create(ctx context.Context, c *entity.Competition) error
	GetByID(ctx context.Context, id string) (*entity.Competition, error)
	List(ctx context.Context) ([]entity.Competition, error)
}

type NominationRepository interface {
	Create(ctx context.Context, n *entity.Nomination) error
	GetByID(ctx context.Context, id string) (*entity.Nomination, error)
	ListActiveByCompetition(ctx context.Context, competitionID string) ([]entity.Nomination, error)
	// CloseWithWinner marks the nomination closed and records the winning
	// artwork in one statement.
	CloseWithWinner(ctx context.Context, nominationID, artworkID string) error
}

// ArtworkRepository owns the per-user-per-nomination submission cap:
// CreateCapped counts and inserts inside one transaction with the
// nomination row locked, so concurrent submissions cannot overshoot.
type ArtworkRepository interface {
	CreateCapped(ctx context.Context, a *entity.Artwork, maxPerNomination int) error
	CountByUserAndNomination(ctx context.Context, userID, nominationID string) (int, error)
	GetByID(ctx context.Context, id string) (*entity.Artwork, error)
	ListByNomination(ctx context.Context, nominationID string) ([]entity.Artwork, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Artwork, error)
	ListByStatus(ctx context.Context, status entity.ArtworkStatus) ([]entity.Artwork, error)
	UpdateStatus(ctx context.Context, artworkID string, status entity.ArtworkStatus) error
}

type RatingRepository interface {
	// Upsert inserts or overwrites the (artwork, juror) score atomically
	// and reports whether a new row was created.
	Upsert(ctx context.Context, r *entity.Rating) (created bool, err error)
	SummaryByArtwork(ctx context.Context, artworkID string) (*entity.RatingSummary, error)
	// BestByNomination returns the highest-average artwork of a
	// nomination, ErrNotFound when nothing was rated.
	BestByNomination(ctx context.Context, nominationID string) (*entity.RatingSummary, error)
}
