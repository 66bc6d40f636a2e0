package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/internal/domain/repository"
)

type ArtworkRepository struct {
	pool *pgxpool.Pool
}

func NewArtworkRepository(pool *pgxpool.Pool) *ArtworkRepository {
	return &ArtworkRepository{pool: pool}
}

// CreateCapped counts and inserts inside one transaction. The owning
// nomination row is locked first, so two concurrent submissions to the
// same nomination serialize and the cap holds.
func (r *ArtworkRepository) CreateCapped(ctx context.Context, a *entity.Artwork, maxPerNomination int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var nomID string
	if err := tx.QueryRow(ctx, `SELECT id FROM nominations WHERE id = $1 FOR UPDATE`, a.NominationID).Scan(&nomID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}

	var count int
	if err := tx.QueryRow(ctx, `
		SELECT count(*) FROM artworks WHERE user_id = $1 AND nomination_id = $2
	`, a.UserID, a.NominationID).Scan(&count); err != nil {
		return err
	}
	if count >= maxPerNomination {
		return repository.ErrLimitExceeded
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO artworks (user_id, nomination_id, object_key, display_name, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.NominationID, a.ObjectKey, a.DisplayName, string(a.Status))
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return tx.Commit(ctx)
}

func (r *ArtworkRepository) CountByUserAndNomination(ctx context.Context, userID, nominationID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM artworks WHERE user_id = $1 AND nomination_id = $2
	`, userID, nominationID).Scan(&count)
	return count, err
}

const artworkColumns = `id, user_id, nomination_id, object_key, display_name, status, created_at, updated_at`

func scanArtwork(row pgx.Row) (*entity.Artwork, error) {
	a := &entity.Artwork{}
	var status string
	if err := row.Scan(&a.ID, &a.UserID, &a.NominationID, &a.ObjectKey, &a.DisplayName,
		&status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	a.Status = entity.ArtworkStatus(status)
	return a, nil
}

func (r *ArtworkRepository) GetByID(ctx context.Context, id string) (*entity.Artwork, error) {
	return scanArtwork(r.pool.QueryRow(ctx, `SELECT `+artworkColumns+` FROM artworks WHERE id = $1`, id))
}

func (r *ArtworkRepository) listBy(ctx context.Context, where string, arg any) ([]entity.Artwork, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+artworkColumns+` FROM artworks WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Artwork{}
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *ArtworkRepository) ListByNomination(ctx context.Context, nominationID string) ([]entity.Artwork, error) {
	return r.listBy(ctx, `nomination_id = $1`, nominationID)
}

func (r *ArtworkRepository) ListByUser(ctx context.Context, userID string) ([]entity.Artwork, error) {
	return r.listBy(ctx, `user_id = $1`, userID)
}

func (r *ArtworkRepository) ListByStatus(ctx context.Context, status entity.ArtworkStatus) ([]entity.Artwork, error) {
	return r.listBy(ctx, `status = $1`, string(status))
}

func (r *ArtworkRepository) UpdateStatus(ctx context.Context, artworkID string, status entity.ArtworkStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE artworks SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), artworkID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.ArtworkRepository = (*ArtworkRepository)(nil)
