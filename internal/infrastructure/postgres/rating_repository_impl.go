package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/internal/domain/repository"
)

type RatingRepository struct {
	pool *pgxpool.Pool
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Upsert relies on the (artwork_id, juror_id) unique constraint, so a
// concurrent double vote can never produce two rows. xmax = 0 holds
// only for freshly inserted rows, which tells insert from overwrite.
func (r *RatingRepository) Upsert(ctx context.Context, rt *entity.Rating) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ratings (artwork_id, juror_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (artwork_id, juror_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = now()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`, rt.ArtworkID, rt.JurorID, rt.Score)

	var created bool
	if err := row.Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt, &created); err != nil {
		return false, mapWriteErr(err)
	}
	return created, nil
}

func (r *RatingRepository) SummaryByArtwork(ctx context.Context, artworkID string) (*entity.RatingSummary, error) {
	s := &entity.RatingSummary{ArtworkID: artworkID}
	err := r.pool.QueryRow(ctx, `
		SELECT coalesce(avg(score), 0), count(*) FROM ratings WHERE artwork_id = $1
	`, artworkID).Scan(&s.Average, &s.Count)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RatingRepository) BestByNomination(ctx context.Context, nominationID string) (*entity.RatingSummary, error) {
	s := &entity.RatingSummary{}
	err := r.pool.QueryRow(ctx, `
		SELECT r.artwork_id, avg(r.score), count(*)
		FROM ratings r
		JOIN artworks a ON a.id = r.artwork_id
		WHERE a.nomination_id = $1
		GROUP BY r.artwork_id
		ORDER BY avg(r.score) DESC, count(*) DESC
		LIMIT 1
	`, nominationID).Scan(&s.ArtworkID, &s.Average, &s.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

var _ repository.RatingRepository = (*RatingRepository)(nil)
