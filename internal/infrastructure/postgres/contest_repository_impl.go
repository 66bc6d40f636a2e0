package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/internal/domain/repository"
)

type CompetitionRepository struct {
	pool *pgxpool.Pool
}

func NewCompetitionRepository(pool *pgxpool.Pool) *CompetitionRepository {
	return &CompetitionRepository{pool: pool}
}

func (r *CompetitionRepository) Create(ctx context.Context, c *entity.Competition) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO competitions (title, status, start_of_accepting, end_of_accepting, summing_up)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, c.Title, string(c.Status), c.StartOfAccepting, c.EndOfAccepting, c.SummingUp)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func scanCompetition(row pgx.Row) (*entity.Competition, error) {
	c := &entity.Competition{}
	var status string
	if err := row.Scan(&c.ID, &c.Title, &status, &c.StartOfAccepting, &c.EndOfAccepting,
		&c.SummingUp, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	c.Status = entity.CompetitionStatus(status)
	return c, nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, id string) (*entity.Competition, error) {
	return scanCompetition(r.pool.QueryRow(ctx, `
		SELECT id, title, status, start_of_accepting, end_of_accepting, summing_up, created_at, updated_at
		FROM competitions WHERE id = $1
	`, id))
}

func (r *CompetitionRepository) List(ctx context.Context) ([]entity.Competition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, status, start_of_accepting, end_of_accepting, summing_up, created_at, updated_at
		FROM competitions ORDER BY start_of_accepting DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Competition{}
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type NominationRepository struct {
	pool *pgxpool.Pool
}

func NewNominationRepository(pool *pgxpool.Pool) *NominationRepository {
	return &NominationRepository{pool: pool}
}

func (r *NominationRepository) Create(ctx context.Context, n *entity.Nomination) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO nominations (competition_id, title, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, n.CompetitionID, n.Title, string(n.Status))
	if err := row.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func scanNomination(row pgx.Row) (*entity.Nomination, error) {
	n := &entity.Nomination{}
	var status string
	var winner *string
	if err := row.Scan(&n.ID, &n.CompetitionID, &n.Title, &status, &winner,
		&n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	n.Status = entity.NominationStatus(status)
	if winner != nil {
		n.WinnerArtworkID = *winner
	}
	return n, nil
}

func (r *NominationRepository) GetByID(ctx context.Context, id string) (*entity.Nomination, error) {
	return scanNomination(r.pool.QueryRow(ctx, `
		SELECT id, competition_id, title, status, winner_artwork_id, created_at, updated_at
		FROM nominations WHERE id = $1
	`, id))
}

func (r *NominationRepository) ListActiveByCompetition(ctx context.Context, competitionID string) ([]entity.Nomination, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, competition_id, title, status, winner_artwork_id, created_at, updated_at
		FROM nominations WHERE competition_id = $1 AND status = 'active'
		ORDER BY title
	`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Nomination{}
	for rows.Next() {
		n, err := scanNomination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

func (r *NominationRepository) CloseWithWinner(ctx context.Context, nominationID, artworkID string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE nominations
		SET status = 'closed', winner_artwork_id = $1, updated_at = now()
		WHERE id = $2
	`, artworkID, nominationID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var (
	_ repository.CompetitionRepository = (*CompetitionRepository)(nil)
	_ repository.NominationRepository  = (*NominationRepository)(nil)
)
