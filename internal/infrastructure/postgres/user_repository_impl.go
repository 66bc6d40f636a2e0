package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/internal/domain/repository"
)

const uniqueViolation = "23505"

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, surname, age, bio, role, status,
		verification_token, verification_issued_at, reset_token, reset_issued_at,
		created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role, status string
	var verifyTok, resetTok *string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Surname, &u.Age, &u.Bio,
		&role, &status, &verifyTok, &u.VerificationIssuedAt, &resetTok, &u.ResetIssuedAt,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.Role = entity.ParseRole(role)
	u.Status = entity.UserStatus(status)
	if verifyTok != nil {
		u.VerificationToken = *verifyTok
	}
	if resetTok != nil {
		u.ResetToken = *resetTok
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, surname, age, bio, role, status,
			verification_token, verification_issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Surname, u.Age, u.Bio, string(u.Role), string(u.Status),
		nullable(u.VerificationToken), u.VerificationIssuedAt)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = $1`, token))
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, userID, token string, issuedAt time.Time, status entity.UserStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET verification_token = $1, verification_issued_at = $2, status = $3, updated_at = now()
		WHERE id = $4
	`, token, issuedAt, string(status), userID)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken activates the account and clears the token
// in one statement, so a replay of the same token matches no row.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET status = 'active', verification_token = NULL, verification_issued_at = NULL, updated_at = now()
		WHERE verification_token = $1
		RETURNING `+userColumns+`
	`, token))
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, token string, issuedAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET reset_token = $1, reset_issued_at = $2, updated_at = now()
		WHERE id = $3
	`, token, issuedAt, userID)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_issued_at = NULL, updated_at = now()
		WHERE reset_token = $2
		RETURNING `+userColumns+`
	`, passwordHash, token))
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID string, status entity.UserStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ repository.UserRepository = (*UserRepository)(nil)
