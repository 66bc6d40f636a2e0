package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/palitra-app/palitra/internal/domain/entity"
	repo "github.com/palitra-app/palitra/internal/domain/repository"
	"github.com/palitra-app/palitra/internal/domain/token"
	"github.com/palitra-app/palitra/pkg/helpers"
	"github.com/palitra-app/palitra/pkg/mailer"
	tpl "github.com/palitra-app/palitra/pkg/mailer/templates"
)

// AccountService drives the account lifecycle: registration, email
// verification, login status gating and the password reset cycle.
type AccountService struct {
	Users    repo.UserRepository
	Notifier Notifier
	Logger   *logrus.Logger

	TokenTTL    time.Duration
	VerifyURL   string
	ResetURL    string
	MailEnabled bool
}

func NewAccountService(users repo.UserRepository, notifier Notifier, logger *logrus.Logger, tokenTTL time.Duration, verifyURL, resetURL string, mailEnabled bool) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = token.DefaultTTL
	}
	return &AccountService{
		Users:       users,
		Notifier:    notifier,
		Logger:      logger,
		TokenTTL:    tokenTTL,
		VerifyURL:   verifyURL,
		ResetURL:    resetURL,
		MailEnabled: mailEnabled,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Surname  string
	Age      int
	Bio      string
	Role     entity.Role
}

// Register creates a pending account, issues a verification token and
// enqueues the verification email. The user row and its token are
// written in a single insert, so a failed write leaves nothing behind.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	tok, err := token.New()
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role != entity.RoleParticipant && role != entity.RoleJury {
		// admin accounts come from the seed tool, never from signup
		role = entity.RoleParticipant
	}

	now := time.Now().UTC()
	u := &entity.User{
		Email:                in.Email,
		Password:             hash,
		Name:                 in.Name,
		Surname:              in.Surname,
		Age:                  in.Age,
		Bio:                  in.Bio,
		Role:                 role,
		Status:               entity.StatusPending,
		VerificationToken:    tok,
		VerificationIssuedAt: &now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	s.sendVerification(ctx, u, tok)
	return u, nil
}

// VerifyEmail consumes a verification token and activates the account.
// An expired token is not a hard failure: a fresh token is issued and
// re-sent, and retried=true tells the caller a new attempt is possible.
func (s *AccountService) VerifyEmail(ctx context.Context, tok string) (u *entity.User, retried bool, err error) {
	u, err = s.Users.GetByVerificationToken(ctx, tok)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, ErrInvalidToken
		}
		return nil, false, err
	}

	if token.Expired(u.VerificationIssuedAt, s.TokenTTL, time.Now()) {
		if err := s.reissueVerification(ctx, u); err != nil {
			return nil, false, err
		}
		return u, true, nil
	}

	u, err = s.Users.ConsumeVerificationToken(ctx, tok)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// consumed concurrently between lookup and update
			return nil, false, ErrInvalidToken
		}
		return nil, false, err
	}
	return u, false, nil
}

// ResendVerification re-issues the verification token. Success is a
// no-op when the account is already active or does not exist, so the
// endpoint does not leak account state.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.Status == entity.StatusActive {
		return nil
	}
	return s.reissueVerification(ctx, u)
}

func (s *AccountService) reissueVerification(ctx context.Context, u *entity.User) error {
	tok, err := token.New()
	if err != nil {
		return err
	}
	if err := s.Users.SetVerificationToken(ctx, u.ID, tok, time.Now().UTC(), entity.StatusPending); err != nil {
		return err
	}
	s.sendVerification(ctx, u, tok)
	return nil
}

// Authenticate validates credentials and gates on account status.
// Any status outside the closed set is treated as not activated.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	switch u.Status {
	case entity.StatusActive:
		return u, nil
	case entity.StatusBanned:
		return nil, ErrAccountBanned
	case entity.StatusInactive:
		return nil, ErrAccountInactive
	default:
		return nil, ErrVerificationRequired
	}
}

// RequestPasswordReset always reports success so the endpoint cannot be
// used to probe for registered emails.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	tok, err := token.New()
	if err != nil {
		return err
	}
	if err := s.Users.SetResetToken(ctx, u.ID, tok, time.Now().UTC()); err != nil {
		return err
	}
	s.sendReset(ctx, u, tok)
	return nil
}

// ResetPassword replaces the credential and consumes the reset token in
// one update. The returned user lets the handler establish a session
// (auto-login after reset).
func (s *AccountService) ResetPassword(ctx context.Context, tok, newPassword string) (*entity.User, error) {
	u, err := s.Users.GetByResetToken(ctx, tok)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if token.Expired(u.ResetIssuedAt, s.TokenTTL, time.Now()) {
		return nil, ErrTokenExpired
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	u, err = s.Users.ConsumeResetToken(ctx, tok, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// GetProfile returns the account by id.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AccountService) sendVerification(ctx context.Context, u *entity.User, tok string) {
	s.enqueue(ctx, u, tpl.VerifyEmail, tpl.EmailData{
		Name:      u.Name,
		VerifyURL: s.VerifyURL + "?token=" + tok,
		ExpiresIn: s.TokenTTL.String(),
	})
}

func (s *AccountService) sendReset(ctx context.Context, u *entity.User, tok string) {
	s.enqueue(ctx, u, tpl.ResetPassword, tpl.EmailData{
		Name:      u.Name,
		ResetURL:  s.ResetURL + "?token=" + tok,
		ExpiresIn: s.TokenTTL.String(),
	})
}

// enqueue hands the email to the dispatch queue. Failures are logged
// and swallowed: the triggering request must not fail or block on mail.
func (s *AccountService) enqueue(ctx context.Context, u *entity.User, template string, data tpl.EmailData) {
	if s.Notifier == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{To: u.Email, Template: template, Data: tpl.ToMap(data)}
	if err := s.Notifier.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue email")
	}
}
