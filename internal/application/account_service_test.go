package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/pkg/helpers"
	"github.com/palitra-app/palitra/pkg/mailer"
)

func newAccountService(users *fakeUserRepo, notifier *fakeNotifier) *AccountService {
	return NewAccountService(users, notifier, testLogger(), time.Hour,
		"http://app.local/verify-email", "http://app.local/reset-password", true)
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newAccountService(users, notifier)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "anna@example.com",
		Password: "secret-password",
		Name:     "Anna",
		Role:     entity.RoleParticipant,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Status != entity.StatusPending {
		t.Errorf("status = %q, want pending", u.Status)
	}
	if u.VerificationToken == "" || u.VerificationIssuedAt == nil {
		t.Error("verification token not issued")
	}
	if u.Password == "secret-password" {
		t.Error("password stored in plain text")
	}
	if len(notifier.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(notifier.published))
	}
	job, ok := notifier.published[0].(mailer.EmailJob)
	if !ok {
		t.Fatalf("published %T, want mailer.EmailJob", notifier.published[0])
	}
	if job.To != "anna@example.com" || job.Template != "verify_email" {
		t.Errorf("job = %+v, want verify_email to anna@example.com", job)
	}
}

func TestRegisterNeverGrantsAdmin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAccountService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "mallory@example.com",
		Password: "secret-password",
		Name:     "Mallory",
		Role:     entity.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != entity.RoleParticipant {
		t.Errorf("role = %q, want participant", u.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAccountService(users, &fakeNotifier{})
	ctx := context.Background()

	in := RegisterInput{Email: "anna@example.com", Password: "secret-password", Name: "Anna"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrDuplicateAccount) {
		t.Errorf("second Register err = %v, want ErrDuplicateAccount", err)
	}
}

func TestVerifyEmailActivatesAndBurnsToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAccountService(users, &fakeNotifier{})
	ctx := context.Background()

	reg, _ := svc.Register(ctx, RegisterInput{Email: "anna@example.com", Password: "secret-password", Name: "Anna"})
	tok := reg.VerificationToken

	u, retried, err := svc.VerifyEmail(ctx, tok)
	if err != nil || retried {
		t.Fatalf("VerifyEmail = (retried=%v, err=%v), want clean success", retried, err)
	}
	if u.Status != entity.StatusActive {
		t.Errorf("status = %q, want active", u.Status)
	}
	if u.VerificationToken != "" {
		t.Error("token not cleared after use")
	}

	// single use: the same token must not work twice
	if _, _, err := svc.VerifyEmail(ctx, tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replay err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyEmailExpiredTokenReissues(t *testing.T) {
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newAccountService(users, notifier)
	ctx := context.Background()

	reg, _ := svc.Register(ctx, RegisterInput{Email: "anna@example.com", Password: "secret-password", Name: "Anna"})
	old := reg.VerificationToken
	stale := time.Now().Add(-2 * time.Hour)
	reg.VerificationIssuedAt = &stale

	u, retried, err := svc.VerifyEmail(ctx, old)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !retried {
		t.Fatal("retried = false, want reissue on expired token")
	}
	if u.Status != entity.StatusPending {
		t.Errorf("status = %q, want still pending", u.Status)
	}
	if u.VerificationToken == old || u.VerificationToken == "" {
		t.Error("expired token was not replaced")
	}
	if len(notifier.published) != 2 {
		t.Errorf("published %d jobs, want 2 (register + reissue)", len(notifier.published))
	}
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc := newAccountService(newFakeUserRepo(), &fakeNotifier{})
	if _, _, err := svc.VerifyEmail(context.Background(), "no-such-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestResendVerification(t *testing.T) {
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newAccountService(users, notifier)
	ctx := context.Background()

	reg, _ := svc.Register(ctx, RegisterInput{Email: "anna@example.com", Password: "secret-password", Name: "Anna"})
	old := reg.VerificationToken

	if err := svc.ResendVerification(ctx, "anna@example.com"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if reg.VerificationToken == old {
		t.Error("token not rotated on resend")
	}

	// unknown address and already active accounts are silent no-ops
	if err := svc.ResendVerification(ctx, "ghost@example.com"); err != nil {
		t.Errorf("unknown email err = %v, want nil", err)
	}
	reg.Status = entity.StatusActive
	sent := len(notifier.published)
	if err := svc.ResendVerification(ctx, "anna@example.com"); err != nil {
		t.Errorf("active account err = %v, want nil", err)
	}
	if len(notifier.published) != sent {
		t.Error("email sent for already active account")
	}
}

func TestAuthenticateStatusGating(t *testing.T) {
	hash, err := helpers.HashPassword("secret-password")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		status   entity.UserStatus
		password string
		wantErr  error
	}{
		{"active", entity.StatusActive, "secret-password", nil},
		{"wrong password", entity.StatusActive, "wrong", ErrInvalidCredentials},
		{"pending", entity.StatusPending, "secret-password", ErrVerificationRequired},
		{"banned", entity.StatusBanned, "secret-password", ErrAccountBanned},
		{"inactive", entity.StatusInactive, "secret-password", ErrAccountInactive},
		{"unknown status", entity.UserStatus("weird"), "secret-password", ErrVerificationRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUserRepo()
			users.add(&entity.User{Email: "anna@example.com", Password: hash, Status: tt.status})
			svc := newAccountService(users, &fakeNotifier{})

			_, err := svc.Authenticate(context.Background(), "anna@example.com", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := newAccountService(newFakeUserRepo(), &fakeNotifier{})
	if _, err := svc.Authenticate(context.Background(), "ghost@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticatePropagatesStorageErrors(t *testing.T) {
	users := newFakeUserRepo()
	dbErr := errors.New("connection refused")
	users.emailErr = dbErr
	svc := newAccountService(users, &fakeNotifier{})

	_, err := svc.Authenticate(context.Background(), "anna@example.com", "secret-password")
	if !errors.Is(err, dbErr) {
		t.Errorf("err = %v, want the storage error back", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("storage failure must not masquerade as bad credentials")
	}
}

func TestRequestPasswordResetHidesAccountState(t *testing.T) {
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newAccountService(users, notifier)
	ctx := context.Background()

	// unknown address reports success and sends nothing
	if err := svc.RequestPasswordReset(ctx, "ghost@example.com"); err != nil {
		t.Fatalf("unknown email err = %v, want nil", err)
	}
	if len(notifier.published) != 0 {
		t.Error("email sent for unknown address")
	}

	u := users.add(&entity.User{Email: "anna@example.com", Status: entity.StatusActive})
	if err := svc.RequestPasswordReset(ctx, "anna@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if u.ResetToken == "" || u.ResetIssuedAt == nil {
		t.Error("reset token not issued")
	}
	if len(notifier.published) != 1 {
		t.Errorf("published %d jobs, want 1", len(notifier.published))
	}
}

func TestResetPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAccountService(users, &fakeNotifier{})
	ctx := context.Background()

	u := users.add(&entity.User{Email: "anna@example.com", Status: entity.StatusActive})
	if err := svc.RequestPasswordReset(ctx, "anna@example.com"); err != nil {
		t.Fatal(err)
	}
	tok := u.ResetToken

	got, err := svc.ResetPassword(ctx, tok, "brand-new-password")
	if err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if !helpers.CompareHashAndPassword(got.Password, "brand-new-password") {
		t.Error("password not updated")
	}
	if got.ResetToken != "" {
		t.Error("reset token not cleared")
	}

	if _, err := svc.ResetPassword(ctx, tok, "another-password"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("replay err = %v, want ErrInvalidToken", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAccountService(users, &fakeNotifier{})
	ctx := context.Background()

	u := users.add(&entity.User{Email: "anna@example.com", Status: entity.StatusActive})
	if err := svc.RequestPasswordReset(ctx, "anna@example.com"); err != nil {
		t.Fatal(err)
	}
	stale := time.Now().Add(-2 * time.Hour)
	u.ResetIssuedAt = &stale

	if _, err := svc.ResetPassword(ctx, u.ResetToken, "new-password"); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}
