package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/pkg/helpers"
	"github.com/palitra-app/palitra/pkg/response"
	"github.com/palitra-app/palitra/pkg/validation"
)

// AuthHandler covers registration, email verification, login/logout and
// the password reset cycle.
type AuthHandler struct {
	Accounts *app.AccountService
	Sessions *app.SessionService
	Logger   *logrus.Logger
	Cookies  *helpers.Manager
}

func NewAuthHandler(accounts *app.AccountService, sessions *app.SessionService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		Accounts: accounts,
		Sessions: sessions,
		Logger:   logger,
		Cookies:  helpers.NewCookie(cookieDomain, cookieSecure),
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname"`
	Age      int    `json:"age" binding:"omitempty,gte=0,lte=150"`
	Bio      string `json:"bio"`
	Role     string `json:"role" binding:"omitempty,oneof=participant jury"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

func userView(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"surname":    u.Surname,
		"age":        u.Age,
		"bio":        u.Bio,
		"role":       u.Role,
		"status":     u.Status,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Accounts.Register(c.Request.Context(), app.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
		Age:      req.Age,
		Bio:      req.Bio,
		Role:     entity.ParseRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, app.ErrDuplicateAccount) {
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, userView(u), "registered; check your email to activate the account", nil)
}

// VerifyEmail POST /api/verify-email {token}
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, retried, err := h.Accounts.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, app.ErrInvalidToken) {
			response.Error[any](c, http.StatusBadRequest, "invalid or already used token", nil)
			return
		}
		h.Logger.WithError(err).Error("email verification failed")
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	if retried {
		response.Success[any](c, http.StatusOK, gin.H{"verified": false, "resent": true},
			"token expired; a fresh verification link has been sent", nil)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "email verified", nil)
}

// ResendVerification POST /api/resend-verification {email}
// Always answers OK so the endpoint cannot probe for accounts.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Accounts.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("resend verification failed")
		response.Error[any](c, http.StatusInternalServerError, "could not resend verification", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a verification link was sent", nil)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrVerificationRequired):
			response.Error[any](c, http.StatusForbidden, "email not verified", nil)
		case errors.Is(err, app.ErrAccountBanned):
			response.Error[any](c, http.StatusForbidden, "account is banned", nil)
		case errors.Is(err, app.ErrAccountInactive):
			response.Error[any](c, http.StatusForbidden, "account is deactivated", nil)
		default:
			response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		}
		return
	}
	pair, err := h.Sessions.Issue(c.Request.Context(), u)
	if err != nil {
		h.Logger.WithError(err).Error("session issue failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, userView(u), "login successful",
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Refresh POST /api/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Sessions.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed",
		map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
}

// Logout POST /api/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Sessions.Destroy(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// ForgotPassword POST /api/forgot-password {email}
// Always answers OK to avoid enumeration.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("password reset request failed")
		response.Error[any](c, http.StatusInternalServerError, "could not start password reset", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the account exists, a reset link was sent", nil)
}

// ResetPassword POST /api/reset-password {token, new_password}
// A successful reset logs the user straight in.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrTokenExpired):
			response.Error[any](c, http.StatusBadRequest, "token expired, request a new reset link", nil)
		case errors.Is(err, app.ErrInvalidToken):
			response.Error[any](c, http.StatusBadRequest, "invalid or already used token", nil)
		default:
			h.Logger.WithError(err).Error("password reset failed")
			response.Error[any](c, http.StatusInternalServerError, "password reset failed", nil)
		}
		return
	}
	pair, err := h.Sessions.Issue(c.Request.Context(), u)
	if err != nil {
		// password is already changed; report success without a session
		h.Logger.WithError(err).Warn("session issue after reset failed")
		response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, userView(u), "password updated", nil)
}

// GetProfile GET /api/profile (auth required)
func (h *AuthHandler) GetProfile(c *gin.Context) {
	u, err := h.Accounts.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userView(u), "profile", nil)
}
