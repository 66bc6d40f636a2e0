package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/palitra-app/palitra/internal/interface/http"
	"github.com/palitra-app/palitra/internal/interface/middleware"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// AuthModule wires the account lifecycle routes. Public endpoints get
// IP-based rate limits; the token endpoints are tighter than the rest.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 20, time.Minute, middleware.KeyByIPAndPath(), nil)
	tokenLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	mailLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register", registerLimiter, m.Handler.Register)
	rg.POST("/verify-email", tokenLimiter, m.Handler.VerifyEmail)
	rg.POST("/resend-verification", mailLimiter, m.Handler.ResendVerification)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", tokenLimiter, m.Handler.Refresh)
	rg.POST("/forgot-password", mailLimiter, m.Handler.ForgotPassword)
	rg.POST("/reset-password", tokenLimiter, m.Handler.ResetPassword)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/profile", m.Handler.GetProfile)
	}
}
