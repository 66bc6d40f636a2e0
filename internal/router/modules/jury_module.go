package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/palitra-app/palitra/internal/domain/entity"
	handlers "github.com/palitra-app/palitra/internal/interface/http"
	"github.com/palitra-app/palitra/internal/interface/middleware"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// JuryModule wires the rating routes, gated on the jury role.
type JuryModule struct {
	Handler *handlers.RatingHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewJuryModule(h *handlers.RatingHandler, jwt *helpers.JWTManager, rdb *redis.Client) *JuryModule {
	return &JuryModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *JuryModule) Register(rg *gin.RouterGroup) {
	jury := rg.Group("/")
	jury.Use(middleware.Auth(m.Redis, m.JWT))
	jury.Use(middleware.RequireRole(entity.RoleJury, entity.RoleAdmin))
	{
		jury.POST("/ratings", m.Handler.Rate)
		jury.GET("/artworks/:id/rating", m.Handler.Summary)
	}
}
