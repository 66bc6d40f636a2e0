package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/palitra-app/palitra/internal/domain/entity"
	handlers "github.com/palitra-app/palitra/internal/interface/http"
	"github.com/palitra-app/palitra/internal/interface/middleware"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// AdminModule wires the administrator routes, gated on the admin role.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.Redis, m.JWT))
	admin.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		admin.POST("/competitions", m.Handler.CreateCompetition)
		admin.GET("/competitions", m.Handler.ListCompetitions)
		admin.POST("/nominations", m.Handler.CreateNomination)
		admin.GET("/nominations/:id/artworks", m.Handler.NominationArtworks)
		admin.POST("/nominations/:id/winner", m.Handler.PickWinner)
		admin.GET("/artworks", m.Handler.ListArtworks)
		admin.PATCH("/artworks/:id/status", m.Handler.SetArtworkStatus)
		admin.PATCH("/users/:id/status", m.Handler.SetUserStatus)
	}
}
