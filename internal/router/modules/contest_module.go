package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/palitra-app/palitra/internal/interface/http"
	"github.com/palitra-app/palitra/internal/interface/middleware"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// ContestModule wires the participant routes: browsing nominations,
// submitting artworks and searching the gallery.
type ContestModule struct {
	Handler *handlers.SubmissionHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewContestModule(h *handlers.SubmissionHandler, jwt *helpers.JWTManager, rdb *redis.Client) *ContestModule {
	return &ContestModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *ContestModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	{
		// uploads are the most expensive call in the API
		uploadLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil)
		auth.POST("/participate", uploadLimiter, m.Handler.Participate)

		auth.GET("/submissions", m.Handler.ListOwn)
		auth.GET("/nominations", m.Handler.OpenNominations)
		auth.GET("/nominations/:id/artworks", m.Handler.NominationArtworks)
		auth.GET("/artworks/:id/url", m.Handler.ArtworkURL)
		auth.GET("/artworks/search", m.Handler.Search)
	}
}
