package router

import (
	app "github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/internal/container"
	gcsinfra "github.com/palitra-app/palitra/internal/infrastructure/gcs"
	pginfra "github.com/palitra-app/palitra/internal/infrastructure/postgres"
	"github.com/palitra-app/palitra/internal/infrastructure/search"
	handlers "github.com/palitra-app/palitra/internal/interface/http"
	"github.com/palitra-app/palitra/internal/router/modules"
)

// InitModules builds repositories, services and handlers from the
// container and registers every feature module. Called once at startup.
func InitModules(r *Registry, c *container.Container) {
	users := pginfra.NewUserRepository(c.PG)
	competitions := pginfra.NewCompetitionRepository(c.PG)
	nominations := pginfra.NewNominationRepository(c.PG)
	artworks := pginfra.NewArtworkRepository(c.PG)
	ratings := pginfra.NewRatingRepository(c.PG)

	storage := gcsinfra.NewArtworkStorage(c.GCS, c.Cfg.GCSBucket)

	var indexer app.ArtworkIndexer
	if c.ES != nil {
		indexer = search.NewArtworkIndex(c.ES, c.Cfg.ESArtworksIndex)
	}

	var notifier app.Notifier
	if c.Rabbit != nil {
		notifier = c.Rabbit
	}

	accounts := app.NewAccountService(users, notifier, c.Logger,
		c.Cfg.TokenTTL, c.Cfg.VerifyEmailURL, c.Cfg.ResetPasswordURL, c.Cfg.MailSendEnabled)
	sessions := app.NewSessionService(users, c.JWT, c.Redis, c.Logger)
	submissions := app.NewSubmissionService(competitions, nominations, artworks, storage, indexer, c.Logger, c.Cfg.SubmissionLimit)
	ratingsSvc := app.NewRatingService(artworks, nominations, competitions, ratings, c.Logger)
	contests := app.NewContestService(competitions, nominations, artworks, ratings, users, sessions, c.Logger)

	authHandler := handlers.NewAuthHandler(accounts, sessions, c.Logger, c.Cfg.CookieDomain, c.Cfg.CookieSecure)
	submissionHandler := handlers.NewSubmissionHandler(submissions, contests, c.Logger)
	ratingHandler := handlers.NewRatingHandler(ratingsSvc, c.Logger)
	adminHandler := handlers.NewAdminHandler(contests, c.Logger)

	r.Add(modules.NewAuthModule(authHandler, c.JWT, c.Redis))
	r.Add(modules.NewContestModule(submissionHandler, c.JWT, c.Redis))
	r.Add(modules.NewJuryModule(ratingHandler, c.JWT, c.Redis))
	r.Add(modules.NewAdminModule(adminHandler, c.JWT, c.Redis))
	if c.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
