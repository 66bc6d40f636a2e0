package container

import (
	"context"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/palitra-app/palitra/config"
	pginfra "github.com/palitra-app/palitra/internal/infrastructure/postgres"
	"github.com/palitra-app/palitra/pkg/helpers"
)

// Container holds the shared infrastructure clients, built once at
// startup and passed down explicitly. No package-level state.
type Container struct {
	Cfg    *config.Config
	Logger *logrus.Logger

	PG    *pgxpool.Pool
	Redis *redis.Client
	GCS   *storage.Client
	ES    *elasticsearch.Client

	JWT    *helpers.JWTManager
	Rabbit *helpers.RabbitPublisher
}

// New builds all infrastructure clients. Postgres, Redis and GCS are
// required; RabbitMQ and Elasticsearch degrade to nil (email and search
// become no-ops) so a partial local stack still boots.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, err
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, err
	}

	c := &Container{
		Cfg:    cfg,
		Logger: logger,
		PG:     pool,
		Redis:  rdb,
		GCS:    gcsClient,
		JWT:    helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
	}

	if pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue); err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, email dispatch disabled")
	} else {
		c.Rabbit = pub
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable, artwork search disabled")
	} else {
		c.ES = es
	}

	return c, nil
}

// Close releases every client the container owns.
func (c *Container) Close() {
	if c.Rabbit != nil {
		c.Rabbit.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PG != nil {
		c.PG.Close()
	}
}
