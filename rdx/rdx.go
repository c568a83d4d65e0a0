package rdx

import (
	"context"
	"encoding/json"
	"time"

	"carenest/config"
	"carenest/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	catalogKey = "services:catalog"
	catalogTTL = 5 * time.Minute
)

// Cache is a best-effort Redis cache for the unfiltered service catalog
// listing. All methods tolerate a nil receiver, so callers can hold a nil
// *Cache when REDIS_URL is unset and skip caching entirely.
type Cache struct {
	conn *redis.Client
	log  *logrus.Logger
}

func New(cfg *config.Config, log *logrus.Logger) *Cache {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set; catalog cache disabled")
		return nil
	}
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	return &Cache{conn: conn, log: log}
}

func (c *Cache) GetCatalog(ctx context.Context) ([]models.Service, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.conn.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Debug("catalog cache read failed")
		}
		return nil, false
	}
	var services []models.Service
	if err := json.Unmarshal(raw, &services); err != nil {
		c.log.WithError(err).Debug("catalog cache decode failed")
		return nil, false
	}
	return services, true
}

func (c *Cache) SetCatalog(ctx context.Context, services []models.Service) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(services)
	if err != nil {
		return
	}
	if err := c.conn.Set(ctx, catalogKey, raw, catalogTTL).Err(); err != nil {
		c.log.WithError(err).Debug("catalog cache write failed")
	}
}

// InvalidateCatalog drops the cached listing; called after every catalog
// write so reads never serve a stale catalog beyond the write itself.
func (c *Cache) InvalidateCatalog(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.conn.Del(ctx, catalogKey).Err(); err != nil {
		c.log.WithError(err).Debug("catalog cache invalidation failed")
	}
}
