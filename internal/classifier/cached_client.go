package classifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fightprob/internal/config"
)

// CachedClient wraps a Client with score caching
type CachedClient struct {
	client Client
	cache  *scoreCache
	logger *logrus.Logger
}

// NewCachedClient creates a caching wrapper around the HTTP classifier client
func NewCachedClient(cfg *config.ClassifierConfig, logger *logrus.Logger) *CachedClient {
	return WrapWithCache(
		NewHTTPClient(cfg, logger),
		time.Duration(cfg.CacheTTLSeconds)*time.Second,
		cfg.CacheMaxSize,
		logger,
	)
}

// WrapWithCache wraps an arbitrary Client with a score cache
func WrapWithCache(client Client, ttl time.Duration, maxSize int, logger *logrus.Logger) *CachedClient {
	return &CachedClient{
		client: client,
		cache:  newScoreCache(ttl, maxSize),
		logger: logger,
	}
}

// PredictProba returns a cached score when present, otherwise calls the
// underlying client and caches the result.
func (c *CachedClient) PredictProba(ctx context.Context, boutID uuid.UUID, features []float64, modelVersion string) (*Score, error) {
	key := scoreKey{BoutID: boutID, ModelVersion: modelVersion}

	if cached := c.cache.Get(key); cached != nil {
		if c.logger != nil {
			c.logger.WithField("bout_id", boutID).Debug("Score cache hit")
		}
		return cached, nil
	}

	score, err := c.client.PredictProba(ctx, boutID, features, modelVersion)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, score)
	return score, nil
}

// HealthCheck delegates to the underlying client
func (c *CachedClient) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// ClearCache flushes all cached scores. Called after each model refresh.
func (c *CachedClient) ClearCache() {
	c.cache.Clear()
}
