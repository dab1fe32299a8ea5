package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/treviro/treviro_service/internal/domain/entities"
	"github.com/treviro/treviro_service/internal/infrastructure/config"
	"github.com/treviro/treviro_service/pkg/logger"
)

// SummaryCache caches dashboard summaries in Redis as JSON. Failures are
// logged and treated as misses: the repository remains the source of truth.
type SummaryCache struct {
	client *redis.Client
	logger *logger.Logger
	ttl    time.Duration
}

// NewClient connects to Redis per the config.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewSummaryCache creates a summary cache with the given TTL.
func NewSummaryCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SummaryCache {
	return &SummaryCache{
		client: client,
		logger: log,
		ttl:    ttl,
	}
}

func summaryKey(userID uuid.UUID) string {
	return "treviro:dashboard:" + userID.String()
}

// Get returns the cached summary, or false on miss or error.
func (c *SummaryCache) Get(ctx context.Context, userID uuid.UUID) (*entities.DashboardSummary, bool) {
	data, err := c.client.Get(ctx, summaryKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warnw("summary cache read failed", "error", err, "user_id", userID)
		return nil, false
	}

	var summary entities.DashboardSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.Warnw("summary cache entry corrupt", "error", err, "user_id", userID)
		return nil, false
	}
	return &summary, true
}

// Set stores the summary. Errors are logged, not surfaced.
func (c *SummaryCache) Set(ctx context.Context, summary *entities.DashboardSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		c.logger.Warnw("summary cache marshal failed", "error", err, "user_id", summary.UserID)
		return
	}
	if err := c.client.Set(ctx, summaryKey(summary.UserID), data, c.ttl).Err(); err != nil {
		c.logger.Warnw("summary cache write failed", "error", err, "user_id", summary.UserID)
	}
}

// Invalidate drops the user's cached summary.
func (c *SummaryCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, summaryKey(userID)).Err(); err != nil {
		c.logger.Warnw("summary cache invalidation failed", "error", err, "user_id", userID)
	}
}
