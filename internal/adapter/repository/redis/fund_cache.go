package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
	"github.com/iho/gofunds/internal/usecase"
)

const (
	fundKeyPrefix  = "gofunds:fund:"
	fundListActive = "gofunds:funds:active"
	fundListAll    = "gofunds:funds:all"
)

// FundCache decorates a usecase.FundRepository with a read-through Redis cache.
// Writes go to the wrapped repository first and then evict the affected keys.
// Redis errors never fail a read; the wrapped repository answers instead.
type FundCache struct {
	next    usecase.FundRepository
	client  redis.UniversalClient
	ttl     time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewFundCache creates a new FundCache.
func NewFundCache(next usecase.FundRepository, client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *FundCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FundCache{next: next, client: client, ttl: ttl, logger: logger}
}

// WithMetrics records hits and misses.
func (c *FundCache) WithMetrics(m *metrics.Metrics) *FundCache {
	c.metrics = m
	return c
}

func (c *FundCache) Create(ctx context.Context, fund *domain.Fund) error {
	if err := c.next.Create(ctx, fund); err != nil {
		return err
	}
	c.evict(ctx, fundListActive, fundListAll)
	return nil
}

func (c *FundCache) Update(ctx context.Context, fund *domain.Fund) error {
	if err := c.next.Update(ctx, fund); err != nil {
		return err
	}
	c.evict(ctx, fundKeyPrefix+fund.ID, fundListActive, fundListAll)
	return nil
}

func (c *FundCache) GetByID(ctx context.Context, id string) (*domain.Fund, error) {
	var fund domain.Fund
	if c.load(ctx, fundKeyPrefix+id, &fund) {
		return &fund, nil
	}

	got, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, fundKeyPrefix+id, got)
	return got, nil
}

func (c *FundCache) List(ctx context.Context, activeOnly bool) ([]*domain.Fund, error) {
	key := fundListAll
	if activeOnly {
		key = fundListActive
	}

	var funds []*domain.Fund
	if c.load(ctx, key, &funds) {
		return funds, nil
	}

	funds, err := c.next.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, funds)
	return funds, nil
}

func (c *FundCache) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.observe("miss")
		return false
	case err != nil:
		c.observe("error")
		c.logger.Warn().Err(err).Str("key", key).Msg("fund cache read failed")
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.observe("error")
		c.logger.Warn().Err(err).Str("key", key).Msg("fund cache entry corrupt")
		return false
	}
	c.observe("hit")
	return true
}

func (c *FundCache) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("fund cache write failed")
	}
}

func (c *FundCache) evict(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("fund cache eviction failed")
	}
}

func (c *FundCache) observe(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
