package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/infrastructure/config"
)

// BalanceCacheFactory creates unit balance caches based on configuration
type BalanceCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BalanceCacheFactoryOption is a functional option for configuring the factory
type BalanceCacheFactoryOption func(*BalanceCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.logger = logger
	}
}

// WithTTL sets how long cached balances stay valid without an invalidation
func WithTTL(ttl time.Duration) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBalanceCacheFactory creates a new factory
func NewBalanceCacheFactory(cfg config.RedisConfig, opts ...BalanceCacheFactoryOption) *BalanceCacheFactory {
	f := &BalanceCacheFactory{
		redisConfig:           cfg,
		ttl:                   DefaultBalanceTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true, // Default to allowing fallback
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-backed balance cache
func (f *BalanceCacheFactory) CreateRedisCache() (billing.UnitBalanceCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisUnitBalanceCache(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis balance cache: %w", err)
	}

	return cache, nil
}

// CreateInMemoryCache creates an in-memory balance cache
// This is suitable for single-instance deployments and testing
// WARNING: In-memory caches do not share invalidations across process
// instances, so replicas can serve stale balances until the TTL expires
func (f *BalanceCacheFactory) CreateInMemoryCache() billing.UnitBalanceCache {
	return NewInMemoryUnitBalanceCache(f.ttl)
}

// CreateCache creates a balance cache based on whether Redis is available
// It tries to create a Redis cache first, and falls back to in-memory if Redis is not available
// and AllowInMemoryFallback is true
func (f *BalanceCacheFactory) CreateCache() (billing.UnitBalanceCache, error) {
	// Try Redis first
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis balance cache")
		return cache, nil
	}

	// Check if fallback is allowed
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for balance cache but unavailable: %w", err)
	}

	// Fall back to in-memory with warning
	f.logger.Warn("Redis unavailable, falling back to in-memory balance cache. "+
		"Replicas may serve stale balances until entries expire.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
