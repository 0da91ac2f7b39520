package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/condominio/backend/internal/domain/billing"
)

const defaultBalanceKeyPrefix = "billing:balance:"

// RedisUnitBalanceCache caches unit balances in Redis.
// This is suitable for distributed deployments where multiple instances
// need to share cached balances and see each other's invalidations.
type RedisUnitBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisUnitBalanceCache creates a Redis-backed balance cache.
// A non-positive ttl falls back to DefaultBalanceTTL.
func NewRedisUnitBalanceCache(cfg RedisConfig, ttl time.Duration) (*RedisUnitBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisUnitBalanceCacheWithClient(client, defaultBalanceKeyPrefix, ttl), nil
}

// NewRedisUnitBalanceCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisUnitBalanceCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisUnitBalanceCache {
	if keyPrefix == "" {
		keyPrefix = defaultBalanceKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}

	return &RedisUnitBalanceCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached balance for a unit, or nil on a miss
func (c *RedisUnitBalanceCache) Get(ctx context.Context, unitID uuid.UUID) (*billing.UnitBalance, error) {
	payload, err := c.client.Get(ctx, c.key(unitID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read balance from Redis: %w", err)
	}

	var balance billing.UnitBalance
	if err := json.Unmarshal(payload, &balance); err != nil {
		return nil, fmt.Errorf("failed to decode cached balance: %w", err)
	}

	return &balance, nil
}

// Set stores the balance keyed by its unit ID, with the configured TTL
func (c *RedisUnitBalanceCache) Set(ctx context.Context, balance *billing.UnitBalance) error {
	if balance == nil {
		return nil
	}

	payload, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to encode balance: %w", err)
	}

	if err := c.client.Set(ctx, c.key(balance.UnitID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write balance to Redis: %w", err)
	}

	return nil
}

// Invalidate drops the cached balances for the given units
func (c *RedisUnitBalanceCache) Invalidate(ctx context.Context, unitIDs ...uuid.UUID) error {
	if len(unitIDs) == 0 {
		return nil
	}

	keys := make([]string, len(unitIDs))
	for i, id := range unitIDs {
		keys[i] = c.key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate balances in Redis: %w", err)
	}

	return nil
}

func (c *RedisUnitBalanceCache) key(unitID uuid.UUID) string {
	return c.keyPrefix + unitID.String()
}

// Close closes the Redis connection
func (c *RedisUnitBalanceCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing)
func (c *RedisUnitBalanceCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisUnitBalanceCache implements UnitBalanceCache
var _ billing.UnitBalanceCache = (*RedisUnitBalanceCache)(nil)
