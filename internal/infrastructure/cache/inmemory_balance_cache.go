package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/condominio/backend/internal/domain/billing"
)

// DefaultBalanceTTL bounds staleness when an invalidation event is lost
const DefaultBalanceTTL = 15 * time.Minute

// balanceEntry holds a cached balance with its expiration time
type balanceEntry struct {
	balance   *billing.UnitBalance
	expiresAt time.Time
}

// InMemoryUnitBalanceCache is a single-process balance cache.
// Suitable for development and tests; deployments with more than one
// instance should use Redis so invalidations reach every replica.
type InMemoryUnitBalanceCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]balanceEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryUnitBalanceCache creates an in-memory cache with a background
// cleanup goroutine. A non-positive ttl falls back to DefaultBalanceTTL.
func NewInMemoryUnitBalanceCache(ttl time.Duration) *InMemoryUnitBalanceCache {
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}

	cache := &InMemoryUnitBalanceCache{
		entries:  make(map[uuid.UUID]balanceEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	// Start background cleanup goroutine
	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached balance for a unit, or nil on a miss
func (c *InMemoryUnitBalanceCache) Get(_ context.Context, unitID uuid.UUID) (*billing.UnitBalance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[unitID]
	if !exists {
		return nil, nil
	}

	if time.Now().After(entry.expiresAt) {
		// Expired entry, treated as a miss; cleanup will remove it
		return nil, nil
	}

	return entry.balance, nil
}

// Set stores the balance keyed by its unit ID
func (c *InMemoryUnitBalanceCache) Set(_ context.Context, balance *billing.UnitBalance) error {
	if balance == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[balance.UnitID] = balanceEntry{
		balance:   balance,
		expiresAt: time.Now().Add(c.ttl),
	}

	return nil
}

// Invalidate drops the cached balances for the given units
func (c *InMemoryUnitBalanceCache) Invalidate(_ context.Context, unitIDs ...uuid.UUID) error {
	if len(unitIDs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range unitIDs {
		delete(c.entries, id)
	}

	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryUnitBalanceCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopChan:
			return
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryUnitBalanceCache) cleanup() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Close stops the background cleanup goroutine
func (c *InMemoryUnitBalanceCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of entries currently held (for testing)
func (c *InMemoryUnitBalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryUnitBalanceCache implements UnitBalanceCache
var _ billing.UnitBalanceCache = (*InMemoryUnitBalanceCache)(nil)
