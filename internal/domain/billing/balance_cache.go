package billing

import (
	"context"

	"github.com/google/uuid"
)

// UnitBalanceCache caches computed unit balances keyed by unit ID.
// Implementations return (nil, nil) on a cache miss; a cache failure is
// surfaced as an error and callers fall back to computing from the store.
// Entries are invalidated whenever the unit's ledger changes.
type UnitBalanceCache interface {
	// Get returns the cached balance for a unit, or nil on a miss
	Get(ctx context.Context, unitID uuid.UUID) (*UnitBalance, error)

	// Set stores the balance for its unit
	Set(ctx context.Context, balance *UnitBalance) error

	// Invalidate drops the cached balances for the given units
	Invalidate(ctx context.Context, unitIDs ...uuid.UUID) error
}
