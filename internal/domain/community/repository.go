package community

import (
	"context"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UnitFilter defines filter criteria for unit queries
type UnitFilter struct {
	shared.Filter
	CommunityID *uuid.UUID
	Kind        *UnitKind
	OwnerID     *uuid.UUID
	ActiveOnly  bool
}

// OwnerFilter defines filter criteria for owner queries
type OwnerFilter struct {
	shared.Filter
	CommunityID *uuid.UUID
	ActiveOnly  bool
}

// CommunityRepository defines the interface for community persistence
type CommunityRepository interface {
	// FindByID finds a community by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Community, error)

	// FindByCode finds a community by its short code
	FindByCode(ctx context.Context, code string) (*Community, error)

	// FindAll finds all communities matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Community, error)

	// FindActive finds all active communities
	FindActive(ctx context.Context, filter shared.Filter) ([]Community, error)

	// Save creates or updates a community
	Save(ctx context.Context, c *Community) error

	// ExistsByCode checks if a community with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Count counts communities matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// OwnerRepository defines the interface for owner persistence
type OwnerRepository interface {
	// FindByID finds an owner by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)

	// FindByEmail finds an owner by its normalized email
	FindByEmail(ctx context.Context, email string) (*Owner, error)

	// FindByCommunity finds owners belonging to a community
	FindByCommunity(ctx context.Context, communityID uuid.UUID, filter OwnerFilter) ([]Owner, error)

	// Save creates or updates an owner
	Save(ctx context.Context, o *Owner) error

	// ExistsByEmail checks if an owner with the given email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Count counts owners matching the filter
	Count(ctx context.Context, filter OwnerFilter) (int64, error)
}

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	// FindByID finds a unit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// FindByReference finds a unit by community and reference
	FindByReference(ctx context.Context, communityID uuid.UUID, reference string) (*Unit, error)

	// FindByCommunity finds units belonging to a community
	FindByCommunity(ctx context.Context, communityID uuid.UUID, filter UnitFilter) ([]Unit, error)

	// FindActiveByCommunity finds the active units of a community ordered by reference
	FindActiveByCommunity(ctx context.Context, communityID uuid.UUID) ([]Unit, error)

	// FindByOwner finds the unit currently assigned to an owner
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*Unit, error)

	// Save creates or updates a unit
	Save(ctx context.Context, u *Unit) error

	// ExistsByReference checks if a unit with the given reference exists in a community
	ExistsByReference(ctx context.Context, communityID uuid.UUID, reference string) (bool, error)

	// Count counts units matching the filter
	Count(ctx context.Context, filter UnitFilter) (int64, error)
}
