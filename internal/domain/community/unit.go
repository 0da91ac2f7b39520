package community

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitKind represents the kind of dwelling a unit is
type UnitKind string

const (
	UnitKindHouse     UnitKind = "HOUSE"
	UnitKindApartment UnitKind = "APT"
)

// IsValid checks if the unit kind is a known value
func (k UnitKind) IsValid() bool {
	switch k {
	case UnitKindHouse, UnitKindApartment:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind
func (k UnitKind) String() string {
	return string(k)
}

// Unit represents a dwelling (casa or departamento) inside a community
// It is the aggregate root the billing ledger charges against
type Unit struct {
	shared.CommunityAggregateRoot
	Kind      UnitKind                  `gorm:"type:varchar(10);not null;default:'HOUSE'"`
	Reference string                    `gorm:"type:varchar(80);not null;uniqueIndex:idx_unit_community_reference,priority:2"` // Ej: Casa 4A, Depto 301
	Address   valueobject.StreetAddress `gorm:"type:jsonb"`
	LandArea  *decimal.Decimal          `gorm:"type:decimal(10,2)"` // m2 of land, when known
	BuiltArea *decimal.Decimal          `gorm:"type:decimal(10,2)"` // m2 of construction, when known
	OwnerID   *uuid.UUID                `gorm:"type:uuid;uniqueIndex"` // Current owner, one unit per owner
	Notes     string                    `gorm:"type:text"`
	Active    bool                      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Unit) TableName() string {
	return "units"
}

// NewUnit creates a new unit with required fields
func NewUnit(communityID uuid.UUID, kind UnitKind, reference string, address valueobject.StreetAddress) (*Unit, error) {
	if communityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMMUNITY", "Community ID is required")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unit kind must be 'HOUSE' or 'APT'")
	}
	if err := validateUnitReference(reference); err != nil {
		return nil, err
	}

	unit := &Unit{
		CommunityAggregateRoot: shared.NewCommunityAggregateRoot(communityID),
		Kind:                   kind,
		Reference:              reference,
		Address:                address,
		Active:                 true,
	}

	unit.AddDomainEvent(NewUnitRegisteredEvent(unit))

	return unit, nil
}

// Update updates the unit's reference and address
func (u *Unit) Update(reference string, address valueobject.StreetAddress) error {
	if err := validateUnitReference(reference); err != nil {
		return err
	}

	u.Reference = reference
	u.Address = address
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetAreas sets the unit's land and construction surface in square meters
func (u *Unit) SetAreas(landArea, builtArea *decimal.Decimal) error {
	if landArea != nil && landArea.IsNegative() {
		return shared.NewDomainError("INVALID_AREA", "Land area cannot be negative")
	}
	if builtArea != nil && builtArea.IsNegative() {
		return shared.NewDomainError("INVALID_AREA", "Built area cannot be negative")
	}

	u.LandArea = landArea
	u.BuiltArea = builtArea
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetNotes sets the unit's notes
func (u *Unit) SetNotes(notes string) {
	u.Notes = notes
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// AssignOwner assigns the current owner of the unit
// The owner must belong to the same community as the unit
func (u *Unit) AssignOwner(owner *Owner) error {
	if owner == nil {
		return shared.NewDomainError("INVALID_OWNER", "Owner is required")
	}
	if owner.CommunityID != u.CommunityID {
		return shared.NewDomainError("COMMUNITY_MISMATCH", "Owner does not belong to this community")
	}
	if !owner.IsActive() {
		return shared.NewDomainError("OWNER_INACTIVE", "Cannot assign an inactive owner")
	}
	if u.OwnerID != nil && *u.OwnerID == owner.ID {
		return shared.NewDomainError("ALREADY_ASSIGNED", "Owner is already assigned to this unit")
	}

	previous := u.OwnerID
	ownerID := owner.ID
	u.OwnerID = &ownerID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUnitOwnerAssignedEvent(u, previous, owner))

	return nil
}

// ClearOwner removes the unit's current owner
func (u *Unit) ClearOwner() error {
	if u.OwnerID == nil {
		return shared.NewDomainError("NO_OWNER", "Unit has no owner assigned")
	}

	previous := *u.OwnerID
	u.OwnerID = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUnitOwnerClearedEvent(u, previous))

	return nil
}

// Activate activates the unit
func (u *Unit) Activate() error {
	if u.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Unit is already active")
	}

	u.Active = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUnitStatusChangedEvent(u, false, true))

	return nil
}

// Deactivate deactivates the unit
// Deactivated units are skipped by charge generation but keep their ledger history
func (u *Unit) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Unit is already inactive")
	}

	u.Active = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUnitStatusChangedEvent(u, true, false))

	return nil
}

// IsActive returns true if the unit is active
func (u *Unit) IsActive() bool {
	return u.Active
}

// HasOwner returns true if the unit has a current owner
func (u *Unit) HasOwner() bool {
	return u.OwnerID != nil
}

// IsHouse returns true if the unit is a house
func (u *Unit) IsHouse() bool {
	return u.Kind == UnitKindHouse
}

// IsApartment returns true if the unit is an apartment
func (u *Unit) IsApartment() bool {
	return u.Kind == UnitKindApartment
}

// Validation functions

func validateUnitReference(reference string) error {
	if reference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Unit reference cannot be empty")
	}
	if len(reference) > 80 {
		return shared.NewDomainError("INVALID_REFERENCE", "Unit reference cannot exceed 80 characters")
	}
	return nil
}
