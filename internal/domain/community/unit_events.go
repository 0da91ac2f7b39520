package community

import (
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeUnit = "Unit"

// Event type constants
const (
	EventTypeUnitRegistered    = "UnitRegistered"
	EventTypeUnitOwnerAssigned = "UnitOwnerAssigned"
	EventTypeUnitOwnerCleared  = "UnitOwnerCleared"
	EventTypeUnitStatusChanged = "UnitStatusChanged"
)

// UnitRegisteredEvent is published when a new unit is registered
type UnitRegisteredEvent struct {
	shared.BaseDomainEvent
	UnitID    uuid.UUID `json:"unit_id"`
	Kind      UnitKind  `json:"kind"`
	Reference string    `json:"reference"`
}

// NewUnitRegisteredEvent creates a new UnitRegisteredEvent
func NewUnitRegisteredEvent(u *Unit) *UnitRegisteredEvent {
	return &UnitRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitRegistered, AggregateTypeUnit, u.ID, u.CommunityID),
		UnitID:          u.ID,
		Kind:            u.Kind,
		Reference:       u.Reference,
	}
}

// UnitOwnerAssignedEvent is published when a unit's current owner changes
type UnitOwnerAssignedEvent struct {
	shared.BaseDomainEvent
	UnitID          uuid.UUID  `json:"unit_id"`
	Reference       string     `json:"reference"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	OwnerName       string     `json:"owner_name"`
	PreviousOwnerID *uuid.UUID `json:"previous_owner_id,omitempty"`
}

// NewUnitOwnerAssignedEvent creates a new UnitOwnerAssignedEvent
func NewUnitOwnerAssignedEvent(u *Unit, previousOwnerID *uuid.UUID, owner *Owner) *UnitOwnerAssignedEvent {
	return &UnitOwnerAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitOwnerAssigned, AggregateTypeUnit, u.ID, u.CommunityID),
		UnitID:          u.ID,
		Reference:       u.Reference,
		OwnerID:         owner.ID,
		OwnerName:       owner.FullName(),
		PreviousOwnerID: previousOwnerID,
	}
}

// UnitOwnerClearedEvent is published when a unit's owner is removed
type UnitOwnerClearedEvent struct {
	shared.BaseDomainEvent
	UnitID          uuid.UUID `json:"unit_id"`
	Reference       string    `json:"reference"`
	PreviousOwnerID uuid.UUID `json:"previous_owner_id"`
}

// NewUnitOwnerClearedEvent creates a new UnitOwnerClearedEvent
func NewUnitOwnerClearedEvent(u *Unit, previousOwnerID uuid.UUID) *UnitOwnerClearedEvent {
	return &UnitOwnerClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitOwnerCleared, AggregateTypeUnit, u.ID, u.CommunityID),
		UnitID:          u.ID,
		Reference:       u.Reference,
		PreviousOwnerID: previousOwnerID,
	}
}

// UnitStatusChangedEvent is published when a unit is activated or deactivated
type UnitStatusChangedEvent struct {
	shared.BaseDomainEvent
	UnitID    uuid.UUID `json:"unit_id"`
	Reference string    `json:"reference"`
	OldActive bool      `json:"old_active"`
	NewActive bool      `json:"new_active"`
}

// NewUnitStatusChangedEvent creates a new UnitStatusChangedEvent
func NewUnitStatusChangedEvent(u *Unit, oldActive, newActive bool) *UnitStatusChangedEvent {
	return &UnitStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitStatusChanged, AggregateTypeUnit, u.ID, u.CommunityID),
		UnitID:          u.ID,
		Reference:       u.Reference,
		OldActive:       oldActive,
		NewActive:       newActive,
	}
}
