package community

import (
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeOwner = "Owner"

// Event type constants
const (
	EventTypeOwnerRegistered    = "OwnerRegistered"
	EventTypeOwnerUpdated       = "OwnerUpdated"
	EventTypeOwnerStatusChanged = "OwnerStatusChanged"
)

// OwnerRegisteredEvent is published when a new owner is registered
type OwnerRegisteredEvent struct {
	shared.BaseDomainEvent
	OwnerID   uuid.UUID `json:"owner_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email"`
}

// NewOwnerRegisteredEvent creates a new OwnerRegisteredEvent
func NewOwnerRegisteredEvent(o *Owner) *OwnerRegisteredEvent {
	return &OwnerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOwnerRegistered, AggregateTypeOwner, o.ID, o.CommunityID),
		OwnerID:         o.ID,
		FirstName:       o.FirstName,
		LastName:        o.LastName,
		Email:           o.Email,
	}
}

// OwnerUpdatedEvent is published when an owner's details change
type OwnerUpdatedEvent struct {
	shared.BaseDomainEvent
	OwnerID   uuid.UUID `json:"owner_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email"`
}

// NewOwnerUpdatedEvent creates a new OwnerUpdatedEvent
func NewOwnerUpdatedEvent(o *Owner) *OwnerUpdatedEvent {
	return &OwnerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOwnerUpdated, AggregateTypeOwner, o.ID, o.CommunityID),
		OwnerID:         o.ID,
		FirstName:       o.FirstName,
		LastName:        o.LastName,
		Email:           o.Email,
	}
}

// OwnerStatusChangedEvent is published when an owner is activated or deactivated
type OwnerStatusChangedEvent struct {
	shared.BaseDomainEvent
	OwnerID   uuid.UUID `json:"owner_id"`
	OldActive bool      `json:"old_active"`
	NewActive bool      `json:"new_active"`
}

// NewOwnerStatusChangedEvent creates a new OwnerStatusChangedEvent
func NewOwnerStatusChangedEvent(o *Owner, oldActive, newActive bool) *OwnerStatusChangedEvent {
	return &OwnerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOwnerStatusChanged, AggregateTypeOwner, o.ID, o.CommunityID),
		OwnerID:         o.ID,
		OldActive:       oldActive,
		NewActive:       newActive,
	}
}
