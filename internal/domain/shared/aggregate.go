package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// CommunityAggregateRoot extends BaseAggregateRoot with community scoping.
// Every ledger row belongs to exactly one residential community; queries and
// mutations are always scoped by CommunityID.
type CommunityAggregateRoot struct {
	BaseAggregateRoot
	CommunityID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid;index"` // Opaque host identity that created this record
}

// NewCommunityAggregateRoot creates a new community-scoped aggregate root
func NewCommunityAggregateRoot(communityID uuid.UUID) CommunityAggregateRoot {
	return CommunityAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CommunityID:       communityID,
	}
}

// NewCommunityAggregateRootWithCreator creates a community-scoped aggregate root with creator info
func NewCommunityAggregateRootWithCreator(communityID, createdBy uuid.UUID) CommunityAggregateRoot {
	return CommunityAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CommunityID:       communityID,
		CreatedBy:         &createdBy,
	}
}

// SetCreatedBy sets the creator identity
func (c *CommunityAggregateRoot) SetCreatedBy(id uuid.UUID) {
	c.CreatedBy = &id
}

// GetCreatedBy returns the creator identity
func (c *CommunityAggregateRoot) GetCreatedBy() *uuid.UUID {
	return c.CreatedBy
}
