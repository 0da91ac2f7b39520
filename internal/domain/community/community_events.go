package community

import (
	"github.com/condominio/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCommunity = "Community"

// Event type constants
const (
	EventTypeCommunityCreated       = "CommunityCreated"
	EventTypeCommunityUpdated       = "CommunityUpdated"
	EventTypeCommunityStatusChanged = "CommunityStatusChanged"
)

// CommunityCreatedEvent is published when a new community is created
type CommunityCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// NewCommunityCreatedEvent creates a new CommunityCreatedEvent
func NewCommunityCreatedEvent(c *Community) *CommunityCreatedEvent {
	return &CommunityCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommunityCreated, AggregateTypeCommunity, c.ID, c.ID),
		Name:            c.Name,
		Code:            c.Code,
	}
}

// CommunityUpdatedEvent is published when a community is updated
type CommunityUpdatedEvent struct {
	shared.BaseDomainEvent
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// NewCommunityUpdatedEvent creates a new CommunityUpdatedEvent
func NewCommunityUpdatedEvent(c *Community) *CommunityUpdatedEvent {
	return &CommunityUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommunityUpdated, AggregateTypeCommunity, c.ID, c.ID),
		Name:            c.Name,
		Address:         c.Address,
	}
}

// CommunityStatusChangedEvent is published when a community is activated or deactivated
type CommunityStatusChangedEvent struct {
	shared.BaseDomainEvent
	Name      string `json:"name"`
	OldActive bool   `json:"old_active"`
	NewActive bool   `json:"new_active"`
}

// NewCommunityStatusChangedEvent creates a new CommunityStatusChangedEvent
func NewCommunityStatusChangedEvent(c *Community, oldActive, newActive bool) *CommunityStatusChangedEvent {
	return &CommunityStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommunityStatusChanged, AggregateTypeCommunity, c.ID, c.ID),
		Name:            c.Name,
		OldActive:       oldActive,
		NewActive:       newActive,
	}
}
