package community

import (
	"strings"
	"time"

	"github.com/condominio/backend/internal/domain/shared"
)

// Community represents a residential community (fraccionamiento)
// It is the aggregate root for community-related operations and the
// tenancy boundary for every other aggregate in the system
type Community struct {
	shared.BaseAggregateRoot
	Name    string `gorm:"type:varchar(200);not null;index"`
	Code    string `gorm:"type:varchar(50);index"` // Optional short key, unique when present
	Address string `gorm:"type:text"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Community) TableName() string {
	return "communities"
}

// NewCommunity creates a new community with required fields
func NewCommunity(name string) (*Community, error) {
	if err := validateCommunityName(name); err != nil {
		return nil, err
	}

	community := &Community{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Active:            true,
	}

	community.AddDomainEvent(NewCommunityCreatedEvent(community))

	return community, nil
}

// Update updates the community's basic information
func (c *Community) Update(name, address string) error {
	if err := validateCommunityName(name); err != nil {
		return err
	}
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	c.Name = name
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCommunityUpdatedEvent(c))

	return nil
}

// SetCode sets the community's optional short code
func (c *Community) SetCode(code string) error {
	if code != "" {
		if err := validateCommunityCode(code); err != nil {
			return err
		}
		code = strings.ToUpper(code)
	}

	c.Code = code
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate activates the community
func (c *Community) Activate() error {
	if c.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Community is already active")
	}

	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCommunityStatusChangedEvent(c, false, true))

	return nil
}

// Deactivate deactivates the community
func (c *Community) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Community is already inactive")
	}

	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCommunityStatusChangedEvent(c, true, false))

	return nil
}

// IsActive returns true if the community is active
func (c *Community) IsActive() bool {
	return c.Active
}

// Validation functions

func validateCommunityName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Community name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Community name cannot exceed 200 characters")
	}
	return nil
}

func validateCommunityCode(code string) error {
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Community code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Community code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
