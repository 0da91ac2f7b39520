package community

import (
	"regexp"
	"strings"
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Owner represents a unit owner (propietario) registered in a community
type Owner struct {
	shared.CommunityAggregateRoot
	FirstName string `gorm:"type:varchar(80);not null"`
	LastName  string `gorm:"type:varchar(120)"`
	Email     string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone     string `gorm:"type:varchar(30);index"`
	TaxID     string `gorm:"type:varchar(40)"` // RFC
	Notes     string `gorm:"type:text"`
	Active    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Owner) TableName() string {
	return "owners"
}

// NewOwner creates a new owner with required fields
// The email is normalized to lower case before it is stored
func NewOwner(communityID uuid.UUID, firstName, lastName, email string) (*Owner, error) {
	if communityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMMUNITY", "Community ID is required")
	}
	if err := validateOwnerName(firstName, lastName); err != nil {
		return nil, err
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	owner := &Owner{
		CommunityAggregateRoot: shared.NewCommunityAggregateRoot(communityID),
		FirstName:              firstName,
		LastName:               lastName,
		Email:                  normalized,
		Active:                 true,
	}

	owner.AddDomainEvent(NewOwnerRegisteredEvent(owner))

	return owner, nil
}

// Update updates the owner's name
func (o *Owner) Update(firstName, lastName string) error {
	if err := validateOwnerName(firstName, lastName); err != nil {
		return err
	}

	o.FirstName = firstName
	o.LastName = lastName
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOwnerUpdatedEvent(o))

	return nil
}

// UpdateEmail updates the owner's email address
func (o *Owner) UpdateEmail(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	o.Email = normalized
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOwnerUpdatedEvent(o))

	return nil
}

// SetContact sets the owner's phone and tax ID
func (o *Owner) SetContact(phone, taxID string) error {
	if phone != "" && len(phone) > 30 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 30 characters")
	}
	if taxID != "" && len(taxID) > 40 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 40 characters")
	}

	o.Phone = phone
	o.TaxID = strings.ToUpper(taxID)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetNotes sets the owner's notes
func (o *Owner) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Activate activates the owner
func (o *Owner) Activate() error {
	if o.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Owner is already active")
	}

	o.Active = true
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOwnerStatusChangedEvent(o, false, true))

	return nil
}

// Deactivate deactivates the owner
func (o *Owner) Deactivate() error {
	if !o.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Owner is already inactive")
	}

	o.Active = false
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOwnerStatusChangedEvent(o, true, false))

	return nil
}

// IsActive returns true if the owner is active
func (o *Owner) IsActive() bool {
	return o.Active
}

// FullName returns the owner's display name
func (o *Owner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// Validation functions

func validateOwnerName(firstName, lastName string) error {
	if firstName == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if len(firstName) > 80 {
		return shared.NewDomainError("INVALID_NAME", "First name cannot exceed 80 characters")
	}
	if len(lastName) > 120 {
		return shared.NewDomainError("INVALID_NAME", "Last name cannot exceed 120 characters")
	}
	return nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(normalized) > 200 {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(normalized) {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return normalized, nil
}
