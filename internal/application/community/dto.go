package community

import (
	"time"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCommunityRequest represents a request to register a community
type CreateCommunityRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Code    string `json:"code" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

// UpdateCommunityRequest represents a request to update a community
type UpdateCommunityRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=500"`
}

// CommunityResponse represents a community in API responses
type CommunityResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddressInput carries the street address fields of a unit request. An
// input with neither street nor exterior number is treated as no address.
type AddressInput struct {
	Street         string `json:"street" validate:"max=200"`
	ExteriorNumber string `json:"exterior_number" validate:"max=20"`
	InteriorNumber string `json:"interior_number" validate:"max=20"`
	Neighborhood   string `json:"neighborhood" validate:"max=100"`
	PostalCode     string `json:"postal_code" validate:"max=10"`
}

// IsEmpty returns true when no address was provided
func (a AddressInput) IsEmpty() bool {
	return a.Street == "" && a.ExteriorNumber == ""
}

func (a AddressInput) toValueObject() (valueobject.StreetAddress, error) {
	if a.IsEmpty() {
		return valueobject.EmptyStreetAddress(), nil
	}
	return valueobject.NewStreetAddress(a.Street, a.ExteriorNumber,
		valueobject.WithInteriorNumber(a.InteriorNumber),
		valueobject.WithNeighborhood(a.Neighborhood),
		valueobject.WithPostalCode(a.PostalCode))
}

// RegisterUnitRequest represents a request to register a unit in a community
type RegisterUnitRequest struct {
	CommunityID uuid.UUID        `json:"community_id" validate:"required"`
	Kind        string           `json:"kind" validate:"required"`
	Reference   string           `json:"reference" validate:"required,max=80"`
	Address     AddressInput     `json:"address"`
	LandArea    *decimal.Decimal `json:"land_area,omitempty"`
	BuiltArea   *decimal.Decimal `json:"built_area,omitempty"`
	Notes       string           `json:"notes" validate:"max=2000"`
}

// UpdateUnitRequest represents a request to update a unit's reference,
// address, areas, and notes
type UpdateUnitRequest struct {
	Reference string           `json:"reference" validate:"required,max=80"`
	Address   AddressInput     `json:"address"`
	LandArea  *decimal.Decimal `json:"land_area,omitempty"`
	BuiltArea *decimal.Decimal `json:"built_area,omitempty"`
	Notes     string           `json:"notes" validate:"max=2000"`
}

// AssignOwnerRequest represents a request to assign a unit's current owner
type AssignOwnerRequest struct {
	UnitID  uuid.UUID `json:"unit_id" validate:"required"`
	OwnerID uuid.UUID `json:"owner_id" validate:"required"`
}

// UnitResponse represents a unit in API responses
type UnitResponse struct {
	ID          uuid.UUID        `json:"id"`
	CommunityID uuid.UUID        `json:"community_id"`
	Kind        community.UnitKind `json:"kind"`
	Reference   string           `json:"reference"`
	Address     string           `json:"address,omitempty"`
	LandArea    *decimal.Decimal `json:"land_area,omitempty"`
	BuiltArea   *decimal.Decimal `json:"built_area,omitempty"`
	OwnerID     *uuid.UUID       `json:"owner_id,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// RegisterOwnerRequest represents a request to register an owner
type RegisterOwnerRequest struct {
	CommunityID uuid.UUID `json:"community_id" validate:"required"`
	FirstName   string    `json:"first_name" validate:"required,max=80"`
	LastName    string    `json:"last_name" validate:"max=120"`
	Email       string    `json:"email" validate:"required,max=200"`
	Phone       string    `json:"phone" validate:"max=30"`
	TaxID       string    `json:"tax_id" validate:"max=40"`
	Notes       string    `json:"notes" validate:"max=2000"`
}

// UpdateOwnerRequest represents a request to update an owner's name and
// contact details
type UpdateOwnerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" validate:"max=120"`
	Phone     string `json:"phone" validate:"max=30"`
	TaxID     string `json:"tax_id" validate:"max=40"`
}

// OwnerResponse represents an owner in API responses
type OwnerResponse struct {
	ID          uuid.UUID `json:"id"`
	CommunityID uuid.UUID `json:"community_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCommunityResponse converts a community aggregate to a response DTO
func ToCommunityResponse(c *community.Community) CommunityResponse {
	return CommunityResponse{
		ID:        c.ID,
		Name:      c.Name,
		Code:      c.Code,
		Address:   c.Address,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToCommunityResponses converts a slice of communities to response DTOs
func ToCommunityResponses(communities []community.Community) []CommunityResponse {
	responses := make([]CommunityResponse, len(communities))
	for i := range communities {
		responses[i] = ToCommunityResponse(&communities[i])
	}
	return responses
}

// ToUnitResponse converts a unit aggregate to a response DTO
func ToUnitResponse(u *community.Unit) UnitResponse {
	return UnitResponse{
		ID:          u.ID,
		CommunityID: u.CommunityID,
		Kind:        u.Kind,
		Reference:   u.Reference,
		Address:     u.Address.FullAddress(),
		LandArea:    u.LandArea,
		BuiltArea:   u.BuiltArea,
		OwnerID:     u.OwnerID,
		Notes:       u.Notes,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUnitResponses converts a slice of units to response DTOs
func ToUnitResponses(units []community.Unit) []UnitResponse {
	responses := make([]UnitResponse, len(units))
	for i := range units {
		responses[i] = ToUnitResponse(&units[i])
	}
	return responses
}

// ToOwnerResponse converts an owner aggregate to a response DTO
func ToOwnerResponse(o *community.Owner) OwnerResponse {
	return OwnerResponse{
		ID:          o.ID,
		CommunityID: o.CommunityID,
		FirstName:   o.FirstName,
		LastName:    o.LastName,
		Email:       o.Email,
		Phone:       o.Phone,
		TaxID:       o.TaxID,
		Notes:       o.Notes,
		Active:      o.Active,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// ToOwnerResponses converts a slice of owners to response DTOs
func ToOwnerResponses(owners []community.Owner) []OwnerResponse {
	responses := make([]OwnerResponse, len(owners))
	for i := range owners {
		responses[i] = ToOwnerResponse(&owners[i])
	}
	return responses
}
