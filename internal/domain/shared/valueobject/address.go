package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StreetAddress is a value object for a unit's location inside a community.
// It is immutable - all operations return new StreetAddress instances.
type StreetAddress struct {
	street         string
	exteriorNumber string
	interiorNumber string
	neighborhood   string
	postalCode     string
}

// StreetAddressOption is a functional option for configuring StreetAddress
type StreetAddressOption func(*StreetAddress)

// WithInteriorNumber sets the interior number (apartment/suite)
func WithInteriorNumber(number string) StreetAddressOption {
	return func(a *StreetAddress) {
		a.interiorNumber = strings.TrimSpace(number)
	}
}

// WithNeighborhood sets the neighborhood (colonia)
func WithNeighborhood(neighborhood string) StreetAddressOption {
	return func(a *StreetAddress) {
		a.neighborhood = strings.TrimSpace(neighborhood)
	}
}

// WithPostalCode sets the postal code
func WithPostalCode(postalCode string) StreetAddressOption {
	return func(a *StreetAddress) {
		a.postalCode = strings.TrimSpace(postalCode)
	}
}

// NewStreetAddress creates a new StreetAddress. Street and exterior number are
// required; interior number, neighborhood and postal code are optional.
func NewStreetAddress(street, exteriorNumber string, opts ...StreetAddressOption) (StreetAddress, error) {
	street = strings.TrimSpace(street)
	exteriorNumber = strings.TrimSpace(exteriorNumber)

	if street == "" {
		return StreetAddress{}, fmt.Errorf("street cannot be empty")
	}
	if len(street) > 200 {
		return StreetAddress{}, fmt.Errorf("street cannot exceed 200 characters")
	}
	if exteriorNumber == "" {
		return StreetAddress{}, fmt.Errorf("exterior number cannot be empty")
	}
	if len(exteriorNumber) > 20 {
		return StreetAddress{}, fmt.Errorf("exterior number cannot exceed 20 characters")
	}

	addr := StreetAddress{
		street:         street,
		exteriorNumber: exteriorNumber,
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if len(addr.interiorNumber) > 20 {
		return StreetAddress{}, fmt.Errorf("interior number cannot exceed 20 characters")
	}
	if len(addr.neighborhood) > 100 {
		return StreetAddress{}, fmt.Errorf("neighborhood cannot exceed 100 characters")
	}
	if len(addr.postalCode) > 10 {
		return StreetAddress{}, fmt.Errorf("postal code cannot exceed 10 characters")
	}

	return addr, nil
}

// MustNewStreetAddress creates a new StreetAddress, panics on error
func MustNewStreetAddress(street, exteriorNumber string, opts ...StreetAddressOption) StreetAddress {
	addr, err := NewStreetAddress(street, exteriorNumber, opts...)
	if err != nil {
		panic(err)
	}
	return addr
}

// EmptyStreetAddress returns an empty address (for optional address fields)
func EmptyStreetAddress() StreetAddress {
	return StreetAddress{}
}

// Street returns the street name
func (a StreetAddress) Street() string {
	return a.street
}

// ExteriorNumber returns the exterior number
func (a StreetAddress) ExteriorNumber() string {
	return a.exteriorNumber
}

// InteriorNumber returns the interior number
func (a StreetAddress) InteriorNumber() string {
	return a.interiorNumber
}

// Neighborhood returns the neighborhood
func (a StreetAddress) Neighborhood() string {
	return a.neighborhood
}

// PostalCode returns the postal code
func (a StreetAddress) PostalCode() string {
	return a.postalCode
}

// IsEmpty returns true if the address is empty
func (a StreetAddress) IsEmpty() bool {
	return a.street == "" && a.exteriorNumber == ""
}

// FullAddress returns the complete formatted address string
func (a StreetAddress) FullAddress() string {
	if a.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(a.street)
	sb.WriteString(" ")
	sb.WriteString(a.exteriorNumber)
	if a.interiorNumber != "" {
		sb.WriteString(" Int. ")
		sb.WriteString(a.interiorNumber)
	}
	if a.neighborhood != "" {
		sb.WriteString(", ")
		sb.WriteString(a.neighborhood)
	}
	if a.postalCode != "" {
		sb.WriteString(", CP ")
		sb.WriteString(a.postalCode)
	}
	return sb.String()
}

// String returns a string representation of the address
func (a StreetAddress) String() string {
	return a.FullAddress()
}

// Equals returns true if both addresses are equal
func (a StreetAddress) Equals(other StreetAddress) bool {
	return a.street == other.street &&
		a.exteriorNumber == other.exteriorNumber &&
		a.interiorNumber == other.interiorNumber &&
		a.neighborhood == other.neighborhood &&
		a.postalCode == other.postalCode
}

// streetAddressJSON is used for JSON marshaling/unmarshaling
type streetAddressJSON struct {
	Street         string `json:"street"`
	ExteriorNumber string `json:"exteriorNumber"`
	InteriorNumber string `json:"interiorNumber,omitempty"`
	Neighborhood   string `json:"neighborhood,omitempty"`
	PostalCode     string `json:"postalCode,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a StreetAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(streetAddressJSON{
		Street:         a.street,
		ExteriorNumber: a.exteriorNumber,
		InteriorNumber: a.interiorNumber,
		Neighborhood:   a.neighborhood,
		PostalCode:     a.postalCode,
	})
}

// UnmarshalJSON implements json.Unmarshaler. It delegates to NewStreetAddress
// so validation rules apply on every deserialization path.
func (a *StreetAddress) UnmarshalJSON(data []byte) error {
	var v streetAddressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	// Allow empty addresses from JSON
	if v.Street == "" && v.ExteriorNumber == "" {
		*a = EmptyStreetAddress()
		return nil
	}

	addr, err := NewStreetAddress(v.Street, v.ExteriorNumber,
		WithInteriorNumber(v.InteriorNumber),
		WithNeighborhood(v.Neighborhood),
		WithPostalCode(v.PostalCode))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer for database storage as a JSON column
func (a StreetAddress) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *StreetAddress) Scan(value any) error {
	if value == nil {
		*a = EmptyStreetAddress()
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StreetAddress", value)
	}

	if len(data) == 0 || string(data) == "null" {
		*a = EmptyStreetAddress()
		return nil
	}

	return json.Unmarshal(data, a)
}
