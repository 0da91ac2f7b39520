package community

import (
	"testing"

	"github.com/condominio/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) valueobject.StreetAddress {
	addr, err := valueobject.NewStreetAddress("Calle Encino", "4", valueobject.WithInteriorNumber("A"))
	require.NoError(t, err)
	return addr
}

func createTestUnit(t *testing.T, communityID uuid.UUID) *Unit {
	unit, err := NewUnit(communityID, UnitKindHouse, "Casa 4A", testAddress(t))
	require.NoError(t, err)
	return unit
}

func TestUnitKind_IsValid(t *testing.T) {
	tests := []struct {
		kind    UnitKind
		isValid bool
	}{
		{UnitKindHouse, true},
		{UnitKindApartment, true},
		{UnitKind("CONDO"), false},
		{UnitKind(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.kind.IsValid())
		})
	}
}

func TestNewUnit(t *testing.T) {
	communityID := uuid.New()

	t.Run("creates unit with valid inputs", func(t *testing.T) {
		unit, err := NewUnit(communityID, UnitKindHouse, "Casa 4A", testAddress(t))

		require.NoError(t, err)
		assert.Equal(t, communityID, unit.CommunityID)
		assert.Equal(t, UnitKindHouse, unit.Kind)
		assert.Equal(t, "Casa 4A", unit.Reference)
		assert.True(t, unit.Active)
		assert.False(t, unit.HasOwner())

		events := unit.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUnitRegistered, events[0].EventType())
	})

	t.Run("fails with nil community", func(t *testing.T) {
		unit, err := NewUnit(uuid.Nil, UnitKindHouse, "Casa 4A", testAddress(t))

		assert.Error(t, err)
		assert.Nil(t, unit)
	})

	t.Run("fails with invalid kind", func(t *testing.T) {
		unit, err := NewUnit(communityID, UnitKind("CONDO"), "Casa 4A", testAddress(t))

		assert.Error(t, err)
		assert.Nil(t, unit)
	})

	t.Run("fails with empty reference", func(t *testing.T) {
		unit, err := NewUnit(communityID, UnitKindHouse, "", testAddress(t))

		assert.Error(t, err)
		assert.Nil(t, unit)
	})
}

func TestUnit_SetAreas(t *testing.T) {
	unit := createTestUnit(t, uuid.New())

	t.Run("sets both areas", func(t *testing.T) {
		land := decimal.NewFromFloat(120.50)
		built := decimal.NewFromFloat(98.00)

		err := unit.SetAreas(&land, &built)

		require.NoError(t, err)
		assert.True(t, unit.LandArea.Equal(land))
		assert.True(t, unit.BuiltArea.Equal(built))
	})

	t.Run("rejects negative area", func(t *testing.T) {
		negative := decimal.NewFromFloat(-1)

		err := unit.SetAreas(&negative, nil)

		assert.Error(t, err)
	})
}

func TestUnit_AssignOwner(t *testing.T) {
	communityID := uuid.New()

	t.Run("assigns an active owner of the same community", func(t *testing.T) {
		unit := createTestUnit(t, communityID)
		owner := createTestOwner(t, communityID)
		unit.ClearDomainEvents()

		err := unit.AssignOwner(owner)

		require.NoError(t, err)
		require.NotNil(t, unit.OwnerID)
		assert.Equal(t, owner.ID, *unit.OwnerID)

		events := unit.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeUnitOwnerAssigned, events[0].EventType())
	})

	t.Run("rejects owner from another community", func(t *testing.T) {
		unit := createTestUnit(t, communityID)
		stranger := createTestOwner(t, uuid.New())

		err := unit.AssignOwner(stranger)

		assert.Error(t, err)
		assert.Nil(t, unit.OwnerID)
	})

	t.Run("rejects inactive owner", func(t *testing.T) {
		unit := createTestUnit(t, communityID)
		owner := createTestOwner(t, communityID)
		require.NoError(t, owner.Deactivate())

		err := unit.AssignOwner(owner)

		assert.Error(t, err)
	})

	t.Run("rejects assigning the same owner twice", func(t *testing.T) {
		unit := createTestUnit(t, communityID)
		owner := createTestOwner(t, communityID)
		require.NoError(t, unit.AssignOwner(owner))

		err := unit.AssignOwner(owner)

		assert.Error(t, err)
	})

	t.Run("replaces a previous owner", func(t *testing.T) {
		unit := createTestUnit(t, communityID)
		first := createTestOwner(t, communityID)
		second, err := NewOwner(communityID, "Pedro", "Núñez", "pedro.nunez@example.com")
		require.NoError(t, err)

		require.NoError(t, unit.AssignOwner(first))
		require.NoError(t, unit.AssignOwner(second))

		assert.Equal(t, second.ID, *unit.OwnerID)
	})
}

func TestUnit_ClearOwner(t *testing.T) {
	communityID := uuid.New()

	t.Run("clears an assigned owner", func(t *testing.T) {
		unit := createTestUnit(t, communityID)
		owner := createTestOwner(t, communityID)
		require.NoError(t, unit.AssignOwner(owner))

		err := unit.ClearOwner()

		require.NoError(t, err)
		assert.False(t, unit.HasOwner())
	})

	t.Run("fails when no owner is assigned", func(t *testing.T) {
		unit := createTestUnit(t, communityID)

		err := unit.ClearOwner()

		assert.Error(t, err)
	})
}

func TestUnit_ActivateDeactivate(t *testing.T) {
	unit := createTestUnit(t, uuid.New())

	require.Error(t, unit.Activate())

	require.NoError(t, unit.Deactivate())
	assert.False(t, unit.IsActive())

	require.NoError(t, unit.Activate())
	assert.True(t, unit.IsActive())
}
