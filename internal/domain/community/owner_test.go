package community

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOwner(t *testing.T, communityID uuid.UUID) *Owner {
	owner, err := NewOwner(communityID, "María", "García López", "maria.garcia@example.com")
	require.NoError(t, err)
	return owner
}

func TestNewOwner(t *testing.T) {
	communityID := uuid.New()

	t.Run("creates owner with valid inputs", func(t *testing.T) {
		owner, err := NewOwner(communityID, "María", "García López", "Maria.Garcia@Example.com")

		require.NoError(t, err)
		assert.Equal(t, communityID, owner.CommunityID)
		assert.Equal(t, "María", owner.FirstName)
		assert.Equal(t, "García López", owner.LastName)
		assert.Equal(t, "maria.garcia@example.com", owner.Email)
		assert.True(t, owner.Active)

		events := owner.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOwnerRegistered, events[0].EventType())
	})

	t.Run("normalizes email with surrounding whitespace", func(t *testing.T) {
		owner, err := NewOwner(communityID, "Juan", "", "  JUAN@example.com ")

		require.NoError(t, err)
		assert.Equal(t, "juan@example.com", owner.Email)
	})

	t.Run("fails with nil community", func(t *testing.T) {
		owner, err := NewOwner(uuid.Nil, "María", "", "maria@example.com")

		assert.Error(t, err)
		assert.Nil(t, owner)
	})

	t.Run("fails with empty first name", func(t *testing.T) {
		owner, err := NewOwner(communityID, "", "", "maria@example.com")

		assert.Error(t, err)
		assert.Nil(t, owner)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		owner, err := NewOwner(communityID, "María", "", "not-an-email")

		assert.Error(t, err)
		assert.Nil(t, owner)
	})

	t.Run("fails with empty email", func(t *testing.T) {
		owner, err := NewOwner(communityID, "María", "", "")

		assert.Error(t, err)
		assert.Nil(t, owner)
	})
}

func TestOwner_UpdateEmail(t *testing.T) {
	owner := createTestOwner(t, uuid.New())

	t.Run("updates and normalizes email", func(t *testing.T) {
		err := owner.UpdateEmail("NEW@Example.com")

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", owner.Email)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		err := owner.UpdateEmail("broken@")

		assert.Error(t, err)
		assert.Equal(t, "new@example.com", owner.Email)
	})
}

func TestOwner_SetContact(t *testing.T) {
	owner := createTestOwner(t, uuid.New())

	t.Run("sets phone and uppercased tax id", func(t *testing.T) {
		err := owner.SetContact("+52 442 123 4567", "galm800101abc")

		require.NoError(t, err)
		assert.Equal(t, "+52 442 123 4567", owner.Phone)
		assert.Equal(t, "GALM800101ABC", owner.TaxID)
	})

	t.Run("rejects overlong phone", func(t *testing.T) {
		err := owner.SetContact(strings.Repeat("1", 31), "")

		assert.Error(t, err)
	})
}

func TestOwner_FullName(t *testing.T) {
	owner := createTestOwner(t, uuid.New())
	assert.Equal(t, "María García López", owner.FullName())

	require.NoError(t, owner.Update("Juan", ""))
	assert.Equal(t, "Juan", owner.FullName())
}

func TestOwner_ActivateDeactivate(t *testing.T) {
	owner := createTestOwner(t, uuid.New())

	require.Error(t, owner.Activate())

	require.NoError(t, owner.Deactivate())
	assert.False(t, owner.IsActive())
	require.Error(t, owner.Deactivate())

	require.NoError(t, owner.Activate())
	assert.True(t, owner.IsActive())
}
