package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeeSchedule(t *testing.T) {
	communityID := uuid.New()
	effectiveFrom := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates schedule with valid inputs", func(t *testing.T) {
		schedule, err := NewFeeSchedule(communityID, decimal.NewFromFloat(1500.00), effectiveFrom, "cuota 2026")

		require.NoError(t, err)
		assert.Equal(t, communityID, schedule.CommunityID)
		assert.True(t, schedule.Amount.Equal(decimal.NewFromFloat(1500.00)))
		assert.Equal(t, effectiveFrom, schedule.EffectiveFrom)
		assert.Equal(t, "cuota 2026", schedule.Notes)

		events := schedule.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeFeeScheduleCreated, events[0].EventType())
	})

	t.Run("truncates effective-from to its date", func(t *testing.T) {
		schedule, err := NewFeeSchedule(communityID, decimal.NewFromFloat(1500.00),
			time.Date(2026, time.January, 15, 13, 45, 0, 0, time.UTC), "")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), schedule.EffectiveFrom)
	})

	t.Run("fails with nil community", func(t *testing.T) {
		_, err := NewFeeSchedule(uuid.Nil, decimal.NewFromFloat(1500.00), effectiveFrom, "")

		assert.Error(t, err)
	})

	t.Run("fails with zero amount", func(t *testing.T) {
		_, err := NewFeeSchedule(communityID, decimal.Zero, effectiveFrom, "")

		assert.Error(t, err)
	})

	t.Run("fails with negative amount", func(t *testing.T) {
		_, err := NewFeeSchedule(communityID, decimal.NewFromFloat(-10), effectiveFrom, "")

		assert.Error(t, err)
	})

	t.Run("fails with sub-cent amount", func(t *testing.T) {
		_, err := NewFeeSchedule(communityID, decimal.NewFromFloat(1500.005), effectiveFrom, "")

		assert.Error(t, err)
	})

	t.Run("fails with zero effective-from", func(t *testing.T) {
		_, err := NewFeeSchedule(communityID, decimal.NewFromFloat(1500.00), time.Time{}, "")

		assert.Error(t, err)
	})
}

func TestFeeSchedule_AppliesTo(t *testing.T) {
	schedule, err := NewFeeSchedule(uuid.New(), decimal.NewFromFloat(1500.00),
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	assert.True(t, schedule.AppliesTo(time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, schedule.AppliesTo(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, schedule.AppliesTo(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)))
}
