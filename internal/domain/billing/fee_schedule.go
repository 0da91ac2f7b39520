package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeSchedule represents one version of the monthly fee for a community.
// The fee in force for a date is the schedule with the latest EffectiveFrom
// not after that date. Schedules are immutable once created; changing the
// fee means creating a new schedule with a later EffectiveFrom.
type FeeSchedule struct {
	shared.CommunityAggregateRoot
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EffectiveFrom time.Time       `gorm:"type:date;not null;index:idx_fee_schedule_community_effective,priority:2"` // Inclusive
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (FeeSchedule) TableName() string {
	return "fee_schedules"
}

// NewFeeSchedule creates a new fee schedule version
func NewFeeSchedule(communityID uuid.UUID, amount decimal.Decimal, effectiveFrom time.Time, notes string) (*FeeSchedule, error) {
	if communityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMMUNITY", "Community ID is required")
	}
	if err := validatePositiveAmount("INVALID_AMOUNT", amount); err != nil {
		return nil, err
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_FROM", "Effective-from date is required")
	}

	schedule := &FeeSchedule{
		CommunityAggregateRoot: shared.NewCommunityAggregateRoot(communityID),
		Amount:                 amount,
		EffectiveFrom:          dateOnly(effectiveFrom),
		Notes:                  notes,
	}

	schedule.AddDomainEvent(NewFeeScheduleCreatedEvent(schedule))

	return schedule, nil
}

// AppliesTo reports whether this schedule is in force for the given date,
// ignoring any later schedule that may supersede it
func (f *FeeSchedule) AppliesTo(date time.Time) bool {
	return !f.EffectiveFrom.After(dateOnly(date))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
