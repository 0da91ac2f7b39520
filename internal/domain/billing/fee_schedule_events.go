package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeFeeSchedule = "FeeSchedule"

// Event type constants
const (
	EventTypeFeeScheduleCreated = "FeeScheduleCreated"
)

// FeeScheduleCreatedEvent is published when a new fee schedule version is created
type FeeScheduleCreatedEvent struct {
	shared.BaseDomainEvent
	FeeScheduleID uuid.UUID       `json:"fee_schedule_id"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// NewFeeScheduleCreatedEvent creates a new FeeScheduleCreatedEvent
func NewFeeScheduleCreatedEvent(f *FeeSchedule) *FeeScheduleCreatedEvent {
	return &FeeScheduleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFeeScheduleCreated, AggregateTypeFeeSchedule, f.ID, f.CommunityID),
		FeeScheduleID:   f.ID,
		Amount:          f.Amount,
		EffectiveFrom:   f.EffectiveFrom,
	}
}
