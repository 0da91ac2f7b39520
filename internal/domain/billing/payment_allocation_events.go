package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePaymentAllocation = "PaymentAllocation"

// Event type constants
const (
	EventTypePaymentAllocated    = "PaymentAllocated"
	EventTypeAllocationIncreased = "AllocationIncreased"
)

// PaymentAllocatedEvent is published when payment money is applied to a charge
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID       `json:"allocation_id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	ChargeID     uuid.UUID       `json:"charge_id"`
	UnitID       uuid.UUID       `json:"unit_id"`
	Period       time.Time       `json:"period"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewPaymentAllocatedEvent creates a new PaymentAllocatedEvent
func NewPaymentAllocatedEvent(a *PaymentAllocation, period time.Time) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAllocated, AggregateTypePaymentAllocation, a.ID, a.CommunityID),
		AllocationID:    a.ID,
		PaymentID:       a.PaymentID,
		ChargeID:        a.ChargeID,
		UnitID:          a.UnitID,
		Period:          period,
		Amount:          a.AmountApplied,
	}
}

// AllocationIncreasedEvent is published when an existing allocation is topped up
type AllocationIncreasedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID       `json:"allocation_id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	ChargeID     uuid.UUID       `json:"charge_id"`
	UnitID       uuid.UUID       `json:"unit_id"`
	Period       time.Time       `json:"period"`
	Delta        decimal.Decimal `json:"delta"`
	NewAmount    decimal.Decimal `json:"new_amount"`
}

// NewAllocationIncreasedEvent creates a new AllocationIncreasedEvent
func NewAllocationIncreasedEvent(a *PaymentAllocation, delta decimal.Decimal, period time.Time) *AllocationIncreasedEvent {
	return &AllocationIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationIncreased, AggregateTypePaymentAllocation, a.ID, a.CommunityID),
		AllocationID:    a.ID,
		PaymentID:       a.PaymentID,
		ChargeID:        a.ChargeID,
		UnitID:          a.UnitID,
		Period:          period,
		Delta:           delta,
		NewAmount:       a.AmountApplied,
	}
}
