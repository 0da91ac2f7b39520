package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeMonthlyCharge = "MonthlyCharge"

// Event type constants
const (
	EventTypeMonthlyChargeCreated = "MonthlyChargeCreated"
	EventTypeChargeStatusChanged  = "ChargeStatusChanged"
	EventTypeChargePaid           = "ChargePaid"
	EventTypeChargeVoided         = "ChargeVoided"
)

// MonthlyChargeCreatedEvent is published when a new monthly charge is created
type MonthlyChargeCreatedEvent struct {
	shared.BaseDomainEvent
	ChargeID uuid.UUID       `json:"charge_id"`
	UnitID   uuid.UUID       `json:"unit_id"`
	Period   time.Time       `json:"period"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewMonthlyChargeCreatedEvent creates a new MonthlyChargeCreatedEvent
func NewMonthlyChargeCreatedEvent(c *MonthlyCharge) *MonthlyChargeCreatedEvent {
	return &MonthlyChargeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMonthlyChargeCreated, AggregateTypeMonthlyCharge, c.ID, c.CommunityID),
		ChargeID:        c.ID,
		UnitID:          c.UnitID,
		Period:          c.Period,
		Amount:          c.Amount,
	}
}

// ChargeStatusChangedEvent is published when a recomputation moves the charge status
type ChargeStatusChangedEvent struct {
	shared.BaseDomainEvent
	ChargeID  uuid.UUID    `json:"charge_id"`
	UnitID    uuid.UUID    `json:"unit_id"`
	Period    time.Time    `json:"period"`
	OldStatus ChargeStatus `json:"old_status"`
	NewStatus ChargeStatus `json:"new_status"`
}

// NewChargeStatusChangedEvent creates a new ChargeStatusChangedEvent
func NewChargeStatusChangedEvent(c *MonthlyCharge, oldStatus, newStatus ChargeStatus) *ChargeStatusChangedEvent {
	return &ChargeStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargeStatusChanged, AggregateTypeMonthlyCharge, c.ID, c.CommunityID),
		ChargeID:        c.ID,
		UnitID:          c.UnitID,
		Period:          c.Period,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ChargePaidEvent is published when a charge becomes fully paid
type ChargePaidEvent struct {
	shared.BaseDomainEvent
	ChargeID  uuid.UUID       `json:"charge_id"`
	UnitID    uuid.UUID       `json:"unit_id"`
	Period    time.Time       `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	Allocated decimal.Decimal `json:"allocated"`
}

// NewChargePaidEvent creates a new ChargePaidEvent
func NewChargePaidEvent(c *MonthlyCharge, allocated decimal.Decimal) *ChargePaidEvent {
	return &ChargePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargePaid, AggregateTypeMonthlyCharge, c.ID, c.CommunityID),
		ChargeID:        c.ID,
		UnitID:          c.UnitID,
		Period:          c.Period,
		Amount:          c.Amount,
		Allocated:       allocated,
	}
}

// ChargeVoidedEvent is published when a charge is administratively cancelled
type ChargeVoidedEvent struct {
	shared.BaseDomainEvent
	ChargeID       uuid.UUID    `json:"charge_id"`
	UnitID         uuid.UUID    `json:"unit_id"`
	Period         time.Time    `json:"period"`
	PreviousStatus ChargeStatus `json:"previous_status"`
}

// NewChargeVoidedEvent creates a new ChargeVoidedEvent
func NewChargeVoidedEvent(c *MonthlyCharge, previousStatus ChargeStatus) *ChargeVoidedEvent {
	return &ChargeVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeChargeVoided, AggregateTypeMonthlyCharge, c.ID, c.CommunityID),
		ChargeID:        c.ID,
		UnitID:          c.UnitID,
		Period:          c.Period,
		PreviousStatus:  previousStatus,
	}
}
