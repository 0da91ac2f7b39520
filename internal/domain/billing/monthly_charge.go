package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeStatus represents the payment status of a monthly charge
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "PENDING"
	ChargeStatusPartial ChargeStatus = "PARTIAL"
	ChargeStatusPaid    ChargeStatus = "PAID"
	ChargeStatusVoid    ChargeStatus = "VOID" // Administrative override, sticky
)

// IsValid checks if the status is a valid charge status
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusPending, ChargeStatusPartial, ChargeStatusPaid, ChargeStatusVoid:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s ChargeStatus) String() string {
	return string(s)
}

// IsOpen returns true if the charge can still receive allocations
func (s ChargeStatus) IsOpen() bool {
	return s == ChargeStatusPending || s == ChargeStatusPartial
}

// CountsTowardBalance returns true if charges in this status are included
// in balance and statement aggregates
func (s ChargeStatus) CountsTowardBalance() bool {
	return s != ChargeStatusVoid
}

// MonthlyCharge represents the fee owed by one unit for one calendar month.
// Period is always the first day of the month. Status is a materialized view
// over the allocation rows and is only ever written through RecomputeStatus
// or Void.
type MonthlyCharge struct {
	shared.CommunityAggregateRoot
	UnitID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_charge_unit_period,priority:1"`
	Period  time.Time       `gorm:"type:date;not null;uniqueIndex:idx_charge_unit_period,priority:2"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate *time.Time      `gorm:"type:date"`
	Status  ChargeStatus    `gorm:"type:varchar(10);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (MonthlyCharge) TableName() string {
	return "monthly_charges"
}

// NewMonthlyCharge creates a new monthly charge in PENDING status
func NewMonthlyCharge(communityID, unitID uuid.UUID, period time.Time, amount decimal.Decimal) (*MonthlyCharge, error) {
	if communityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMMUNITY", "Community ID is required")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID is required")
	}
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if err := validatePositiveAmount("INVALID_AMOUNT", amount); err != nil {
		return nil, err
	}

	charge := &MonthlyCharge{
		CommunityAggregateRoot: shared.NewCommunityAggregateRoot(communityID),
		UnitID:                 unitID,
		Period:                 period,
		Amount:                 amount,
		Status:                 ChargeStatusPending,
	}

	charge.AddDomainEvent(NewMonthlyChargeCreatedEvent(charge))

	return charge, nil
}

// SetDueDate sets an optional due date for the charge
func (c *MonthlyCharge) SetDueDate(dueDate *time.Time) {
	c.DueDate = dueDate
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// RecomputeStatus derives the charge status from the given allocated total
// (the sum of allocations funded by APPROVED payments) and returns whether
// the status changed. A VOID charge never changes. Callers persist the
// status field only.
func (c *MonthlyCharge) RecomputeStatus(allocated decimal.Decimal) bool {
	if c.Status == ChargeStatusVoid {
		return false
	}

	var next ChargeStatus
	switch {
	case allocated.LessThanOrEqual(decimal.Zero):
		next = ChargeStatusPending
	case allocated.LessThan(c.Amount):
		next = ChargeStatusPartial
	default:
		next = ChargeStatusPaid
	}

	if next == c.Status {
		return false
	}

	old := c.Status
	c.Status = next

	c.AddDomainEvent(NewChargeStatusChangedEvent(c, old, next))
	if next == ChargeStatusPaid {
		c.AddDomainEvent(NewChargePaidEvent(c, allocated))
	}

	return true
}

// Void marks the charge as administratively cancelled. VOID is sticky:
// the charge is excluded from balances and never recomputed again.
func (c *MonthlyCharge) Void() error {
	if c.Status == ChargeStatusVoid {
		return shared.NewDomainError("ALREADY_VOID", "Charge is already void")
	}

	old := c.Status
	c.Status = ChargeStatusVoid
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewChargeVoidedEvent(c, old))

	return nil
}

// OutstandingAfter returns the unpaid remainder of the charge given the
// allocated total, floored at zero. PAID and VOID charges have nothing
// outstanding by definition.
func (c *MonthlyCharge) OutstandingAfter(allocated decimal.Decimal) decimal.Decimal {
	if !c.Status.IsOpen() {
		return decimal.Zero
	}
	return clampZero(c.Amount.Sub(allocated))
}

// IsOpen returns true if the charge can still receive allocations
func (c *MonthlyCharge) IsOpen() bool {
	return c.Status.IsOpen()
}

// IsPaid returns true if the charge is fully paid
func (c *MonthlyCharge) IsPaid() bool {
	return c.Status == ChargeStatusPaid
}

// IsVoid returns true if the charge was administratively cancelled
func (c *MonthlyCharge) IsVoid() bool {
	return c.Status == ChargeStatusVoid
}
