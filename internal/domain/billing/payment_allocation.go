package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentAllocation applies part of a payment to one monthly charge.
// One payment can cover several charges and one charge can be covered
// by several payments; the (payment, charge) pair is unique, so applying
// more money from the same payment to the same charge increments the
// existing row instead of inserting a second one.
type PaymentAllocation struct {
	shared.CommunityAggregateRoot
	PaymentID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_payment_charge,priority:1"`
	ChargeID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_allocation_payment_charge,priority:2;index"`
	UnitID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountApplied decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}

// NewPaymentAllocation creates an allocation of amount from a payment to a charge.
// Payment and charge must belong to the same community and the same unit.
func NewPaymentAllocation(payment *PaymentSubmission, charge *MonthlyCharge, amount decimal.Decimal) (*PaymentAllocation, error) {
	if payment == nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment is required")
	}
	if charge == nil {
		return nil, shared.NewDomainError("INVALID_CHARGE", "Charge is required")
	}
	if payment.CommunityID != charge.CommunityID {
		return nil, shared.NewDomainError("COMMUNITY_MISMATCH", "Payment and charge must belong to the same community")
	}
	if payment.UnitID != charge.UnitID {
		return nil, shared.NewDomainError("UNIT_MISMATCH", "Payment and charge must belong to the same unit")
	}
	if err := validatePositiveAmount("INVALID_AMOUNT", amount); err != nil {
		return nil, err
	}

	allocation := &PaymentAllocation{
		CommunityAggregateRoot: shared.NewCommunityAggregateRoot(payment.CommunityID),
		PaymentID:              payment.ID,
		ChargeID:               charge.ID,
		UnitID:                 payment.UnitID,
		AmountApplied:          amount,
	}

	allocation.AddDomainEvent(NewPaymentAllocatedEvent(allocation, charge.Period))

	return allocation, nil
}

// Increase adds more money from the same payment onto the same charge.
// This is the update-in-place path required by the unique (payment, charge)
// constraint when credit is applied to a charge across separate runs.
func (a *PaymentAllocation) Increase(delta decimal.Decimal, period time.Time) error {
	if err := validatePositiveAmount("INVALID_AMOUNT", delta); err != nil {
		return err
	}

	a.AmountApplied = a.AmountApplied.Add(delta)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAllocationIncreasedEvent(a, delta, period))

	return nil
}
