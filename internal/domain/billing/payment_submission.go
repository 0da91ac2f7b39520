package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the review status of a payment submission
type PaymentStatus string

const (
	PaymentStatusSubmitted PaymentStatus = "SUBMITTED"
	PaymentStatusApproved  PaymentStatus = "APPROVED"
	PaymentStatusRejected  PaymentStatus = "REJECTED"
)

// IsValid checks if the status is a valid payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusSubmitted, PaymentStatusApproved, PaymentStatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment has been reviewed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

// CanFundAllocation returns true if payments in this status count as
// available credit
func (s PaymentStatus) CanFundAllocation() bool {
	return s == PaymentStatusApproved
}

// PaymentSubmission represents money an owner reports having paid for a unit.
// It can cover several monthly charges through PaymentAllocation rows.
// The owner is captured at submission time and kept even if the unit's
// current owner changes later.
type PaymentSubmission struct {
	shared.CommunityAggregateRoot
	UnitID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_unit_submitted,priority:1"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference   string          `gorm:"type:varchar(120)"` // Bank folio or transfer reference
	Status      PaymentStatus   `gorm:"type:varchar(12);not null;default:'SUBMITTED';index"`
	ReviewedBy  *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt  *time.Time      `gorm:"index"`
	ReviewNotes string          `gorm:"type:text"`
	SubmittedAt time.Time       `gorm:"not null;index:idx_payment_unit_submitted,priority:2"`
}

// TableName returns the table name for GORM
func (PaymentSubmission) TableName() string {
	return "payment_submissions"
}

// NewPaymentSubmission creates a new payment submission in SUBMITTED status
func NewPaymentSubmission(communityID, unitID, ownerID uuid.UUID, amount decimal.Decimal, reference string) (*PaymentSubmission, error) {
	if communityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMMUNITY", "Community ID is required")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID is required")
	}
	if err := validatePositiveAmount("INVALID_AMOUNT", amount); err != nil {
		return nil, err
	}
	if len(reference) > 120 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 120 characters")
	}

	payment := &PaymentSubmission{
		CommunityAggregateRoot: shared.NewCommunityAggregateRoot(communityID),
		UnitID:                 unitID,
		OwnerID:                ownerID,
		Amount:                 amount,
		Reference:              reference,
		Status:                 PaymentStatusSubmitted,
		SubmittedAt:            time.Now(),
	}

	payment.AddDomainEvent(NewPaymentSubmittedEvent(payment))

	return payment, nil
}

// Approve marks the payment as approved by the given reviewer.
// Only SUBMITTED payments can be approved; callers wanting no-op
// semantics check IsSubmitted first.
func (p *PaymentSubmission) Approve(reviewerID uuid.UUID) error {
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID is required")
	}
	if p.Status != PaymentStatusSubmitted {
		return shared.NewDomainError("PAYMENT_ALREADY_PROCESSED", "Payment has already been reviewed")
	}

	now := time.Now()
	p.Status = PaymentStatusApproved
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentApprovedEvent(p))

	return nil
}

// Reject marks the payment as rejected by the given reviewer.
// Existing review notes are kept when notes is empty.
func (p *PaymentSubmission) Reject(reviewerID uuid.UUID, notes string) error {
	if reviewerID == uuid.Nil {
		return shared.NewDomainError("INVALID_REVIEWER", "Reviewer ID is required")
	}
	if p.Status != PaymentStatusSubmitted {
		return shared.NewDomainError("PAYMENT_ALREADY_PROCESSED", "Payment has already been reviewed")
	}

	now := time.Now()
	p.Status = PaymentStatusRejected
	p.ReviewedBy = &reviewerID
	p.ReviewedAt = &now
	if notes != "" {
		p.ReviewNotes = notes
	}
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentRejectedEvent(p))

	return nil
}

// RemainingAfter returns the unallocated part of the payment given the
// sum of its allocations, floored at zero
func (p *PaymentSubmission) RemainingAfter(allocated decimal.Decimal) decimal.Decimal {
	return clampZero(p.Amount.Sub(allocated))
}

// ReviewOrder returns the timestamp used to order credit consumption:
// the review timestamp, falling back to the submission timestamp for
// approved-but-unreviewed edge cases
func (p *PaymentSubmission) ReviewOrder() time.Time {
	if p.ReviewedAt != nil {
		return *p.ReviewedAt
	}
	return p.SubmittedAt
}

// IsSubmitted returns true if the payment is awaiting review
func (p *PaymentSubmission) IsSubmitted() bool {
	return p.Status == PaymentStatusSubmitted
}

// IsApproved returns true if the payment was approved
func (p *PaymentSubmission) IsApproved() bool {
	return p.Status == PaymentStatusApproved
}

// IsRejected returns true if the payment was rejected
func (p *PaymentSubmission) IsRejected() bool {
	return p.Status == PaymentStatusRejected
}
