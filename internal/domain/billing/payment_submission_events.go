package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePaymentSubmission = "PaymentSubmission"

// Event type constants
const (
	EventTypePaymentSubmitted = "PaymentSubmitted"
	EventTypePaymentApproved  = "PaymentApproved"
	EventTypePaymentRejected  = "PaymentRejected"
)

// PaymentSubmittedEvent is published when an owner submits a payment for review
type PaymentSubmittedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// NewPaymentSubmittedEvent creates a new PaymentSubmittedEvent
func NewPaymentSubmittedEvent(p *PaymentSubmission) *PaymentSubmittedEvent {
	return &PaymentSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentSubmitted, AggregateTypePaymentSubmission, p.ID, p.CommunityID),
		PaymentID:       p.ID,
		UnitID:          p.UnitID,
		OwnerID:         p.OwnerID,
		Amount:          p.Amount,
		Reference:       p.Reference,
		SubmittedAt:     p.SubmittedAt,
	}
}

// PaymentApprovedEvent is published when a reviewer approves a payment
type PaymentApprovedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	UnitID     uuid.UUID       `json:"unit_id"`
	OwnerID    uuid.UUID       `json:"owner_id"`
	Amount     decimal.Decimal `json:"amount"`
	ReviewedBy uuid.UUID       `json:"reviewed_by"`
	ReviewedAt time.Time       `json:"reviewed_at"`
}

// NewPaymentApprovedEvent creates a new PaymentApprovedEvent
func NewPaymentApprovedEvent(p *PaymentSubmission) *PaymentApprovedEvent {
	reviewedBy := uuid.Nil
	if p.ReviewedBy != nil {
		reviewedBy = *p.ReviewedBy
	}
	reviewedAt := time.Now()
	if p.ReviewedAt != nil {
		reviewedAt = *p.ReviewedAt
	}
	return &PaymentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApproved, AggregateTypePaymentSubmission, p.ID, p.CommunityID),
		PaymentID:       p.ID,
		UnitID:          p.UnitID,
		OwnerID:         p.OwnerID,
		Amount:          p.Amount,
		ReviewedBy:      reviewedBy,
		ReviewedAt:      reviewedAt,
	}
}

// PaymentRejectedEvent is published when a reviewer rejects a payment
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID       `json:"payment_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Amount      decimal.Decimal `json:"amount"`
	ReviewedBy  uuid.UUID       `json:"reviewed_by"`
	ReviewNotes string          `json:"review_notes,omitempty"`
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent
func NewPaymentRejectedEvent(p *PaymentSubmission) *PaymentRejectedEvent {
	reviewedBy := uuid.Nil
	if p.ReviewedBy != nil {
		reviewedBy = *p.ReviewedBy
	}
	return &PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRejected, AggregateTypePaymentSubmission, p.ID, p.CommunityID),
		PaymentID:       p.ID,
		UnitID:          p.UnitID,
		OwnerID:         p.OwnerID,
		Amount:          p.Amount,
		ReviewedBy:      reviewedBy,
		ReviewNotes:     p.ReviewNotes,
	}
}
