package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateFeeScheduleRequest represents a request to create a fee schedule version
type CreateFeeScheduleRequest struct {
	CommunityID   uuid.UUID       `json:"community_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	EffectiveFrom time.Time       `json:"effective_from" validate:"required"`
	Notes         string          `json:"notes" validate:"max=500"`
}

// FeeScheduleResponse represents a fee schedule in API responses
type FeeScheduleResponse struct {
	ID            uuid.UUID       `json:"id"`
	CommunityID   uuid.UUID       `json:"community_id"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveFrom time.Time       `json:"effective_from"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FeeResolution is the fee in force for a community on a given date
type FeeResolution struct {
	ScheduleID    uuid.UUID       `json:"schedule_id"`
	CommunityID   uuid.UUID       `json:"community_id"`
	Amount        decimal.Decimal `json:"amount"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// GenerateChargesRequest represents a request to generate monthly charges
// for every active unit of a community over an inclusive period range
type GenerateChargesRequest struct {
	CommunityID uuid.UUID `json:"community_id" validate:"required"`
	PeriodFrom  time.Time `json:"period_from" validate:"required"`
	PeriodTo    time.Time `json:"period_to" validate:"required"`
}

// ChargeGenerationResult reports the outcome of one generation run.
// Periods without a fee schedule are reported, not raised; the rest of
// the range still generates.
type ChargeGenerationResult struct {
	CommunityID       uuid.UUID       `json:"community_id"`
	PeriodFrom        time.Time       `json:"period_from"`
	PeriodTo          time.Time       `json:"period_to"`
	Created           int             `json:"created"`
	SkippedExisting   int             `json:"skipped_existing"`
	MissingFeePeriods []string        `json:"missing_fee_periods,omitempty"`
	CreditApplied     decimal.Decimal `json:"credit_applied"`
}

// CreateChargeRequest represents a request to create a single charge by hand,
// outside the generation run
type CreateChargeRequest struct {
	UnitID  uuid.UUID       `json:"unit_id" validate:"required"`
	Period  time.Time       `json:"period" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	DueDate *time.Time      `json:"due_date,omitempty"`
}

// ChargeResponse represents a monthly charge in API responses
type ChargeResponse struct {
	ID          uuid.UUID            `json:"id"`
	CommunityID uuid.UUID            `json:"community_id"`
	UnitID      uuid.UUID            `json:"unit_id"`
	Period      time.Time            `json:"period"`
	Amount      decimal.Decimal      `json:"amount"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Status      billing.ChargeStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ChargeDetailResponse annotates a charge with its allocation totals
type ChargeDetailResponse struct {
	ChargeResponse
	Allocated   decimal.Decimal `json:"allocated"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// SubmitPaymentRequest represents an owner reporting a payment for a unit.
// The unit's current owner is captured on the submission.
type SubmitPaymentRequest struct {
	UnitID    uuid.UUID       `json:"unit_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference string          `json:"reference" validate:"max=120"`
}

// ApprovePaymentRequest represents a reviewer approving a submitted payment
type ApprovePaymentRequest struct {
	PaymentID    uuid.UUID `json:"payment_id" validate:"required"`
	ReviewerID   uuid.UUID `json:"reviewer_id" validate:"required"`
	AutoAllocate bool      `json:"auto_allocate"`
}

// RejectPaymentRequest represents a reviewer rejecting a submitted payment
type RejectPaymentRequest struct {
	PaymentID  uuid.UUID `json:"payment_id" validate:"required"`
	ReviewerID uuid.UUID `json:"reviewer_id" validate:"required"`
	Notes      string    `json:"notes" validate:"max=1000"`
}

// AllocateManuallyRequest directs a specific amount from one approved
// payment onto one open charge, bypassing the automatic strategies
type AllocateManuallyRequest struct {
	PaymentID uuid.UUID       `json:"payment_id" validate:"required"`
	ChargeID  uuid.UUID       `json:"charge_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

// PaymentResponse represents a payment submission in API responses
type PaymentResponse struct {
	ID          uuid.UUID             `json:"id"`
	CommunityID uuid.UUID             `json:"community_id"`
	UnitID      uuid.UUID             `json:"unit_id"`
	OwnerID     uuid.UUID             `json:"owner_id"`
	Amount      decimal.Decimal       `json:"amount"`
	Reference   string                `json:"reference,omitempty"`
	Status      billing.PaymentStatus `json:"status"`
	ReviewedBy  *uuid.UUID            `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time            `json:"reviewed_at,omitempty"`
	ReviewNotes string                `json:"review_notes,omitempty"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// ReviewResult reports the outcome of a review action. Re-reviewing an
// already-processed payment is not an error; AlreadyReviewed is set and
// nothing changes.
type ReviewResult struct {
	Payment           PaymentResponse `json:"payment"`
	AlreadyReviewed   bool            `json:"already_reviewed"`
	AllocatedTotal    decimal.Decimal `json:"allocated_total"`
	ChargesRecomputed int             `json:"charges_recomputed"`
}

// AllocationResponse represents one allocation edge in API responses.
// AmountApplied is the row's cumulative total, not the last increment.
type AllocationResponse struct {
	ID            uuid.UUID            `json:"id"`
	PaymentID     uuid.UUID            `json:"payment_id"`
	ChargeID      uuid.UUID            `json:"charge_id"`
	UnitID        uuid.UUID            `json:"unit_id"`
	AmountApplied decimal.Decimal      `json:"amount_applied"`
	ChargeStatus  billing.ChargeStatus `json:"charge_status"`
}

// ToFeeScheduleResponse converts a fee schedule to its response representation
func ToFeeScheduleResponse(schedule *billing.FeeSchedule) FeeScheduleResponse {
	return FeeScheduleResponse{
		ID:            schedule.ID,
		CommunityID:   schedule.CommunityID,
		Amount:        schedule.Amount,
		EffectiveFrom: schedule.EffectiveFrom,
		Notes:         schedule.Notes,
		CreatedAt:     schedule.CreatedAt,
	}
}

// ToFeeScheduleResponses converts a slice of fee schedules
func ToFeeScheduleResponses(schedules []billing.FeeSchedule) []FeeScheduleResponse {
	responses := make([]FeeScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = ToFeeScheduleResponse(&schedules[i])
	}
	return responses
}

// ToChargeResponse converts a charge to its response representation
func ToChargeResponse(charge *billing.MonthlyCharge) ChargeResponse {
	return ChargeResponse{
		ID:          charge.ID,
		CommunityID: charge.CommunityID,
		UnitID:      charge.UnitID,
		Period:      charge.Period,
		Amount:      charge.Amount,
		DueDate:     charge.DueDate,
		Status:      charge.Status,
		CreatedAt:   charge.CreatedAt,
		UpdatedAt:   charge.UpdatedAt,
	}
}

// ToChargeResponses converts a slice of charges
func ToChargeResponses(charges []billing.MonthlyCharge) []ChargeResponse {
	responses := make([]ChargeResponse, len(charges))
	for i := range charges {
		responses[i] = ToChargeResponse(&charges[i])
	}
	return responses
}

// ToPaymentResponse converts a payment to its response representation
func ToPaymentResponse(payment *billing.PaymentSubmission) PaymentResponse {
	return PaymentResponse{
		ID:          payment.ID,
		CommunityID: payment.CommunityID,
		UnitID:      payment.UnitID,
		OwnerID:     payment.OwnerID,
		Amount:      payment.Amount,
		Reference:   payment.Reference,
		Status:      payment.Status,
		ReviewedBy:  payment.ReviewedBy,
		ReviewedAt:  payment.ReviewedAt,
		ReviewNotes: payment.ReviewNotes,
		SubmittedAt: payment.SubmittedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []billing.PaymentSubmission) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// ToAllocationResponse converts an allocation to its response representation.
// The charge status is read after recomputation, so it reflects this allocation.
func ToAllocationResponse(allocation *billing.PaymentAllocation, chargeStatus billing.ChargeStatus) AllocationResponse {
	return AllocationResponse{
		ID:            allocation.ID,
		PaymentID:     allocation.PaymentID,
		ChargeID:      allocation.ChargeID,
		UnitID:        allocation.UnitID,
		AmountApplied: allocation.AmountApplied,
		ChargeStatus:  chargeStatus,
	}
}
