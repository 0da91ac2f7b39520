package billing

import (
	"context"
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeFilter defines filter criteria for monthly charge queries
type ChargeFilter struct {
	shared.Filter
	CommunityID *uuid.UUID
	UnitID      *uuid.UUID
	Status      *ChargeStatus
	PeriodFrom  *time.Time
	PeriodTo    *time.Time
}

// PaymentFilter defines filter criteria for payment submission queries
type PaymentFilter struct {
	shared.Filter
	CommunityID   *uuid.UUID
	UnitID        *uuid.UUID
	OwnerID       *uuid.UUID
	Status        *PaymentStatus
	SubmittedFrom *time.Time
	SubmittedTo   *time.Time
}

// FeeScheduleRepository defines the interface for fee schedule persistence
type FeeScheduleRepository interface {
	// FindByID finds a fee schedule by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*FeeSchedule, error)

	// FindEffective finds the schedule in force for a community on a date:
	// the one with the latest EffectiveFrom not after the date, ties broken
	// by most recent creation. Returns shared.ErrNotFound when no schedule
	// covers the date.
	FindEffective(ctx context.Context, communityID uuid.UUID, date time.Time) (*FeeSchedule, error)

	// FindByCommunity finds a community's schedules, newest effective first
	FindByCommunity(ctx context.Context, communityID uuid.UUID, filter shared.Filter) ([]FeeSchedule, error)

	// Save creates a fee schedule
	Save(ctx context.Context, schedule *FeeSchedule) error

	// Count counts a community's fee schedules
	Count(ctx context.Context, communityID uuid.UUID) (int64, error)
}

// MonthlyChargeRepository defines the interface for monthly charge persistence
type MonthlyChargeRepository interface {
	// FindByID finds a charge by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*MonthlyCharge, error)

	// FindByIDForUpdate finds a charge by its ID holding an exclusive row
	// lock for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*MonthlyCharge, error)

	// FindByUnitAndPeriod finds the charge of a unit for a billing period
	FindByUnitAndPeriod(ctx context.Context, unitID uuid.UUID, period time.Time) (*MonthlyCharge, error)

	// ExistsByUnitAndPeriod checks if a charge exists for a unit and period
	ExistsByUnitAndPeriod(ctx context.Context, unitID uuid.UUID, period time.Time) (bool, error)

	// FindByUnit finds a unit's charges matching the filter, newest period first
	FindByUnit(ctx context.Context, unitID uuid.UUID, filter ChargeFilter) ([]MonthlyCharge, error)

	// FindRecentByUnit finds the most recent non-VOID charges of a unit,
	// newest period first, up to limit
	FindRecentByUnit(ctx context.Context, unitID uuid.UUID, limit int) ([]MonthlyCharge, error)

	// FindOpenByUnitForUpdate finds the PENDING and PARTIAL charges of a
	// unit, oldest period first, holding exclusive row locks
	FindOpenByUnitForUpdate(ctx context.Context, unitID uuid.UUID) ([]MonthlyCharge, error)

	// Save creates or updates a charge
	Save(ctx context.Context, charge *MonthlyCharge) error

	// UpdateStatus persists only the status field of a charge
	UpdateStatus(ctx context.Context, id uuid.UUID, status ChargeStatus) error

	// SumChargedByUnit sums the amounts of a unit's non-VOID charges
	SumChargedByUnit(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error)

	// CountUnpaidByUnit counts a unit's non-VOID, non-PAID charges
	CountUnpaidByUnit(ctx context.Context, unitID uuid.UUID) (int64, error)

	// Count counts charges matching the filter
	Count(ctx context.Context, filter ChargeFilter) (int64, error)
}

// PaymentSubmissionRepository defines the interface for payment persistence
type PaymentSubmissionRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentSubmission, error)

	// FindByIDForUpdate finds a payment by its ID holding an exclusive row
	// lock for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PaymentSubmission, error)

	// FindByUnit finds a unit's payments matching the filter, newest first
	FindByUnit(ctx context.Context, unitID uuid.UUID, filter PaymentFilter) ([]PaymentSubmission, error)

	// FindSubmittedByCommunity finds a community's payments awaiting review,
	// newest submission first
	FindSubmittedByCommunity(ctx context.Context, communityID uuid.UUID, filter shared.Filter) ([]PaymentSubmission, error)

	// FindApprovedByUnitForUpdate finds a unit's APPROVED payments holding
	// exclusive row locks, ordered for FIFO credit consumption: review
	// timestamp ascending with submission timestamp as fallback and
	// tiebreaker
	FindApprovedByUnitForUpdate(ctx context.Context, unitID uuid.UUID) ([]PaymentSubmission, error)

	// SumApprovedByUnit sums the amounts of a unit's APPROVED payments
	SumApprovedByUnit(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error)

	// LastApprovedReviewedAt returns the latest review timestamp among a
	// unit's APPROVED payments, or nil when there are none
	LastApprovedReviewedAt(ctx context.Context, unitID uuid.UUID) (*time.Time, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *PaymentSubmission) error

	// Count counts payments matching the filter
	Count(ctx context.Context, filter PaymentFilter) (int64, error)
}

// PaymentAllocationRepository defines the interface for allocation persistence
type PaymentAllocationRepository interface {
	// FindByPaymentAndCharge finds the allocation from a payment to a
	// charge. Returns shared.ErrNotFound when the pair has none.
	FindByPaymentAndCharge(ctx context.Context, paymentID, chargeID uuid.UUID) (*PaymentAllocation, error)

	// FindByPayment finds all allocations of a payment
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]PaymentAllocation, error)

	// FindByCharge finds all allocations into a charge
	FindByCharge(ctx context.Context, chargeID uuid.UUID) ([]PaymentAllocation, error)

	// ChargeIDsByPayment returns the IDs of the charges a payment has
	// allocations into
	ChargeIDsByPayment(ctx context.Context, paymentID uuid.UUID) ([]uuid.UUID, error)

	// Save creates or updates an allocation
	Save(ctx context.Context, allocation *PaymentAllocation) error

	// SumAppliedToCharge sums the allocations into a charge that are funded
	// by APPROVED payments
	SumAppliedToCharge(ctx context.Context, chargeID uuid.UUID) (decimal.Decimal, error)

	// SumAppliedToCharges sums approved-payment allocations per charge for
	// a batch of charge IDs. Charges without allocations are absent from
	// the map.
	SumAppliedToCharges(ctx context.Context, chargeIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// SumByPayment sums all allocations of a payment regardless of status
	SumByPayment(ctx context.Context, paymentID uuid.UUID) (decimal.Decimal, error)

	// SumByPayments sums allocations per payment for a batch of payment
	// IDs. Payments without allocations are absent from the map.
	SumByPayments(ctx context.Context, paymentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// SumAppliedToUnit sums the approved-payment allocations into all of a
	// unit's charges
	SumAppliedToUnit(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error)
}
