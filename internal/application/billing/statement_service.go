package billing

import (
	"context"
	"fmt"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// DefaultStatementLimit is the number of months a statement covers when the
// caller does not ask for a specific window
const DefaultStatementLimit = 24

// StatementService serves the read side of the ledger: unit balances and
// account statements. Balances are cached per unit; the cache is a
// best-effort layer, a miss or a cache failure falls back to computing
// from the store.
type StatementService struct {
	unitRepo       community.UnitRepository
	chargeRepo     billing.MonthlyChargeRepository
	paymentRepo    billing.PaymentSubmissionRepository
	allocationRepo billing.PaymentAllocationRepository
	balanceCache   billing.UnitBalanceCache
}

// NewStatementService creates a new StatementService
func NewStatementService(
	unitRepo community.UnitRepository,
	chargeRepo billing.MonthlyChargeRepository,
	paymentRepo billing.PaymentSubmissionRepository,
	allocationRepo billing.PaymentAllocationRepository,
) *StatementService {
	return &StatementService{
		unitRepo:       unitRepo,
		chargeRepo:     chargeRepo,
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
	}
}

// SetBalanceCache sets the balance cache (optional)
func (s *StatementService) SetBalanceCache(cache billing.UnitBalanceCache) {
	s.balanceCache = cache
}

// GetUnitBalance returns the financial summary of one unit. Every aggregate
// treats missing rows as zero, never as an error; a unit with no ledger
// history has an all-zero balance.
func (s *StatementService) GetUnitBalance(ctx context.Context, unitID uuid.UUID) (*billing.UnitBalance, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "unit_balance")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrUnitID, unitID.String())

	if s.balanceCache != nil {
		cached, err := s.balanceCache.Get(ctx, unitID)
		if err != nil {
			telemetry.AddEvent(span, "balance_cache_error", "error", err.Error())
		} else if cached != nil {
			telemetry.AddEvent(span, "balance_cache_hit")
			return cached, nil
		}
	}

	var balance *billing.UnitBalance
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationUnitBalance, ""), func(c context.Context) {
		balance, operationErr = s.computeUnitBalance(c, unitID)
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	if s.balanceCache != nil {
		if err := s.balanceCache.Set(ctx, balance); err != nil {
			telemetry.AddEvent(span, "balance_cache_error", "error", err.Error())
		}
	}

	return balance, nil
}

// GetUnitStatement returns the most recent months of a unit's account,
// newest period first, each annotated with its applied amount and the
// non-negative remainder. Void charges are excluded. A non-positive limit
// falls back to DefaultStatementLimit.
func (s *StatementService) GetUnitStatement(ctx context.Context, unitID uuid.UUID, limit int) ([]billing.StatementRow, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "statement", "unit_statement")
	defer span.End()

	if limit <= 0 {
		limit = DefaultStatementLimit
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrUnitID, unitID.String(),
		"limit", limit,
	)

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		err := shared.NewDomainError("UNIT_NOT_FOUND", "Unit not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	var rows []billing.StatementRow
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationUnitStatement, ""), func(c context.Context) {
		charges, err := s.chargeRepo.FindRecentByUnit(c, unitID, limit)
		if err != nil {
			operationErr = fmt.Errorf("failed to load charges: %w", err)
			return
		}
		if len(charges) == 0 {
			rows = []billing.StatementRow{}
			return
		}

		chargeIDs := make([]uuid.UUID, len(charges))
		for i := range charges {
			chargeIDs[i] = charges[i].ID
		}
		appliedByCharge, err := s.allocationRepo.SumAppliedToCharges(c, chargeIDs)
		if err != nil {
			operationErr = fmt.Errorf("failed to sum charge allocations: %w", err)
			return
		}

		rows = make([]billing.StatementRow, len(charges))
		for i := range charges {
			rows[i] = billing.BuildStatementRow(&charges[i], appliedByCharge[charges[i].ID])
		}
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	return rows, nil
}

// GetCharge retrieves one charge annotated with its allocation totals
func (s *StatementService) GetCharge(ctx context.Context, chargeID uuid.UUID) (*ChargeDetailResponse, error) {
	charge, err := s.chargeRepo.FindByID(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}

	allocated, err := s.allocationRepo.SumAppliedToCharge(ctx, charge.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum charge allocations: %w", err)
	}

	return &ChargeDetailResponse{
		ChargeResponse: ToChargeResponse(charge),
		Allocated:      allocated,
		Outstanding:    charge.OutstandingAfter(allocated),
	}, nil
}

// ListUnitCharges retrieves a unit's charges matching the filter, newest
// period first
func (s *StatementService) ListUnitCharges(ctx context.Context, unitID uuid.UUID, filter billing.ChargeFilter) ([]ChargeResponse, error) {
	charges, err := s.chargeRepo.FindByUnit(ctx, unitID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit charges: %w", err)
	}
	return ToChargeResponses(charges), nil
}

// computeUnitBalance assembles the balance from the ledger aggregates
func (s *StatementService) computeUnitBalance(ctx context.Context, unitID uuid.UUID) (*billing.UnitBalance, error) {
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, shared.NewDomainError("UNIT_NOT_FOUND", "Unit not found")
	}

	charged, err := s.chargeRepo.SumChargedByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum charges: %w", err)
	}
	applied, err := s.allocationRepo.SumAppliedToUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations: %w", err)
	}
	approved, err := s.paymentRepo.SumApprovedByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum approved payments: %w", err)
	}
	unpaidMonths, err := s.chargeRepo.CountUnpaidByUnit(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unpaid months: %w", err)
	}
	lastPaymentAt, err := s.paymentRepo.LastApprovedReviewedAt(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to find last payment: %w", err)
	}

	return billing.BuildUnitBalance(unitID, unit.CommunityID, charged, applied, approved, int(unpaidMonths), lastPaymentAt), nil
}
