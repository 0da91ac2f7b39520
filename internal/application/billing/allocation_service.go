package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationService owns every write to the allocation edges of the ledger:
// applying unspent payment credit to charges and keeping charge statuses in
// sync with the allocation rows.
//
// Lock acquisition order is fixed across all call paths: charge rows are
// locked before the payment rows they may draw from. Concurrent credit
// applications against the same charge serialize on its row lock; callers
// racing on the same payment pool serialize on the payment row locks.
type AllocationService struct {
	scope          TransactionScope
	fifo           *billing.FIFOCreditStrategy
	oldestFirst    *billing.OldestPeriodFirstStrategy
	eventPublisher shared.EventPublisher
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(scope TransactionScope) *AllocationService {
	return &AllocationService{
		scope:       scope,
		fifo:        billing.NewFIFOCreditStrategy(),
		oldestFirst: billing.NewOldestPeriodFirstStrategy(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AllocationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyAvailableCredit pulls unallocated money from the unit's approved
// payments onto one charge, oldest credit first, until the charge is
// satisfied or the credit runs out. Returns the total applied, zero when
// the charge is already satisfied, frozen, or no credit is available.
func (s *AllocationService) ApplyAvailableCredit(ctx context.Context, chargeID uuid.UUID) (decimal.Decimal, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "apply_available_credit")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrChargeID, chargeID.String())

	applied := decimal.Zero
	batch := &eventBatch{}
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationApplyCredit, "on_demand"), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			charge, err := repos.ChargeRepo().FindByIDForUpdate(c, chargeID)
			if err != nil {
				return fmt.Errorf("failed to load charge: %w", err)
			}
			if charge == nil {
				return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
			}

			applied, err = s.applyCreditToCharge(c, repos, charge, batch)
			return err
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return decimal.Zero, operationErr
	}

	publishEvents(ctx, s.eventPublisher, batch.sources...)
	telemetry.SetAttribute(span, telemetry.SpanAttrAmount, applied.String())

	return applied, nil
}

// RecomputeChargeStatus re-derives one charge's status from its allocation
// rows and persists the status field when it moved. Returns the resulting
// status and whether it changed. A VOID charge never changes.
func (s *AllocationService) RecomputeChargeStatus(ctx context.Context, chargeID uuid.UUID) (billing.ChargeStatus, bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "recompute_charge_status")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrChargeID, chargeID.String())

	var status billing.ChargeStatus
	var changed bool
	batch := &eventBatch{}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		charge, err := repos.ChargeRepo().FindByIDForUpdate(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load charge: %w", err)
		}
		if charge == nil {
			return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
		}

		allocated, err := repos.AllocationRepo().SumAppliedToCharge(ctx, charge.ID)
		if err != nil {
			return fmt.Errorf("failed to sum charge allocations: %w", err)
		}

		changed, err = s.recomputeCharge(ctx, repos, charge, allocated, batch)
		status = charge.Status
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", false, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrChargeStatus, status.String())
	publishEvents(ctx, s.eventPublisher, batch.sources...)

	return status, changed, nil
}

// AllocateManually applies a specific amount from one approved payment onto
// one open charge, bypassing the automatic strategies. This is the correction
// path for review mistakes and special arrangements. The same invariants hold
// as on the automatic paths: the payment must have enough unspent credit and
// the charge cannot be pushed past its amount.
func (s *AllocationService) AllocateManually(ctx context.Context, req AllocateManuallyRequest) (*AllocationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "allocation", "allocate_manually")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
		telemetry.SpanAttrChargeID, req.ChargeID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	batch := &eventBatch{}
	var response *AllocationResponse
	var operationErr error

	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationApplyCredit, "manual"), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			// Charge row first, payment row second, same order as the
			// automatic paths
			charge, err := repos.ChargeRepo().FindByIDForUpdate(c, req.ChargeID)
			if err != nil {
				return fmt.Errorf("failed to load charge: %w", err)
			}
			if charge == nil {
				return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
			}
			if !charge.IsOpen() {
				return shared.NewDomainError("CHARGE_NOT_OPEN", "Charge does not accept allocations in its current status")
			}

			payment, err := repos.PaymentRepo().FindByIDForUpdate(c, req.PaymentID)
			if err != nil {
				return fmt.Errorf("failed to load payment: %w", err)
			}
			if payment == nil {
				return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
			}
			if !payment.IsApproved() {
				return shared.NewDomainError("PAYMENT_NOT_APPROVED", "Only approved payments provide credit")
			}

			spent, err := repos.AllocationRepo().SumByPayment(c, payment.ID)
			if err != nil {
				return fmt.Errorf("failed to sum payment allocations: %w", err)
			}
			if req.Amount.GreaterThan(payment.RemainingAfter(spent)) {
				return shared.ErrInsufficientCredit
			}

			allocated, err := repos.AllocationRepo().SumAppliedToCharge(c, charge.ID)
			if err != nil {
				return fmt.Errorf("failed to sum charge allocations: %w", err)
			}
			if req.Amount.GreaterThan(charge.OutstandingAfter(allocated)) {
				return shared.NewDomainError("AMOUNT_EXCEEDS_BALANCE", "Amount exceeds the charge's outstanding balance")
			}

			allocation, err := s.upsertAllocation(c, repos, payment, charge, req.Amount, batch)
			if err != nil {
				return err
			}
			if _, err := s.recomputeCharge(c, repos, charge, allocated.Add(req.Amount), batch); err != nil {
				return err
			}

			r := ToAllocationResponse(allocation, charge.Status)
			response = &r
			return nil
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	publishEvents(ctx, s.eventPublisher, batch.sources...)
	telemetry.SetAttributes(span, telemetry.SpanAttrChargeStatus, response.ChargeStatus.String())

	return response, nil
}

// applyCreditToCharge runs the credit application walk against a charge that
// is already locked in the current transaction. The walk reads the charge's
// outstanding balance, locks the unit's approved payments, consumes their
// unspent credit oldest-first, and recomputes the charge status.
func (s *AllocationService) applyCreditToCharge(ctx context.Context, repos TransactionalRepositories, charge *billing.MonthlyCharge, batch *eventBatch) (decimal.Decimal, error) {
	// Satisfied or frozen charges never receive further allocation
	if !charge.IsOpen() {
		return decimal.Zero, nil
	}

	allocated, err := repos.AllocationRepo().SumAppliedToCharge(ctx, charge.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum charge allocations: %w", err)
	}
	balance := charge.OutstandingAfter(allocated)
	if balance.IsZero() {
		return decimal.Zero, nil
	}

	// The charge row lock is already held; payment row locks follow
	payments, err := repos.PaymentRepo().FindApprovedByUnitForUpdate(ctx, charge.UnitID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load approved payments: %w", err)
	}
	if len(payments) == 0 {
		return decimal.Zero, nil
	}

	paymentIDs := make([]uuid.UUID, len(payments))
	paymentsByID := make(map[uuid.UUID]*billing.PaymentSubmission, len(payments))
	for i := range payments {
		paymentIDs[i] = payments[i].ID
		paymentsByID[payments[i].ID] = &payments[i]
	}
	allocatedByPayment, err := repos.AllocationRepo().SumByPayments(ctx, paymentIDs)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payment allocations: %w", err)
	}

	sources := make([]billing.CreditSource, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		remaining := p.RemainingAfter(allocatedByPayment[p.ID])
		if !remaining.IsPositive() {
			continue
		}
		sources = append(sources, billing.CreditSource{
			PaymentID:   p.ID,
			Available:   remaining,
			ReviewedAt:  p.ReviewedAt,
			SubmittedAt: p.SubmittedAt,
		})
	}

	plan, err := s.fifo.Draw(balance, sources)
	if err != nil {
		return decimal.Zero, err
	}

	for _, draw := range plan.Draws {
		if _, err := s.upsertAllocation(ctx, repos, paymentsByID[draw.PaymentID], charge, draw.Amount, batch); err != nil {
			return decimal.Zero, err
		}
	}

	if _, err := s.recomputeCharge(ctx, repos, charge, allocated.Add(plan.TotalApplied), batch); err != nil {
		return decimal.Zero, err
	}

	return plan.TotalApplied, nil
}

// autoAllocate sweeps the unit's whole pool of unspent approved credit
// across its open charges, oldest period first. Runs inside the caller's
// transaction; charge rows are locked before payment rows.
func (s *AllocationService) autoAllocate(ctx context.Context, repos TransactionalRepositories, unitID uuid.UUID, batch *eventBatch) (*billing.AutoAllocationResult, error) {
	charges, err := repos.ChargeRepo().FindOpenByUnitForUpdate(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open charges: %w", err)
	}
	if len(charges) == 0 {
		return &billing.AutoAllocationResult{TotalAllocated: decimal.Zero, RemainingCredit: decimal.Zero}, nil
	}

	chargeIDs := make([]uuid.UUID, len(charges))
	chargesByID := make(map[uuid.UUID]*billing.MonthlyCharge, len(charges))
	for i := range charges {
		chargeIDs[i] = charges[i].ID
		chargesByID[charges[i].ID] = &charges[i]
	}
	appliedByCharge, err := repos.AllocationRepo().SumAppliedToCharges(ctx, chargeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum charge allocations: %w", err)
	}

	payments, err := repos.PaymentRepo().FindApprovedByUnitForUpdate(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved payments: %w", err)
	}
	if len(payments) == 0 {
		return &billing.AutoAllocationResult{TotalAllocated: decimal.Zero, RemainingCredit: decimal.Zero}, nil
	}

	paymentIDs := make([]uuid.UUID, len(payments))
	paymentsByID := make(map[uuid.UUID]*billing.PaymentSubmission, len(payments))
	for i := range payments {
		paymentIDs[i] = payments[i].ID
		paymentsByID[payments[i].ID] = &payments[i]
	}
	allocatedByPayment, err := repos.AllocationRepo().SumByPayments(ctx, paymentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payment allocations: %w", err)
	}

	// Running unspent credit per payment, decremented as draws are planned
	available := make(map[uuid.UUID]decimal.Decimal, len(payments))
	pool := decimal.Zero
	for i := range payments {
		p := &payments[i]
		remaining := p.RemainingAfter(allocatedByPayment[p.ID])
		available[p.ID] = remaining
		pool = pool.Add(remaining)
	}

	targets := make([]billing.ChargeTarget, 0, len(charges))
	for i := range charges {
		c := &charges[i]
		targets = append(targets, billing.ChargeTarget{
			ChargeID:    c.ID,
			Period:      c.Period,
			Outstanding: c.OutstandingAfter(appliedByCharge[c.ID]),
			CreatedAt:   c.CreatedAt,
		})
	}

	plan, err := s.oldestFirst.Distribute(pool, targets)
	if err != nil {
		return nil, err
	}

	for _, alloc := range plan.Allocations {
		charge := chargesByID[alloc.ChargeID]

		sources := make([]billing.CreditSource, 0, len(payments))
		for i := range payments {
			p := &payments[i]
			if !available[p.ID].IsPositive() {
				continue
			}
			sources = append(sources, billing.CreditSource{
				PaymentID:   p.ID,
				Available:   available[p.ID],
				ReviewedAt:  p.ReviewedAt,
				SubmittedAt: p.SubmittedAt,
			})
		}

		draw, err := s.fifo.Draw(alloc.Amount, sources)
		if err != nil {
			return nil, err
		}
		for _, d := range draw.Draws {
			if _, err := s.upsertAllocation(ctx, repos, paymentsByID[d.PaymentID], charge, d.Amount, batch); err != nil {
				return nil, err
			}
			available[d.PaymentID] = available[d.PaymentID].Sub(d.Amount)
		}

		if _, err := s.recomputeCharge(ctx, repos, charge, appliedByCharge[charge.ID].Add(draw.TotalApplied), batch); err != nil {
			return nil, err
		}
	}

	return plan, nil
}

// upsertAllocation records a draw from one payment onto one charge. The
// (payment, charge) pair is unique, so a repeat draw increments the existing
// row instead of inserting a second one.
func (s *AllocationService) upsertAllocation(ctx context.Context, repos TransactionalRepositories, payment *billing.PaymentSubmission, charge *billing.MonthlyCharge, amount decimal.Decimal, batch *eventBatch) (*billing.PaymentAllocation, error) {
	allocation, err := repos.AllocationRepo().FindByPaymentAndCharge(ctx, payment.ID, charge.ID)
	switch {
	case err == nil:
		if err := allocation.Increase(amount, charge.Period); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		allocation, err = billing.NewPaymentAllocation(payment, charge, amount)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to load allocation: %w", err)
	}

	if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
		return nil, fmt.Errorf("failed to save allocation: %w", err)
	}
	batch.add(allocation)

	return allocation, nil
}

// recomputeCharge applies the status recomputation to a locked charge and
// persists only the status field when it moved
func (s *AllocationService) recomputeCharge(ctx context.Context, repos TransactionalRepositories, charge *billing.MonthlyCharge, allocated decimal.Decimal, batch *eventBatch) (bool, error) {
	if !charge.RecomputeStatus(allocated) {
		return false, nil
	}
	if err := repos.ChargeRepo().UpdateStatus(ctx, charge.ID, charge.Status); err != nil {
		return false, fmt.Errorf("failed to update charge status: %w", err)
	}
	batch.add(charge)
	return true, nil
}
