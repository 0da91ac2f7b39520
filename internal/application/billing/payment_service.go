package billing

import (
	"context"
	"fmt"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService handles the payment submission and review workflow.
// Approval is the only path that turns submitted money into spendable
// credit; rejection never touches ledger amounts.
type PaymentService struct {
	scope             TransactionScope
	unitRepo          community.UnitRepository
	paymentRepo       billing.PaymentSubmissionRepository
	allocationService *AllocationService
	eventPublisher    shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	unitRepo community.UnitRepository,
	paymentRepo billing.PaymentSubmissionRepository,
	allocationService *AllocationService,
) *PaymentService {
	return &PaymentService{
		scope:             scope,
		unitRepo:          unitRepo,
		paymentRepo:       paymentRepo,
		allocationService: allocationService,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SubmitPayment records money an owner reports having paid for a unit.
// The unit's current owner is captured on the submission and kept even if
// the unit changes hands later. The unit must have an owner assigned.
func (s *PaymentService) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "submit")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	unit, err := s.unitRepo.FindByID(ctx, req.UnitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		err := shared.NewDomainError("UNIT_NOT_FOUND", "Unit not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !unit.HasOwner() {
		err := shared.NewDomainError("UNIT_WITHOUT_OWNER", "The unit has no owner assigned")
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := billing.NewPaymentSubmission(unit.CommunityID, unit.ID, *unit.OwnerID, req.Amount, req.Reference)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, payment)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrUnitID, payment.UnitID.String(),
		telemetry.SpanAttrOwnerID, payment.OwnerID.String(),
		telemetry.SpanAttrAmount, payment.Amount.String(),
	)

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ApprovePayment marks a submitted payment as approved, making its amount
// available as credit. The status of every charge the payment already has
// allocations into is recomputed unconditionally. With AutoAllocate set,
// the unit's whole pool of unspent credit is then swept across its open
// charges, oldest period first.
//
// Re-approving an already-reviewed payment is not an error: the result
// comes back with AlreadyReviewed set and nothing changes.
func (s *PaymentService) ApprovePayment(ctx context.Context, req ApprovePaymentRequest) (*ReviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "approve")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
		telemetry.SpanAttrReviewer, req.ReviewerID.String(),
		"auto_allocate", req.AutoAllocate,
	)

	batch := &eventBatch{}
	var result *ReviewResult
	var operationErr error

	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationApprovePayment, ""), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			payment, err := repos.PaymentRepo().FindByIDForUpdate(c, req.PaymentID)
			if err != nil {
				return fmt.Errorf("failed to load payment: %w", err)
			}
			if payment == nil {
				return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
			}

			if !payment.IsSubmitted() {
				result = &ReviewResult{
					Payment:         ToPaymentResponse(payment),
					AlreadyReviewed: true,
					AllocatedTotal:  decimal.Zero,
				}
				return nil
			}

			if err := payment.Approve(req.ReviewerID); err != nil {
				return err
			}
			if err := repos.PaymentRepo().Save(c, payment); err != nil {
				return fmt.Errorf("failed to save payment: %w", err)
			}
			batch.add(payment)

			// Recompute every charge this payment already has allocations
			// into. In practice none exist yet, since allocation only draws
			// from approved payments, but the pass is unconditional.
			recomputed, err := s.recomputeAllocatedCharges(c, repos, payment.ID, batch)
			if err != nil {
				return err
			}

			allocatedTotal := decimal.Zero
			if req.AutoAllocate {
				swept, err := s.allocationService.autoAllocate(c, repos, payment.UnitID, batch)
				if err != nil {
					return err
				}
				allocatedTotal = swept.TotalAllocated
				recomputed += swept.ChargesCovered + swept.ChargesPartial
			}

			result = &ReviewResult{
				Payment:           ToPaymentResponse(payment),
				AllocatedTotal:    allocatedTotal,
				ChargesRecomputed: recomputed,
			}
			return nil
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	publishEvents(ctx, s.eventPublisher, batch.sources...)
	if result.AlreadyReviewed {
		telemetry.AddEvent(span, "payment_already_reviewed")
	} else {
		telemetry.AddEvent(span, "payment_approved",
			"allocated_total", result.AllocatedTotal.String(),
			"charges_recomputed", result.ChargesRecomputed,
		)
	}

	return result, nil
}

// RejectPayment marks a submitted payment as rejected. No ledger amounts
// change: a rejected payment was never counted as available credit.
//
// Re-rejecting an already-reviewed payment is not an error: the result
// comes back with AlreadyReviewed set and nothing changes.
func (s *PaymentService) RejectPayment(ctx context.Context, req RejectPaymentRequest) (*ReviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reject")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, req.PaymentID.String(),
		telemetry.SpanAttrReviewer, req.ReviewerID.String(),
	)

	batch := &eventBatch{}
	var result *ReviewResult

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByIDForUpdate(ctx, req.PaymentID)
		if err != nil {
			return fmt.Errorf("failed to load payment: %w", err)
		}
		if payment == nil {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}

		if !payment.IsSubmitted() {
			result = &ReviewResult{
				Payment:         ToPaymentResponse(payment),
				AlreadyReviewed: true,
				AllocatedTotal:  decimal.Zero,
			}
			return nil
		}

		if err := payment.Reject(req.ReviewerID, req.Notes); err != nil {
			return err
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		batch.add(payment)

		result = &ReviewResult{
			Payment:        ToPaymentResponse(payment),
			AllocatedTotal: decimal.Zero,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, batch.sources...)

	return result, nil
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListPendingReview retrieves a community's payments awaiting review,
// newest submission first
func (s *PaymentService) ListPendingReview(ctx context.Context, communityID uuid.UUID, filter shared.Filter) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindSubmittedByCommunity(ctx, communityID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payments: %w", err)
	}
	return ToPaymentResponses(payments), nil
}

// ListUnitPayments retrieves a unit's payments matching the filter,
// newest first
func (s *PaymentService) ListUnitPayments(ctx context.Context, unitID uuid.UUID, filter billing.PaymentFilter) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByUnit(ctx, unitID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit payments: %w", err)
	}
	return ToPaymentResponses(payments), nil
}

// recomputeAllocatedCharges recomputes the status of every charge the
// payment has allocations into, locking each charge row first
func (s *PaymentService) recomputeAllocatedCharges(ctx context.Context, repos TransactionalRepositories, paymentID uuid.UUID, batch *eventBatch) (int, error) {
	chargeIDs, err := repos.AllocationRepo().ChargeIDsByPayment(ctx, paymentID)
	if err != nil {
		return 0, fmt.Errorf("failed to load allocated charges: %w", err)
	}

	recomputed := 0
	for _, chargeID := range chargeIDs {
		charge, err := repos.ChargeRepo().FindByIDForUpdate(ctx, chargeID)
		if err != nil {
			return recomputed, fmt.Errorf("failed to load charge: %w", err)
		}
		if charge == nil {
			continue
		}

		allocated, err := repos.AllocationRepo().SumAppliedToCharge(ctx, charge.ID)
		if err != nil {
			return recomputed, fmt.Errorf("failed to sum charge allocations: %w", err)
		}
		if _, err := s.allocationService.recomputeCharge(ctx, repos, charge, allocated, batch); err != nil {
			return recomputed, err
		}
		recomputed++
	}
	return recomputed, nil
}
