package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeService handles the creation lifecycle of monthly charges: the
// monthly generation run, hand-created charges, and administrative voiding.
type ChargeService struct {
	scope             TransactionScope
	communityRepo     community.CommunityRepository
	unitRepo          community.UnitRepository
	allocationService *AllocationService
	eventPublisher    shared.EventPublisher
}

// NewChargeService creates a new ChargeService
func NewChargeService(
	scope TransactionScope,
	communityRepo community.CommunityRepository,
	unitRepo community.UnitRepository,
	allocationService *AllocationService,
) *ChargeService {
	return &ChargeService{
		scope:             scope,
		communityRepo:     communityRepo,
		unitRepo:          unitRepo,
		allocationService: allocationService,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ChargeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GenerateCharges creates the monthly charge for every active unit of a
// community over an inclusive period range. Each month runs in its own
// transaction: a month without a fee schedule is reported and skipped, an
// existing charge is left untouched, and every newly created charge
// immediately receives any unspent owner credit. Re-running the same range
// creates nothing new.
func (s *ChargeService) GenerateCharges(ctx context.Context, req GenerateChargesRequest) (*ChargeGenerationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "generate_charges")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	periods := billing.PeriodsBetween(req.PeriodFrom, req.PeriodTo)
	if len(periods) == 0 {
		err := shared.NewDomainError("INVALID_PERIOD_RANGE", "Period range is empty or inverted")
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCommunityID, req.CommunityID.String(),
		"period_from", billing.FormatPeriod(periods[0]),
		"period_to", billing.FormatPeriod(periods[len(periods)-1]),
		"months", len(periods),
	)

	comm, err := s.communityRepo.FindByID(ctx, req.CommunityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load community: %w", err)
	}
	if comm == nil {
		err := shared.NewDomainError("COMMUNITY_NOT_FOUND", "Community not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	units, err := s.unitRepo.FindActiveByCommunity(ctx, req.CommunityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load active units: %w", err)
	}

	result := &ChargeGenerationResult{
		CommunityID:   req.CommunityID,
		PeriodFrom:    periods[0],
		PeriodTo:      periods[len(periods)-1],
		CreditApplied: decimal.Zero,
	}

	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationGenerateCharges, ""), func(c context.Context) {
		for _, period := range periods {
			batch := &eventBatch{}
			missingFee := false

			err := s.scope.Execute(c, func(repos TransactionalRepositories) error {
				schedule, err := repos.FeeScheduleRepo().FindEffective(c, req.CommunityID, period)
				if err != nil {
					if errors.Is(err, shared.ErrNotFound) {
						missingFee = true
						return nil
					}
					return fmt.Errorf("failed to resolve fee: %w", err)
				}

				for i := range units {
					unit := &units[i]

					exists, err := repos.ChargeRepo().ExistsByUnitAndPeriod(c, unit.ID, period)
					if err != nil {
						return fmt.Errorf("failed to check existing charge: %w", err)
					}
					if exists {
						result.SkippedExisting++
						continue
					}

					charge, err := billing.NewMonthlyCharge(req.CommunityID, unit.ID, period, schedule.Amount)
					if err != nil {
						return err
					}
					if err := repos.ChargeRepo().Save(c, charge); err != nil {
						return fmt.Errorf("failed to save charge: %w", err)
					}
					batch.add(charge)
					result.Created++

					applied, err := s.allocationService.applyCreditToCharge(c, repos, charge, batch)
					if err != nil {
						return err
					}
					result.CreditApplied = result.CreditApplied.Add(applied)
				}
				return nil
			})
			if err != nil {
				operationErr = fmt.Errorf("charge generation failed at %s: %w", billing.FormatPeriod(period), err)
				return
			}

			if missingFee {
				result.MissingFeePeriods = append(result.MissingFeePeriods, billing.FormatPeriod(period))
				continue
			}
			publishEvents(c, s.eventPublisher, batch.sources...)
		}
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	telemetry.AddEvent(span, "charges_generated",
		"created", result.Created,
		"skipped_existing", result.SkippedExisting,
		"missing_fee_periods", len(result.MissingFeePeriods),
	)

	return result, nil
}

// CreateCharge creates a single charge by hand, outside the generation run.
// The charge immediately receives any unspent owner credit, like a
// generated one.
func (s *ChargeService) CreateCharge(ctx context.Context, req CreateChargeRequest) (*ChargeDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "create")
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

	batch := &eventBatch{}
	var response *ChargeDetailResponse

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.ChargeRepo().ExistsByUnitAndPeriod(ctx, unit.ID, req.Period)
		if err != nil {
			return fmt.Errorf("failed to check existing charge: %w", err)
		}
		if exists {
			return shared.NewDomainError("CHARGE_EXISTS", "A charge already exists for this unit and period")
		}

		charge, err := billing.NewMonthlyCharge(unit.CommunityID, unit.ID, req.Period, req.Amount)
		if err != nil {
			return err
		}
		if req.DueDate != nil {
			charge.SetDueDate(req.DueDate)
		}
		if err := repos.ChargeRepo().Save(ctx, charge); err != nil {
			return fmt.Errorf("failed to save charge: %w", err)
		}
		batch.add(charge)

		applied, err := s.allocationService.applyCreditToCharge(ctx, repos, charge, batch)
		if err != nil {
			return err
		}

		response = &ChargeDetailResponse{
			ChargeResponse: ToChargeResponse(charge),
			Allocated:      applied,
			Outstanding:    charge.OutstandingAfter(applied),
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, batch.sources...)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChargeID, response.ID.String(),
		telemetry.SpanAttrPeriod, billing.FormatPeriod(response.Period),
	)

	return response, nil
}

// VoidCharge administratively cancels a charge. VOID is sticky: the charge
// drops out of balance and statement totals and is never recomputed again.
// Allocations pointing at it keep their rows; the money they consumed is
// simply no longer owed.
func (s *ChargeService) VoidCharge(ctx context.Context, chargeID uuid.UUID) (*ChargeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "charge", "void")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrChargeID, chargeID.String())

	batch := &eventBatch{}
	var response *ChargeResponse

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		charge, err := repos.ChargeRepo().FindByIDForUpdate(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load charge: %w", err)
		}
		if charge == nil {
			return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
		}

		if err := charge.Void(); err != nil {
			return err
		}
		if err := repos.ChargeRepo().Save(ctx, charge); err != nil {
			return fmt.Errorf("failed to save charge: %w", err)
		}
		batch.add(charge)

		resp := ToChargeResponse(charge)
		response = &resp
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, batch.sources...)

	return response, nil
}
