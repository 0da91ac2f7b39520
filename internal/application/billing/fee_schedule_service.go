package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// FeeScheduleService manages the versioned monthly fee of each community.
// Schedules are append-only: changing the fee means creating a new version
// with a later effective date.
type FeeScheduleService struct {
	scheduleRepo   billing.FeeScheduleRepository
	eventPublisher shared.EventPublisher
}

// NewFeeScheduleService creates a new FeeScheduleService
func NewFeeScheduleService(scheduleRepo billing.FeeScheduleRepository) *FeeScheduleService {
	return &FeeScheduleService{scheduleRepo: scheduleRepo}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *FeeScheduleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateSchedule creates a new fee schedule version for a community
func (s *FeeScheduleService) CreateSchedule(ctx context.Context, req CreateFeeScheduleRequest) (*FeeScheduleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_schedule", "create")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	schedule, err := billing.NewFeeSchedule(req.CommunityID, req.Amount, req.EffectiveFrom, req.Notes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save fee schedule: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, schedule)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCommunityID, schedule.CommunityID.String(),
		telemetry.SpanAttrAmount, schedule.Amount.String(),
	)

	response := ToFeeScheduleResponse(schedule)
	return &response, nil
}

// FeeFor resolves the fee in force for a community on a date: the schedule
// with the latest effective-from not after the date. A date no schedule
// covers resolves to a NO_FEE_SCHEDULE error; generation callers treat it
// as "skip this period".
func (s *FeeScheduleService) FeeFor(ctx context.Context, communityID uuid.UUID, date time.Time) (*FeeResolution, error) {
	schedule, err := s.scheduleRepo.FindEffective(ctx, communityID, date)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NO_FEE_SCHEDULE", fmt.Sprintf("No fee schedule in force for %s", billing.FormatPeriod(date)))
		}
		return nil, fmt.Errorf("failed to resolve fee: %w", err)
	}

	return &FeeResolution{
		ScheduleID:    schedule.ID,
		CommunityID:   schedule.CommunityID,
		Amount:        schedule.Amount,
		EffectiveFrom: schedule.EffectiveFrom,
	}, nil
}

// ListSchedules retrieves a community's fee schedule versions, newest
// effective first
func (s *FeeScheduleService) ListSchedules(ctx context.Context, communityID uuid.UUID, filter shared.Filter) ([]FeeScheduleResponse, error) {
	schedules, err := s.scheduleRepo.FindByCommunity(ctx, communityID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee schedules: %w", err)
	}
	return ToFeeScheduleResponses(schedules), nil
}
