package community

import (
	"context"
	"fmt"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CommunityService handles community lifecycle operations. A community is
// the tenancy boundary: units, owners, fee schedules, charges, and payments
// all hang off one.
type CommunityService struct {
	communityRepo  community.CommunityRepository
	eventPublisher shared.EventPublisher
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(communityRepo community.CommunityRepository) *CommunityService {
	return &CommunityService{
		communityRepo: communityRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CommunityService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateCommunity registers a new community
func (s *CommunityService) CreateCommunity(ctx context.Context, req CreateCommunityRequest) (*CommunityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "community", "create")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Code != "" {
		exists, err := s.communityRepo.ExistsByCode(ctx, req.Code)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check community code: %w", err)
		}
		if exists {
			err := shared.NewDomainError("CODE_EXISTS", "A community with this code already exists")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	comm, err := community.NewCommunity(req.Name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Address != "" {
		if err := comm.Update(req.Name, req.Address); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.Code != "" {
		if err := comm.SetCode(req.Code); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.communityRepo.Save(ctx, comm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, comm)

	response := ToCommunityResponse(comm)
	return &response, nil
}

// UpdateCommunity updates a community's name and address
func (s *CommunityService) UpdateCommunity(ctx context.Context, communityID uuid.UUID, req UpdateCommunityRequest) (*CommunityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "community", "update")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	comm, err := s.findCommunity(ctx, communityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := comm.Update(req.Name, req.Address); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.communityRepo.Save(ctx, comm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, comm)

	response := ToCommunityResponse(comm)
	return &response, nil
}

// UpdateCommunityCode changes a community's short code. An empty code
// clears it.
func (s *CommunityService) UpdateCommunityCode(ctx context.Context, communityID uuid.UUID, code string) (*CommunityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "community", "update_code")
	defer span.End()

	comm, err := s.findCommunity(ctx, communityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if code != "" {
		existing, err := s.communityRepo.FindByCode(ctx, code)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check community code: %w", err)
		}
		if existing != nil && existing.ID != comm.ID {
			err := shared.NewDomainError("CODE_EXISTS", "A community with this code already exists")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := comm.SetCode(code); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.communityRepo.Save(ctx, comm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	response := ToCommunityResponse(comm)
	return &response, nil
}

// ActivateCommunity reactivates a community
func (s *CommunityService) ActivateCommunity(ctx context.Context, communityID uuid.UUID) (*CommunityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "community", "activate")
	defer span.End()

	comm, err := s.findCommunity(ctx, communityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := comm.Activate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.communityRepo.Save(ctx, comm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, comm)

	response := ToCommunityResponse(comm)
	return &response, nil
}

// DeactivateCommunity deactivates a community. Charge generation skips
// inactive communities entirely.
func (s *CommunityService) DeactivateCommunity(ctx context.Context, communityID uuid.UUID) (*CommunityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "community", "deactivate")
	defer span.End()

	comm, err := s.findCommunity(ctx, communityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := comm.Deactivate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.communityRepo.Save(ctx, comm); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save community: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, comm)

	response := ToCommunityResponse(comm)
	return &response, nil
}

// GetCommunity retrieves a community by ID
func (s *CommunityService) GetCommunity(ctx context.Context, communityID uuid.UUID) (*CommunityResponse, error) {
	comm, err := s.findCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	response := ToCommunityResponse(comm)
	return &response, nil
}

// GetCommunityByCode retrieves a community by its short code
func (s *CommunityService) GetCommunityByCode(ctx context.Context, code string) (*CommunityResponse, error) {
	comm, err := s.communityRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load community: %w", err)
	}
	if comm == nil {
		return nil, shared.NewDomainError("COMMUNITY_NOT_FOUND", "Community not found")
	}

	response := ToCommunityResponse(comm)
	return &response, nil
}

// ListCommunities retrieves communities with pagination
func (s *CommunityService) ListCommunities(ctx context.Context, filter shared.Filter) ([]CommunityResponse, int64, error) {
	applyFilterDefaults(&filter)

	communities, err := s.communityRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list communities: %w", err)
	}

	total, err := s.communityRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count communities: %w", err)
	}

	return ToCommunityResponses(communities), total, nil
}

// ListActiveCommunities retrieves active communities
func (s *CommunityService) ListActiveCommunities(ctx context.Context, filter shared.Filter) ([]CommunityResponse, error) {
	applyFilterDefaults(&filter)

	communities, err := s.communityRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}

	return ToCommunityResponses(communities), nil
}

func (s *CommunityService) findCommunity(ctx context.Context, communityID uuid.UUID) (*community.Community, error) {
	comm, err := s.communityRepo.FindByID(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load community: %w", err)
	}
	if comm == nil {
		return nil, shared.NewDomainError("COMMUNITY_NOT_FOUND", "Community not found")
	}
	return comm, nil
}

func applyFilterDefaults(filter *shared.Filter) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
}
