package community

import (
	"context"
	"fmt"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// OwnerService handles owner registration and contact details. Owners are
// registered per community; email is the natural key and is stored
// normalized.
type OwnerService struct {
	communityRepo  community.CommunityRepository
	ownerRepo      community.OwnerRepository
	eventPublisher shared.EventPublisher
}

// NewOwnerService creates a new OwnerService
func NewOwnerService(
	communityRepo community.CommunityRepository,
	ownerRepo community.OwnerRepository,
) *OwnerService {
	return &OwnerService{
		communityRepo: communityRepo,
		ownerRepo:     ownerRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OwnerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterOwner registers a new owner in a community
func (s *OwnerService) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*OwnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "owner", "register")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

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

	owner, err := community.NewOwner(req.CommunityID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Dedup on the normalized email the aggregate stores, not the raw input
	exists, err := s.ownerRepo.ExistsByEmail(ctx, owner.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check owner email: %w", err)
	}
	if exists {
		err := shared.NewDomainError("EMAIL_EXISTS", "An owner with this email already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Phone != "" || req.TaxID != "" {
		if err := owner.SetContact(req.Phone, req.TaxID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.Notes != "" {
		owner.SetNotes(req.Notes)
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, owner)

	response := ToOwnerResponse(owner)
	return &response, nil
}

// UpdateOwner updates an owner's name and contact details
func (s *OwnerService) UpdateOwner(ctx context.Context, ownerID uuid.UUID, req UpdateOwnerRequest) (*OwnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "owner", "update")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	owner, err := s.findOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := owner.Update(req.FirstName, req.LastName); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := owner.SetContact(req.Phone, req.TaxID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, owner)

	response := ToOwnerResponse(owner)
	return &response, nil
}

// UpdateOwnerEmail changes an owner's email after checking it is not in
// use by another owner
func (s *OwnerService) UpdateOwnerEmail(ctx context.Context, ownerID uuid.UUID, email string) (*OwnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "owner", "update_email")
	defer span.End()

	owner, err := s.findOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := owner.UpdateEmail(email); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	existing, err := s.ownerRepo.FindByEmail(ctx, owner.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check owner email: %w", err)
	}
	if existing != nil && existing.ID != owner.ID {
		err := shared.NewDomainError("EMAIL_EXISTS", "An owner with this email already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, owner)

	response := ToOwnerResponse(owner)
	return &response, nil
}

// ActivateOwner reactivates an owner
func (s *OwnerService) ActivateOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "owner", "activate")
	defer span.End()

	owner, err := s.findOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := owner.Activate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, owner)

	response := ToOwnerResponse(owner)
	return &response, nil
}

// DeactivateOwner deactivates an owner. An inactive owner cannot be
// assigned to a unit.
func (s *OwnerService) DeactivateOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "owner", "deactivate")
	defer span.End()

	owner, err := s.findOwner(ctx, ownerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := owner.Deactivate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, owner)

	response := ToOwnerResponse(owner)
	return &response, nil
}

// GetOwner retrieves an owner by ID
func (s *OwnerService) GetOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerResponse, error) {
	owner, err := s.findOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	response := ToOwnerResponse(owner)
	return &response, nil
}

// GetOwnerByEmail retrieves an owner by email
func (s *OwnerService) GetOwnerByEmail(ctx context.Context, email string) (*OwnerResponse, error) {
	owner, err := s.ownerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner == nil {
		return nil, shared.NewDomainError("OWNER_NOT_FOUND", "Owner not found")
	}

	response := ToOwnerResponse(owner)
	return &response, nil
}

// ListOwners retrieves the owners of a community with pagination
func (s *OwnerService) ListOwners(ctx context.Context, communityID uuid.UUID, filter community.OwnerFilter) ([]OwnerResponse, int64, error) {
	applyFilterDefaults(&filter.Filter)
	filter.CommunityID = &communityID

	owners, err := s.ownerRepo.FindByCommunity(ctx, communityID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list owners: %w", err)
	}

	total, err := s.ownerRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count owners: %w", err)
	}

	return ToOwnerResponses(owners), total, nil
}

func (s *OwnerService) findOwner(ctx context.Context, ownerID uuid.UUID) (*community.Owner, error) {
	owner, err := s.ownerRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner == nil {
		return nil, shared.NewDomainError("OWNER_NOT_FOUND", "Owner not found")
	}
	return owner, nil
}
