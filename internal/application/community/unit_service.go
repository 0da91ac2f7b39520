package community

import (
	"context"
	"fmt"
	"strings"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// UnitService handles unit registration and ownership. A unit belongs to
// exactly one community and holds at most one current owner; charges and
// payments reference the unit, not the owner, so ownership changes never
// rewrite ledger history.
type UnitService struct {
	communityRepo  community.CommunityRepository
	unitRepo       community.UnitRepository
	ownerRepo      community.OwnerRepository
	eventPublisher shared.EventPublisher
}

// NewUnitService creates a new UnitService
func NewUnitService(
	communityRepo community.CommunityRepository,
	unitRepo community.UnitRepository,
	ownerRepo community.OwnerRepository,
) *UnitService {
	return &UnitService{
		communityRepo: communityRepo,
		unitRepo:      unitRepo,
		ownerRepo:     ownerRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UnitService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RegisterUnit registers a new unit in a community. The reference must be
// unique within the community.
func (s *UnitService) RegisterUnit(ctx context.Context, req RegisterUnitRequest) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "register")
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

	exists, err := s.unitRepo.ExistsByReference(ctx, req.CommunityID, req.Reference)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check unit reference: %w", err)
	}
	if exists {
		err := shared.NewDomainError("REFERENCE_EXISTS", "A unit with this reference already exists in the community")
		telemetry.RecordError(span, err)
		return nil, err
	}

	address, err := req.Address.toValueObject()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	kind := community.UnitKind(strings.ToUpper(req.Kind))
	unit, err := community.NewUnit(req.CommunityID, kind, req.Reference, address)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.LandArea != nil || req.BuiltArea != nil {
		if err := unit.SetAreas(req.LandArea, req.BuiltArea); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if req.Notes != "" {
		unit.SetNotes(req.Notes)
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, unit)

	response := ToUnitResponse(unit)
	return &response, nil
}

// UpdateUnit updates a unit's reference, address, areas, and notes
func (s *UnitService) UpdateUnit(ctx context.Context, unitID uuid.UUID, req UpdateUnitRequest) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "update")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	unit, err := s.findUnit(ctx, unitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Reference != unit.Reference {
		exists, err := s.unitRepo.ExistsByReference(ctx, unit.CommunityID, req.Reference)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check unit reference: %w", err)
		}
		if exists {
			err := shared.NewDomainError("REFERENCE_EXISTS", "A unit with this reference already exists in the community")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	address, err := req.Address.toValueObject()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := unit.Update(req.Reference, address); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := unit.SetAreas(req.LandArea, req.BuiltArea); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	unit.SetNotes(req.Notes)

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, unit)

	response := ToUnitResponse(unit)
	return &response, nil
}

// AssignOwner assigns an owner to a unit. An owner holds at most one unit,
// so an owner already assigned elsewhere is rejected.
func (s *UnitService) AssignOwner(ctx context.Context, req AssignOwnerRequest) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "assign_owner")
	defer span.End()

	if err := validateRequest(req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	unit, err := s.findUnit(ctx, req.UnitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	owner, err := s.ownerRepo.FindByID(ctx, req.OwnerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner == nil {
		err := shared.NewDomainError("OWNER_NOT_FOUND", "Owner not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	existing, err := s.unitRepo.FindByOwner(ctx, req.OwnerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check owner assignment: %w", err)
	}
	if existing != nil && existing.ID != unit.ID {
		err := shared.NewDomainError("OWNER_HAS_UNIT", "Owner is already assigned to another unit")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := unit.AssignOwner(owner); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, unit)

	response := ToUnitResponse(unit)
	return &response, nil
}

// ClearOwner removes a unit's current owner. Past submissions keep the
// owner captured at submission time.
func (s *UnitService) ClearOwner(ctx context.Context, unitID uuid.UUID) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "clear_owner")
	defer span.End()

	unit, err := s.findUnit(ctx, unitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := unit.ClearOwner(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, unit)

	response := ToUnitResponse(unit)
	return &response, nil
}

// ActivateUnit reactivates a unit so charge generation picks it up again
func (s *UnitService) ActivateUnit(ctx context.Context, unitID uuid.UUID) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "activate")
	defer span.End()

	unit, err := s.findUnit(ctx, unitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := unit.Activate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, unit)

	response := ToUnitResponse(unit)
	return &response, nil
}

// DeactivateUnit deactivates a unit. Existing charges remain collectable;
// future generation runs skip the unit.
func (s *UnitService) DeactivateUnit(ctx context.Context, unitID uuid.UUID) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "deactivate")
	defer span.End()

	unit, err := s.findUnit(ctx, unitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := unit.Deactivate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	publishEvents(ctx, s.eventPublisher, unit)

	response := ToUnitResponse(unit)
	return &response, nil
}

// GetUnit retrieves a unit by ID
func (s *UnitService) GetUnit(ctx context.Context, unitID uuid.UUID) (*UnitResponse, error) {
	unit, err := s.findUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	response := ToUnitResponse(unit)
	return &response, nil
}

// GetUnitByReference retrieves a unit by community and reference
func (s *UnitService) GetUnitByReference(ctx context.Context, communityID uuid.UUID, reference string) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByReference(ctx, communityID, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, shared.NewDomainError("UNIT_NOT_FOUND", "Unit not found")
	}

	response := ToUnitResponse(unit)
	return &response, nil
}

// ListUnits retrieves the units of a community with pagination
func (s *UnitService) ListUnits(ctx context.Context, communityID uuid.UUID, filter community.UnitFilter) ([]UnitResponse, int64, error) {
	applyFilterDefaults(&filter.Filter)
	filter.CommunityID = &communityID

	units, err := s.unitRepo.FindByCommunity(ctx, communityID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list units: %w", err)
	}

	total, err := s.unitRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count units: %w", err)
	}

	return ToUnitResponses(units), total, nil
}

func (s *UnitService) findUnit(ctx context.Context, unitID uuid.UUID) (*community.Unit, error) {
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, shared.NewDomainError("UNIT_NOT_FOUND", "Unit not found")
	}
	return unit, nil
}
