package persistence

import (
	"context"
	"errors"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Unit, error) {
	var unit community.Unit
	if err := r.db.WithContext(ctx).First(&unit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// FindByReference finds a unit by community and reference
func (r *GormUnitRepository) FindByReference(ctx context.Context, communityID uuid.UUID, reference string) (*community.Unit, error) {
	var unit community.Unit
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND reference = ?", communityID, reference).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// FindByCommunity finds units belonging to a community
func (r *GormUnitRepository) FindByCommunity(ctx context.Context, communityID uuid.UUID, filter community.UnitFilter) ([]community.Unit, error) {
	filter.CommunityID = &communityID

	var units []community.Unit
	query := applyUnitFilter(r.db.WithContext(ctx).Model(&community.Unit{}), filter)
	if err := query.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindActiveByCommunity finds the active units of a community ordered by reference
func (r *GormUnitRepository) FindActiveByCommunity(ctx context.Context, communityID uuid.UUID) ([]community.Unit, error) {
	var units []community.Unit
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND active = ?", communityID, true).
		Order("reference ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// FindByOwner finds the unit currently assigned to an owner
func (r *GormUnitRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*community.Unit, error) {
	var unit community.Unit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

// Save creates or updates a unit
func (r *GormUnitRepository) Save(ctx context.Context, u *community.Unit) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// ExistsByReference checks if a unit with the given reference exists in a community
func (r *GormUnitRepository) ExistsByReference(ctx context.Context, communityID uuid.UUID, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&community.Unit{}).
		Where("community_id = ? AND reference = ?", communityID, reference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts units matching the filter
func (r *GormUnitRepository) Count(ctx context.Context, filter community.UnitFilter) (int64, error) {
	var count int64
	query := applyUnitConditions(r.db.WithContext(ctx).Model(&community.Unit{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyUnitFilter(query *gorm.DB, filter community.UnitFilter) *gorm.DB {
	query = applyUnitConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, UnitSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func applyUnitConditions(query *gorm.DB, filter community.UnitFilter) *gorm.DB {
	if filter.CommunityID != nil {
		query = query.Where("community_id = ?", *filter.CommunityID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormUnitRepository implements UnitRepository
var _ community.UnitRepository = (*GormUnitRepository)(nil)
