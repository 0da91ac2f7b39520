package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOwnerRepository implements OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by its ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Owner, error) {
	var owner community.Owner
	if err := r.db.WithContext(ctx).First(&owner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &owner, nil
}

// FindByEmail finds an owner by its normalized email
func (r *GormOwnerRepository) FindByEmail(ctx context.Context, email string) (*community.Owner, error) {
	var owner community.Owner
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &owner, nil
}

// FindByCommunity finds owners belonging to a community
func (r *GormOwnerRepository) FindByCommunity(ctx context.Context, communityID uuid.UUID, filter community.OwnerFilter) ([]community.Owner, error) {
	filter.CommunityID = &communityID

	var owners []community.Owner
	query := applyOwnerFilter(r.db.WithContext(ctx).Model(&community.Owner{}), filter)
	if err := query.Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// Save creates or updates an owner
func (r *GormOwnerRepository) Save(ctx context.Context, o *community.Owner) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// ExistsByEmail checks if an owner with the given email exists
func (r *GormOwnerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&community.Owner{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts owners matching the filter
func (r *GormOwnerRepository) Count(ctx context.Context, filter community.OwnerFilter) (int64, error) {
	var count int64
	query := applyOwnerConditions(r.db.WithContext(ctx).Model(&community.Owner{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyOwnerFilter(query *gorm.DB, filter community.OwnerFilter) *gorm.DB {
	query = applyOwnerConditions(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, OwnerSortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func applyOwnerConditions(query *gorm.DB, filter community.OwnerFilter) *gorm.DB {
	if filter.CommunityID != nil {
		query = query.Where("community_id = ?", *filter.CommunityID)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	return query
}

// Ensure GormOwnerRepository implements OwnerRepository
var _ community.OwnerRepository = (*GormOwnerRepository)(nil)
