package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCommunityRepository implements CommunityRepository using GORM
type GormCommunityRepository struct {
	db *gorm.DB
}

// NewGormCommunityRepository creates a new GormCommunityRepository
func NewGormCommunityRepository(db *gorm.DB) *GormCommunityRepository {
	return &GormCommunityRepository{db: db}
}

// FindByID finds a community by its ID
func (r *GormCommunityRepository) FindByID(ctx context.Context, id uuid.UUID) (*community.Community, error) {
	var comm community.Community
	if err := r.db.WithContext(ctx).First(&comm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comm, nil
}

// FindByCode finds a community by its short code
func (r *GormCommunityRepository) FindByCode(ctx context.Context, code string) (*community.Community, error) {
	var comm community.Community
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&comm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comm, nil
}

// FindAll finds all communities matching the filter
func (r *GormCommunityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]community.Community, error) {
	var communities []community.Community
	query := applyCommunityFilter(r.db.WithContext(ctx).Model(&community.Community{}), filter)
	if err := query.Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

// FindActive finds all active communities
func (r *GormCommunityRepository) FindActive(ctx context.Context, filter shared.Filter) ([]community.Community, error) {
	var communities []community.Community
	query := applyCommunityFilter(
		r.db.WithContext(ctx).Model(&community.Community{}).Where("active = ?", true),
		filter,
	)
	if err := query.Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

// Save creates or updates a community
func (r *GormCommunityRepository) Save(ctx context.Context, c *community.Community) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// ExistsByCode checks if a community with the given code exists
func (r *GormCommunityRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&community.Community{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts communities matching the filter
func (r *GormCommunityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&community.Community{})
	if filter.Search != "" {
		query = communitySearch(query, filter.Search)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyCommunityFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = communitySearch(query, filter.Search)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, CommunitySortFields, "created_at")
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}

func communitySearch(query *gorm.DB, search string) *gorm.DB {
	pattern := "%" + search + "%"
	return query.Where("name ILIKE ? OR code ILIKE ?", pattern, pattern)
}

// Ensure GormCommunityRepository implements CommunityRepository
var _ community.CommunityRepository = (*GormCommunityRepository)(nil)
