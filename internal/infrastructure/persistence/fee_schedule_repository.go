package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeeScheduleRepository implements FeeScheduleRepository using GORM
type GormFeeScheduleRepository struct {
	db *gorm.DB
}

// NewGormFeeScheduleRepository creates a new GormFeeScheduleRepository
func NewGormFeeScheduleRepository(db *gorm.DB) *GormFeeScheduleRepository {
	return &GormFeeScheduleRepository{db: db}
}

// FindByID finds a fee schedule by its ID
func (r *GormFeeScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FeeSchedule, error) {
	var schedule billing.FeeSchedule
	if err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// FindEffective finds the schedule in force for a community on a date.
// Among schedules with effective_from <= date the latest one wins; created_at
// breaks ties so re-publishing a fee for the same effective date takes over.
func (r *GormFeeScheduleRepository) FindEffective(ctx context.Context, communityID uuid.UUID, date time.Time) (*billing.FeeSchedule, error) {
	var schedule billing.FeeSchedule
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND effective_from <= ?", communityID, date).
		Order("effective_from DESC").
		Order("created_at DESC").
		First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindByCommunity finds a community's schedules, newest effective first
func (r *GormFeeScheduleRepository) FindByCommunity(ctx context.Context, communityID uuid.UUID, filter shared.Filter) ([]billing.FeeSchedule, error) {
	var schedules []billing.FeeSchedule
	query := r.db.WithContext(ctx).
		Model(&billing.FeeSchedule{}).
		Where("community_id = ?", communityID).
		Order("effective_from DESC").
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Save creates a fee schedule
func (r *GormFeeScheduleRepository) Save(ctx context.Context, schedule *billing.FeeSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// Count counts a community's fee schedules
func (r *GormFeeScheduleRepository) Count(ctx context.Context, communityID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.FeeSchedule{}).
		Where("community_id = ?", communityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormFeeScheduleRepository implements FeeScheduleRepository
var _ billing.FeeScheduleRepository = (*GormFeeScheduleRepository)(nil)
