package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMonthlyChargeRepository implements MonthlyChargeRepository using GORM
type GormMonthlyChargeRepository struct {
	db *gorm.DB
}

// NewGormMonthlyChargeRepository creates a new GormMonthlyChargeRepository
func NewGormMonthlyChargeRepository(db *gorm.DB) *GormMonthlyChargeRepository {
	return &GormMonthlyChargeRepository{db: db}
}

// FindByID finds a charge by its ID
func (r *GormMonthlyChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.MonthlyCharge, error) {
	var charge billing.MonthlyCharge
	if err := r.db.WithContext(ctx).First(&charge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

// FindByIDForUpdate finds a charge by its ID holding an exclusive row lock
func (r *GormMonthlyChargeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.MonthlyCharge, error) {
	var charge billing.MonthlyCharge
	if err := lockForUpdate(r.db.WithContext(ctx)).
		First(&charge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

// FindByUnitAndPeriod finds the charge of a unit for a billing period
func (r *GormMonthlyChargeRepository) FindByUnitAndPeriod(ctx context.Context, unitID uuid.UUID, period time.Time) (*billing.MonthlyCharge, error) {
	var charge billing.MonthlyCharge
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND period = ?", unitID, period).
		First(&charge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &charge, nil
}

// ExistsByUnitAndPeriod checks if a charge exists for a unit and period
func (r *GormMonthlyChargeRepository) ExistsByUnitAndPeriod(ctx context.Context, unitID uuid.UUID, period time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.MonthlyCharge{}).
		Where("unit_id = ? AND period = ?", unitID, period).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByUnit finds a unit's charges matching the filter, newest period first
func (r *GormMonthlyChargeRepository) FindByUnit(ctx context.Context, unitID uuid.UUID, filter billing.ChargeFilter) ([]billing.MonthlyCharge, error) {
	filter.UnitID = &unitID

	var charges []billing.MonthlyCharge
	query := applyChargeConditions(r.db.WithContext(ctx).Model(&billing.MonthlyCharge{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("period DESC").Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

// FindRecentByUnit finds the most recent non-VOID charges of a unit
func (r *GormMonthlyChargeRepository) FindRecentByUnit(ctx context.Context, unitID uuid.UUID, limit int) ([]billing.MonthlyCharge, error) {
	var charges []billing.MonthlyCharge
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND status <> ?", unitID, billing.ChargeStatusVoid).
		Order("period DESC").
		Limit(limit).
		Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

// FindOpenByUnitForUpdate finds the PENDING and PARTIAL charges of a unit,
// oldest period first, holding exclusive row locks
func (r *GormMonthlyChargeRepository) FindOpenByUnitForUpdate(ctx context.Context, unitID uuid.UUID) ([]billing.MonthlyCharge, error) {
	var charges []billing.MonthlyCharge
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("unit_id = ? AND status IN ?", unitID,
			[]billing.ChargeStatus{billing.ChargeStatusPending, billing.ChargeStatusPartial}).
		Order("period ASC").
		Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

// Save creates or updates a charge
func (r *GormMonthlyChargeRepository) Save(ctx context.Context, charge *billing.MonthlyCharge) error {
	return r.db.WithContext(ctx).Save(charge).Error
}

// UpdateStatus persists only the status field of a charge
func (r *GormMonthlyChargeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status billing.ChargeStatus) error {
	return r.db.WithContext(ctx).
		Model(&billing.MonthlyCharge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// SumChargedByUnit sums the amounts of a unit's non-VOID charges
func (r *GormMonthlyChargeRepository) SumChargedByUnit(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.MonthlyCharge{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("unit_id = ? AND status <> ?", unitID, billing.ChargeStatusVoid).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountUnpaidByUnit counts a unit's non-VOID, non-PAID charges
func (r *GormMonthlyChargeRepository) CountUnpaidByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.MonthlyCharge{}).
		Where("unit_id = ? AND status IN ?", unitID,
			[]billing.ChargeStatus{billing.ChargeStatusPending, billing.ChargeStatusPartial}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count counts charges matching the filter
func (r *GormMonthlyChargeRepository) Count(ctx context.Context, filter billing.ChargeFilter) (int64, error) {
	var count int64
	query := applyChargeConditions(r.db.WithContext(ctx).Model(&billing.MonthlyCharge{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyChargeConditions(query *gorm.DB, filter billing.ChargeFilter) *gorm.DB {
	if filter.CommunityID != nil {
		query = query.Where("community_id = ?", *filter.CommunityID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PeriodFrom != nil {
		query = query.Where("period >= ?", *filter.PeriodFrom)
	}
	if filter.PeriodTo != nil {
		query = query.Where("period <= ?", *filter.PeriodTo)
	}
	return query
}

// Ensure GormMonthlyChargeRepository implements MonthlyChargeRepository
var _ billing.MonthlyChargeRepository = (*GormMonthlyChargeRepository)(nil)
