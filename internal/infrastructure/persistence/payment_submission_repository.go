package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentSubmissionRepository implements PaymentSubmissionRepository using GORM
type GormPaymentSubmissionRepository struct {
	db *gorm.DB
}

// NewGormPaymentSubmissionRepository creates a new GormPaymentSubmissionRepository
func NewGormPaymentSubmissionRepository(db *gorm.DB) *GormPaymentSubmissionRepository {
	return &GormPaymentSubmissionRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentSubmission, error) {
	var payment billing.PaymentSubmission
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByIDForUpdate finds a payment by its ID holding an exclusive row lock
func (r *GormPaymentSubmissionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.PaymentSubmission, error) {
	var payment billing.PaymentSubmission
	if err := lockForUpdate(r.db.WithContext(ctx)).
		First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByUnit finds a unit's payments matching the filter, newest first
func (r *GormPaymentSubmissionRepository) FindByUnit(ctx context.Context, unitID uuid.UUID, filter billing.PaymentFilter) ([]billing.PaymentSubmission, error) {
	filter.UnitID = &unitID

	var payments []billing.PaymentSubmission
	query := applyPaymentConditions(r.db.WithContext(ctx).Model(&billing.PaymentSubmission{}), filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("submitted_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindSubmittedByCommunity finds a community's payments awaiting review
func (r *GormPaymentSubmissionRepository) FindSubmittedByCommunity(ctx context.Context, communityID uuid.UUID, filter shared.Filter) ([]billing.PaymentSubmission, error) {
	var payments []billing.PaymentSubmission
	query := r.db.WithContext(ctx).
		Model(&billing.PaymentSubmission{}).
		Where("community_id = ? AND status = ?", communityID, billing.PaymentStatusSubmitted)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("submitted_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindApprovedByUnitForUpdate finds a unit's APPROVED payments holding
// exclusive row locks, oldest credit first. The review timestamp decides
// the order; submitted_at covers approved rows that predate review
// tracking, and id gives a total order for equal timestamps.
func (r *GormPaymentSubmissionRepository) FindApprovedByUnitForUpdate(ctx context.Context, unitID uuid.UUID) ([]billing.PaymentSubmission, error) {
	var payments []billing.PaymentSubmission
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("unit_id = ? AND status = ?", unitID, billing.PaymentStatusApproved).
		Order("COALESCE(reviewed_at, submitted_at) ASC, submitted_at ASC, id ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// SumApprovedByUnit sums the amounts of a unit's APPROVED payments
func (r *GormPaymentSubmissionRepository) SumApprovedByUnit(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.PaymentSubmission{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("unit_id = ? AND status = ?", unitID, billing.PaymentStatusApproved).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// LastApprovedReviewedAt returns the latest review timestamp among a unit's
// APPROVED payments, or nil when there are none
func (r *GormPaymentSubmissionRepository) LastApprovedReviewedAt(ctx context.Context, unitID uuid.UUID) (*time.Time, error) {
	var result struct {
		Last *time.Time
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.PaymentSubmission{}).
		Select("MAX(reviewed_at) as last").
		Where("unit_id = ? AND status = ?", unitID, billing.PaymentStatusApproved).
		Scan(&result).Error; err != nil {
		return nil, err
	}
	return result.Last, nil
}

// Save creates or updates a payment
func (r *GormPaymentSubmissionRepository) Save(ctx context.Context, payment *billing.PaymentSubmission) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// Count counts payments matching the filter
func (r *GormPaymentSubmissionRepository) Count(ctx context.Context, filter billing.PaymentFilter) (int64, error) {
	var count int64
	query := applyPaymentConditions(r.db.WithContext(ctx).Model(&billing.PaymentSubmission{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyPaymentConditions(query *gorm.DB, filter billing.PaymentFilter) *gorm.DB {
	if filter.CommunityID != nil {
		query = query.Where("community_id = ?", *filter.CommunityID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SubmittedFrom != nil {
		query = query.Where("submitted_at >= ?", *filter.SubmittedFrom)
	}
	if filter.SubmittedTo != nil {
		query = query.Where("submitted_at <= ?", *filter.SubmittedTo)
	}
	return query
}

// Ensure GormPaymentSubmissionRepository implements PaymentSubmissionRepository
var _ billing.PaymentSubmissionRepository = (*GormPaymentSubmissionRepository)(nil)
