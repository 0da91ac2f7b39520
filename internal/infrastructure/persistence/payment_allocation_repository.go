package persistence

import (
	"context"
	"errors"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentAllocationRepository implements PaymentAllocationRepository using GORM
type GormPaymentAllocationRepository struct {
	db *gorm.DB
}

// NewGormPaymentAllocationRepository creates a new GormPaymentAllocationRepository
func NewGormPaymentAllocationRepository(db *gorm.DB) *GormPaymentAllocationRepository {
	return &GormPaymentAllocationRepository{db: db}
}

// FindByPaymentAndCharge finds the allocation from a payment to a charge
func (r *GormPaymentAllocationRepository) FindByPaymentAndCharge(ctx context.Context, paymentID, chargeID uuid.UUID) (*billing.PaymentAllocation, error) {
	var allocation billing.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("payment_id = ? AND charge_id = ?", paymentID, chargeID).
		First(&allocation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &allocation, nil
}

// FindByPayment finds all allocations of a payment
func (r *GormPaymentAllocationRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocations []billing.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// FindByCharge finds all allocations into a charge
func (r *GormPaymentAllocationRepository) FindByCharge(ctx context.Context, chargeID uuid.UUID) ([]billing.PaymentAllocation, error) {
	var allocations []billing.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("charge_id = ?", chargeID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// ChargeIDsByPayment returns the IDs of the charges a payment has allocations into
func (r *GormPaymentAllocationRepository) ChargeIDsByPayment(ctx context.Context, paymentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&billing.PaymentAllocation{}).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Pluck("charge_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save creates or updates an allocation
func (r *GormPaymentAllocationRepository) Save(ctx context.Context, allocation *billing.PaymentAllocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

// SumAppliedToCharge sums the allocations into a charge that are funded by
// APPROVED payments
func (r *GormPaymentAllocationRepository) SumAppliedToCharge(ctx context.Context, chargeID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.approvedAllocations(ctx).
		Select("COALESCE(SUM(payment_allocations.amount_applied), 0) as total").
		Where("payment_allocations.charge_id = ?", chargeID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumAppliedToCharges sums approved-payment allocations per charge for a
// batch of charge IDs
func (r *GormPaymentAllocationRepository) SumAppliedToCharges(ctx context.Context, chargeIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(chargeIDs))
	if len(chargeIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		ChargeID uuid.UUID
		Total    decimal.Decimal
	}
	if err := r.approvedAllocations(ctx).
		Select("payment_allocations.charge_id as charge_id, SUM(payment_allocations.amount_applied) as total").
		Where("payment_allocations.charge_id IN ?", chargeIDs).
		Group("payment_allocations.charge_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.ChargeID] = row.Total
	}
	return totals, nil
}

// SumByPayment sums all allocations of a payment regardless of status
func (r *GormPaymentAllocationRepository) SumByPayment(ctx context.Context, paymentID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.PaymentAllocation{}).
		Select("COALESCE(SUM(amount_applied), 0) as total").
		Where("payment_id = ?", paymentID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByPayments sums allocations per payment for a batch of payment IDs
func (r *GormPaymentAllocationRepository) SumByPayments(ctx context.Context, paymentIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		PaymentID uuid.UUID
		Total     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.PaymentAllocation{}).
		Select("payment_id as payment_id, SUM(amount_applied) as total").
		Where("payment_id IN ?", paymentIDs).
		Group("payment_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.PaymentID] = row.Total
	}
	return totals, nil
}

// SumAppliedToUnit sums the approved-payment allocations into all of a
// unit's charges
func (r *GormPaymentAllocationRepository) SumAppliedToUnit(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.approvedAllocations(ctx).
		Select("COALESCE(SUM(payment_allocations.amount_applied), 0) as total").
		Where("payment_allocations.unit_id = ?", unitID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// approvedAllocations starts a query over allocations funded by APPROVED
// payments. Only approved money counts toward applied totals.
func (r *GormPaymentAllocationRepository) approvedAllocations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&billing.PaymentAllocation{}).
		Joins("JOIN payment_submissions ON payment_submissions.id = payment_allocations.payment_id").
		Where("payment_submissions.status = ?", billing.PaymentStatusApproved)
}

// Ensure GormPaymentAllocationRepository implements PaymentAllocationRepository
var _ billing.PaymentAllocationRepository = (*GormPaymentAllocationRepository)(nil)
