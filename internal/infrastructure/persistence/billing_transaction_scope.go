package persistence

import (
	"context"

	appbilling "github.com/condominio/backend/internal/application/billing"
	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/community"
	"gorm.io/gorm"
)

// GormTransactionScope implements the ledger TransactionScope using GORM
// transactions. Row locks taken through the ForUpdate finders of the scoped
// repositories are held until Execute returns.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to the ledger repositories
// within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// FeeScheduleRepo returns the fee schedule repository scoped to the current transaction.
func (r *gormTransactionalRepositories) FeeScheduleRepo() billing.FeeScheduleRepository {
	return NewGormFeeScheduleRepository(r.tx)
}

// ChargeRepo returns the monthly charge repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ChargeRepo() billing.MonthlyChargeRepository {
	return NewGormMonthlyChargeRepository(r.tx)
}

// PaymentRepo returns the payment submission repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() billing.PaymentSubmissionRepository {
	return NewGormPaymentSubmissionRepository(r.tx)
}

// AllocationRepo returns the payment allocation repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AllocationRepo() billing.PaymentAllocationRepository {
	return NewGormPaymentAllocationRepository(r.tx)
}

// UnitRepo returns the unit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) UnitRepo() community.UnitRepository {
	return NewGormUnitRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
