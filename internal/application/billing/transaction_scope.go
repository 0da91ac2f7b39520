package billing

import (
	"context"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/community"
)

// TransactionScope provides transactional access to the ledger repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed or
// rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the ledger repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Aggregate boundary notes:
//   - ChargeRepo / PaymentRepo: the two lockable aggregates of the ledger.
//     Row locks taken through their ForUpdate finders are held until the
//     scope commits or rolls back.
//   - AllocationRepo: the edges between payments and charges. Allocations
//     are only ever written inside a scope together with the status update
//     of the charge they fund.
//   - UnitRepo: read-only within billing scopes; charge generation walks the
//     active units of a community inside the same transaction that inserts
//     their charges.
type TransactionalRepositories interface {
	// FeeScheduleRepo returns the fee schedule repository scoped to the current transaction
	FeeScheduleRepo() billing.FeeScheduleRepository
	// ChargeRepo returns the monthly charge repository scoped to the current transaction
	ChargeRepo() billing.MonthlyChargeRepository
	// PaymentRepo returns the payment submission repository scoped to the current transaction
	PaymentRepo() billing.PaymentSubmissionRepository
	// AllocationRepo returns the payment allocation repository scoped to the current transaction
	AllocationRepo() billing.PaymentAllocationRepository
	// UnitRepo returns the unit repository scoped to the current transaction
	UnitRepo() community.UnitRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	scheduleRepo   billing.FeeScheduleRepository
	chargeRepo     billing.MonthlyChargeRepository
	paymentRepo    billing.PaymentSubmissionRepository
	allocationRepo billing.PaymentAllocationRepository
	unitRepo       community.UnitRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	scheduleRepo billing.FeeScheduleRepository,
	chargeRepo billing.MonthlyChargeRepository,
	paymentRepo billing.PaymentSubmissionRepository,
	allocationRepo billing.PaymentAllocationRepository,
	unitRepo community.UnitRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		scheduleRepo:   scheduleRepo,
		chargeRepo:     chargeRepo,
		paymentRepo:    paymentRepo,
		allocationRepo: allocationRepo,
		unitRepo:       unitRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// FeeScheduleRepo returns the fee schedule repository.
func (s *NoOpTransactionScope) FeeScheduleRepo() billing.FeeScheduleRepository {
	return s.scheduleRepo
}

// ChargeRepo returns the monthly charge repository.
func (s *NoOpTransactionScope) ChargeRepo() billing.MonthlyChargeRepository {
	return s.chargeRepo
}

// PaymentRepo returns the payment submission repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentSubmissionRepository {
	return s.paymentRepo
}

// AllocationRepo returns the payment allocation repository.
func (s *NoOpTransactionScope) AllocationRepo() billing.PaymentAllocationRepository {
	return s.allocationRepo
}

// UnitRepo returns the unit repository.
func (s *NoOpTransactionScope) UnitRepo() community.UnitRepository {
	return s.unitRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
