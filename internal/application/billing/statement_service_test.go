package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUnitBalanceCache is a mock implementation of billing.UnitBalanceCache
type MockUnitBalanceCache struct {
	mock.Mock
}

func (m *MockUnitBalanceCache) Get(ctx context.Context, unitID uuid.UUID) (*billing.UnitBalance, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UnitBalance), args.Error(1)
}

func (m *MockUnitBalanceCache) Set(ctx context.Context, balance *billing.UnitBalance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockUnitBalanceCache) Invalidate(ctx context.Context, unitIDs ...uuid.UUID) error {
	args := m.Called(ctx, unitIDs)
	return args.Error(0)
}

type statementServiceMocks struct {
	unitRepo   *MockUnitRepository
	chargeRepo *MockMonthlyChargeRepository
	payRepo    *MockPaymentSubmissionRepository
	allocRepo  *MockPaymentAllocationRepository
}

func newStatementService() (*StatementService, *statementServiceMocks) {
	m := &statementServiceMocks{
		unitRepo:   new(MockUnitRepository),
		chargeRepo: new(MockMonthlyChargeRepository),
		payRepo:    new(MockPaymentSubmissionRepository),
		allocRepo:  new(MockPaymentAllocationRepository),
	}
	service := NewStatementService(m.unitRepo, m.chargeRepo, m.payRepo, m.allocRepo)
	return service, m
}

func TestStatementService_GetUnitBalance(t *testing.T) {
	ctx := context.Background()
	communityID := uuid.New()

	t.Run("assembles the balance from ledger sums", func(t *testing.T) {
		service, m := newStatementService()
		cache := new(MockUnitBalanceCache)
		service.SetBalanceCache(cache)

		unit := createTestUnit(communityID, nil)
		lastPaymentAt := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

		cache.On("Get", mock.Anything, unit.ID).Return(nil, nil).Once()
		m.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil).Once()
		m.chargeRepo.On("SumChargedByUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(300), nil).Once()
		m.allocRepo.On("SumAppliedToUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(250), nil).Once()
		m.payRepo.On("SumApprovedByUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(250), nil).Once()
		m.chargeRepo.On("CountUnpaidByUnit", mock.Anything, unit.ID).Return(int64(1), nil).Once()
		m.payRepo.On("LastApprovedReviewedAt", mock.Anything, unit.ID).Return(&lastPaymentAt, nil).Once()
		cache.On("Set", mock.Anything, mock.AnythingOfType("*billing.UnitBalance")).Return(nil).Once()

		balance, err := service.GetUnitBalance(ctx, unit.ID)

		require.NoError(t, err)
		assert.Equal(t, unit.ID, balance.UnitID)
		assert.Equal(t, communityID, balance.CommunityID)
		assert.Equal(t, decimal.NewFromInt(300), balance.TotalCharged)
		assert.Equal(t, decimal.NewFromInt(250), balance.TotalApplied)
		assert.Equal(t, decimal.NewFromInt(0), balance.CreditAvailable)
		assert.Equal(t, decimal.NewFromInt(50), balance.BalanceDue)
		assert.Equal(t, 1, balance.UnpaidMonths)
		require.NotNil(t, balance.LastPaymentAt)
		assert.Equal(t, lastPaymentAt, *balance.LastPaymentAt)
		cache.AssertExpectations(t)
	})

	t.Run("credit and debt never go below zero", func(t *testing.T) {
		service, m := newStatementService()

		unit := createTestUnit(communityID, nil)

		m.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil).Once()
		m.chargeRepo.On("SumChargedByUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(100), nil).Once()
		m.allocRepo.On("SumAppliedToUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(120), nil).Once()
		m.payRepo.On("SumApprovedByUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(200), nil).Once()
		m.chargeRepo.On("CountUnpaidByUnit", mock.Anything, unit.ID).Return(int64(0), nil).Once()
		m.payRepo.On("LastApprovedReviewedAt", mock.Anything, unit.ID).Return(nil, nil).Once()

		balance, err := service.GetUnitBalance(ctx, unit.ID)

		require.NoError(t, err)
		assert.Equal(t, decimal.Zero, balance.BalanceDue)
		assert.Equal(t, decimal.NewFromInt(80), balance.CreditAvailable)
		assert.Nil(t, balance.LastPaymentAt)
	})

	t.Run("cached balance is served without recomputing", func(t *testing.T) {
		service, m := newStatementService()
		cache := new(MockUnitBalanceCache)
		service.SetBalanceCache(cache)

		unitID := uuid.New()
		cached := billing.BuildUnitBalance(unitID, communityID, decimal.NewFromInt(300), decimal.NewFromInt(300), decimal.NewFromInt(300), 0, nil)

		cache.On("Get", mock.Anything, unitID).Return(cached, nil).Once()

		balance, err := service.GetUnitBalance(ctx, unitID)

		require.NoError(t, err)
		assert.Same(t, cached, balance)
		m.unitRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
	})

	t.Run("cache failures fall back to the store", func(t *testing.T) {
		service, m := newStatementService()
		cache := new(MockUnitBalanceCache)
		service.SetBalanceCache(cache)

		unit := createTestUnit(communityID, nil)

		cache.On("Get", mock.Anything, unit.ID).Return(nil, errors.New("connection refused")).Once()
		m.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil).Once()
		m.chargeRepo.On("SumChargedByUnit", mock.Anything, unit.ID).Return(decimal.NewFromInt(100), nil).Once()
		m.allocRepo.On("SumAppliedToUnit", mock.Anything, unit.ID).Return(decimal.Zero, nil).Once()
		m.payRepo.On("SumApprovedByUnit", mock.Anything, unit.ID).Return(decimal.Zero, nil).Once()
		m.chargeRepo.On("CountUnpaidByUnit", mock.Anything, unit.ID).Return(int64(1), nil).Once()
		m.payRepo.On("LastApprovedReviewedAt", mock.Anything, unit.ID).Return(nil, nil).Once()
		cache.On("Set", mock.Anything, mock.AnythingOfType("*billing.UnitBalance")).Return(errors.New("connection refused")).Once()

		balance, err := service.GetUnitBalance(ctx, unit.ID)

		require.NoError(t, err)
		assert.Equal(t, decimal.NewFromInt(100), balance.BalanceDue)
	})

	t.Run("unit not found", func(t *testing.T) {
		service, m := newStatementService()

		unitID := uuid.New()
		m.unitRepo.On("FindByID", mock.Anything, unitID).Return(nil, nil).Once()

		_, err := service.GetUnitBalance(ctx, unitID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNIT_NOT_FOUND", domainErr.Code)
	})
}

func TestStatementService_GetUnitStatement(t *testing.T) {
	ctx := context.Background()
	communityID := uuid.New()

	t.Run("annotates each month with applied and remainder", func(t *testing.T) {
		service, m := newStatementService()

		unit := createTestUnit(communityID, nil)
		mar := createTestCharge(communityID, unit.ID, billing.NewPeriod(2024, time.March), 100)
		feb := createTestCharge(communityID, unit.ID, billing.NewPeriod(2024, time.February), 100)
		jan := createTestCharge(communityID, unit.ID, billing.NewPeriod(2024, time.January), 100)

		m.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil).Once()
		m.chargeRepo.On("FindRecentByUnit", mock.Anything, unit.ID, 12).Return([]billing.MonthlyCharge{*mar, *feb, *jan}, nil).Once()
		m.allocRepo.On("SumAppliedToCharges", mock.Anything, []uuid.UUID{mar.ID, feb.ID, jan.ID}).Return(map[uuid.UUID]decimal.Decimal{
			mar.ID: decimal.NewFromInt(100),
			feb.ID: decimal.NewFromInt(40),
		}, nil).Once()

		rows, err := service.GetUnitStatement(ctx, unit.ID, 12)

		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, mar.ID, rows[0].ChargeID)
		assert.Equal(t, decimal.NewFromInt(100), rows[0].Applied)
		assert.Equal(t, decimal.NewFromInt(0), rows[0].Balance)

		assert.Equal(t, feb.ID, rows[1].ChargeID)
		assert.Equal(t, decimal.NewFromInt(40), rows[1].Applied)
		assert.Equal(t, decimal.NewFromInt(60), rows[1].Balance)

		assert.Equal(t, jan.ID, rows[2].ChargeID)
		assert.True(t, rows[2].Applied.IsZero())
		assert.True(t, rows[2].Balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("non-positive limit falls back to the default window", func(t *testing.T) {
		service, m := newStatementService()

		unit := createTestUnit(communityID, nil)

		m.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil).Once()
		m.chargeRepo.On("FindRecentByUnit", mock.Anything, unit.ID, DefaultStatementLimit).Return([]billing.MonthlyCharge{}, nil).Once()

		rows, err := service.GetUnitStatement(ctx, unit.ID, 0)

		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
		m.chargeRepo.AssertExpectations(t)
	})

	t.Run("empty ledger yields an empty statement", func(t *testing.T) {
		service, m := newStatementService()

		unit := createTestUnit(communityID, nil)

		m.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil).Once()
		m.chargeRepo.On("FindRecentByUnit", mock.Anything, unit.ID, 24).Return([]billing.MonthlyCharge{}, nil).Once()

		rows, err := service.GetUnitStatement(ctx, unit.ID, 24)

		require.NoError(t, err)
		assert.Equal(t, []billing.StatementRow{}, rows)
		m.allocRepo.AssertNotCalled(t, "SumAppliedToCharges", mock.Anything, mock.Anything)
	})

	t.Run("unit not found", func(t *testing.T) {
		service, m := newStatementService()

		unitID := uuid.New()
		m.unitRepo.On("FindByID", mock.Anything, unitID).Return(nil, nil).Once()

		_, err := service.GetUnitStatement(ctx, unitID, 12)

		require.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNIT_NOT_FOUND", domainErr.Code)
	})
}

func TestStatementService_GetCharge(t *testing.T) {
	ctx := context.Background()
	communityID := uuid.New()
	unitID := uuid.New()

	t.Run("annotates the charge with allocation totals", func(t *testing.T) {
		service, m := newStatementService()

		charge := createTestCharge(communityID, unitID, billing.NewPeriod(2024, time.April), 100)
		charge.Status = billing.ChargeStatusPartial

		m.chargeRepo.On("FindByID", mock.Anything, charge.ID).Return(charge, nil).Once()
		m.allocRepo.On("SumAppliedToCharge", mock.Anything, charge.ID).Return(decimal.NewFromInt(40), nil).Once()

		response, err := service.GetCharge(ctx, charge.ID)

		require.NoError(t, err)
		assert.Equal(t, charge.ID, response.ID)
		assert.Equal(t, decimal.NewFromInt(40), response.Allocated)
		assert.Equal(t, decimal.NewFromInt(60), response.Outstanding)
		assert.Equal(t, billing.ChargeStatusPartial, response.Status)
	})

	t.Run("charge not found", func(t *testing.T) {
		service, m := newStatementService()

		chargeID := uuid.New()
		m.chargeRepo.On("FindByID", mock.Anything, chargeID).Return(nil, nil).Once()

		_, err := service.GetCharge(ctx, chargeID)

		require.Error(t, err)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CHARGE_NOT_FOUND", domainErr.Code)
	})
}

func TestStatementService_ListUnitCharges(t *testing.T) {
	ctx := context.Background()
	communityID := uuid.New()
	unitID := uuid.New()

	service, m := newStatementService()

	feb := createTestCharge(communityID, unitID, billing.NewPeriod(2024, time.February), 100)
	jan := createTestCharge(communityID, unitID, billing.NewPeriod(2024, time.January), 100)
	status := billing.ChargeStatusPending
	filter := billing.ChargeFilter{Filter: shared.DefaultFilter(), Status: &status}

	m.chargeRepo.On("FindByUnit", mock.Anything, unitID, filter).Return([]billing.MonthlyCharge{*feb, *jan}, nil).Once()

	responses, err := service.ListUnitCharges(ctx, unitID, filter)

	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, feb.ID, responses[0].ID)
	assert.Equal(t, jan.ID, responses[1].ID)
}
