package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	appbilling "github.com/condominio/backend/internal/application/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockTransactionScope(t *testing.T) (*GormTransactionScope, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormTransactionScope(gormDB), mock, func() { mockDB.Close() }
}

func TestGormTransactionScope_Execute(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		scope, mock, closeDB := newMockTransactionScope(t)
		defer closeDB()

		paymentID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount_applied\), 0\) as total FROM "payment_allocations" WHERE payment_id = \$1`).
			WithArgs(paymentID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("250.00"))
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appbilling.TransactionalRepositories) error {
			total, err := repos.AllocationRepo().SumByPayment(context.Background(), paymentID)
			if err != nil {
				return err
			}
			assert.True(t, total.Equal(decimal.RequireFromString("250.00")))
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		scope, mock, closeDB := newMockTransactionScope(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := scope.Execute(context.Background(), func(repos appbilling.TransactionalRepositories) error {
			return assert.AnError
		})

		assert.Error(t, err)
		assert.Equal(t, assert.AnError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("provides all ledger repositories", func(t *testing.T) {
		scope, mock, closeDB := newMockTransactionScope(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appbilling.TransactionalRepositories) error {
			assert.NotNil(t, repos.FeeScheduleRepo())
			assert.NotNil(t, repos.ChargeRepo())
			assert.NotNil(t, repos.PaymentRepo())
			assert.NotNil(t, repos.AllocationRepo())
			assert.NotNil(t, repos.UnitRepo())
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
