package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockFeeScheduleRepository creates a GormFeeScheduleRepository with a mocked SQL connection
func newMockFeeScheduleRepository(t *testing.T) (*GormFeeScheduleRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormFeeScheduleRepository(gormDB), mock, mockDB
}

func TestGormFeeScheduleRepository_FindByID(t *testing.T) {
	t.Run("finds existing schedule", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		scheduleID := uuid.New()
		communityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "community_id", "amount", "effective_from"}).
			AddRow(scheduleID, communityID, decimal.RequireFromString("1200.00"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

		mock.ExpectQuery(`SELECT \* FROM "fee_schedules" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(scheduleID, 1).
			WillReturnRows(rows)

		schedule, err := repo.FindByID(context.Background(), scheduleID)

		assert.NoError(t, err)
		assert.NotNil(t, schedule)
		assert.Equal(t, scheduleID, schedule.ID)
		assert.True(t, schedule.Amount.Equal(decimal.RequireFromString("1200.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent schedule", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		scheduleID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fee_schedules" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(scheduleID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		schedule, err := repo.FindByID(context.Background(), scheduleID)

		assert.NoError(t, err)
		assert.Nil(t, schedule)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeScheduleRepository_FindEffective(t *testing.T) {
	t.Run("picks latest effective schedule on or before the date", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()
		date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "community_id", "amount", "effective_from"}).
			AddRow(uuid.New(), communityID, decimal.RequireFromString("1350.00"), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

		mock.ExpectQuery(`SELECT \* FROM "fee_schedules" WHERE community_id = \$1 AND effective_from <= \$2 ORDER BY effective_from DESC,created_at DESC.* LIMIT .*`).
			WithArgs(communityID, date, 1).
			WillReturnRows(rows)

		schedule, err := repo.FindEffective(context.Background(), communityID, date)

		assert.NoError(t, err)
		assert.NotNil(t, schedule)
		assert.True(t, schedule.Amount.Equal(decimal.RequireFromString("1350.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no schedule covers the date", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()
		date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "fee_schedules" WHERE community_id = \$1 AND effective_from <= \$2`).
			WithArgs(communityID, date, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		schedule, err := repo.FindEffective(context.Background(), communityID, date)

		assert.Error(t, err)
		assert.Nil(t, schedule)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeScheduleRepository_FindByCommunity(t *testing.T) {
	t.Run("lists schedules newest effective first", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "community_id", "amount", "effective_from"}).
			AddRow(uuid.New(), communityID, decimal.RequireFromString("1350.00"), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)).
			AddRow(uuid.New(), communityID, decimal.RequireFromString("1200.00"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

		mock.ExpectQuery(`SELECT \* FROM "fee_schedules" WHERE community_id = \$1 ORDER BY effective_from DESC,created_at DESC LIMIT .*`).
			WithArgs(communityID, 12).
			WillReturnRows(rows)

		schedules, err := repo.FindByCommunity(context.Background(), communityID, shared.Filter{Page: 1, PageSize: 12})

		assert.NoError(t, err)
		require.Len(t, schedules, 2)
		assert.True(t, schedules[0].Amount.Equal(decimal.RequireFromString("1350.00")))
		assert.True(t, schedules[1].Amount.Equal(decimal.RequireFromString("1200.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeScheduleRepository_Save(t *testing.T) {
	t.Run("saves schedule", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		schedule, err := billing.NewFeeSchedule(uuid.New(), decimal.RequireFromString("1200.00"), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "fee_schedules" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), schedule)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeScheduleRepository_Count(t *testing.T) {
	t.Run("counts community schedules", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeScheduleRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "fee_schedules" WHERE community_id = \$1`).
			WithArgs(communityID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.Count(context.Background(), communityID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
