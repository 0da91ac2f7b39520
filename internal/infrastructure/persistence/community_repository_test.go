package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCommunityRepository creates a GormCommunityRepository with a mocked SQL connection
func newMockCommunityRepository(t *testing.T) (*GormCommunityRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormCommunityRepository(gormDB), mock, mockDB
}

func TestNewGormCommunityRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormCommunityRepository_FindByID(t *testing.T) {
	t.Run("finds existing community", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "name", "code", "address", "active"}).
			AddRow(communityID, "Los Robles", "LR-01", "Av. Central 100", true)

		mock.ExpectQuery(`SELECT \* FROM "communities" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(communityID, 1).
			WillReturnRows(rows)

		comm, err := repo.FindByID(context.Background(), communityID)

		assert.NoError(t, err)
		assert.NotNil(t, comm)
		assert.Equal(t, communityID, comm.ID)
		assert.Equal(t, "Los Robles", comm.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent community", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "communities" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(communityID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		comm, err := repo.FindByID(context.Background(), communityID)

		assert.NoError(t, err)
		assert.Nil(t, comm)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommunityRepository_FindByCode(t *testing.T) {
	t.Run("normalizes code to uppercase", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		communityID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "name", "code", "active"}).
			AddRow(communityID, "Los Robles", "LR-01", true)

		mock.ExpectQuery(`SELECT \* FROM "communities" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("LR-01", 1).
			WillReturnRows(rows)

		comm, err := repo.FindByCode(context.Background(), "lr-01")

		assert.NoError(t, err)
		assert.NotNil(t, comm)
		assert.Equal(t, "LR-01", comm.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for unknown code", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "communities" WHERE code = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("ZZ-99", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		comm, err := repo.FindByCode(context.Background(), "ZZ-99")

		assert.NoError(t, err)
		assert.Nil(t, comm)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommunityRepository_FindAll(t *testing.T) {
	t.Run("applies pagination and default ordering", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(uuid.New(), "Los Robles", true).
			AddRow(uuid.New(), "Valle Verde", true)

		mock.ExpectQuery(`SELECT \* FROM "communities" ORDER BY created_at DESC LIMIT .*`).
			WithArgs(20).
			WillReturnRows(rows)

		communities, err := repo.FindAll(context.Background(), shared.Filter{Page: 1, PageSize: 20})

		assert.NoError(t, err)
		assert.Len(t, communities, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("searches name and code", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(uuid.New(), "Los Robles", true)

		mock.ExpectQuery(`SELECT \* FROM "communities" WHERE name ILIKE \$1 OR code ILIKE \$2 ORDER BY created_at DESC`).
			WithArgs("%Robles%", "%Robles%").
			WillReturnRows(rows)

		communities, err := repo.FindAll(context.Background(), shared.Filter{Search: "Robles"})

		assert.NoError(t, err)
		assert.Len(t, communities, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sorts by whitelisted field", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(uuid.New(), "Los Robles", true)

		mock.ExpectQuery(`SELECT \* FROM "communities" ORDER BY name ASC`).
			WillReturnRows(rows)

		communities, err := repo.FindAll(context.Background(), shared.Filter{OrderBy: "name", OrderDir: "asc"})

		assert.NoError(t, err)
		assert.Len(t, communities, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to created_at for unknown sort field", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "communities" ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}))

		_, err := repo.FindAll(context.Background(), shared.Filter{OrderBy: "balance; DROP TABLE communities"})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommunityRepository_FindActive(t *testing.T) {
	t.Run("filters on active flag", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "name", "active"}).
			AddRow(uuid.New(), "Los Robles", true)

		mock.ExpectQuery(`SELECT \* FROM "communities" WHERE active = \$1 ORDER BY created_at DESC`).
			WithArgs(true).
			WillReturnRows(rows)

		communities, err := repo.FindActive(context.Background(), shared.Filter{})

		assert.NoError(t, err)
		assert.Len(t, communities, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommunityRepository_Save(t *testing.T) {
	t.Run("saves community", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		comm, err := community.NewCommunity("Los Robles")
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "communities" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), comm)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommunityRepository_ExistsByCode(t *testing.T) {
	t.Run("returns true when code exists", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "communities" WHERE code = \$1`).
			WithArgs("LR-01").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByCode(context.Background(), "lr-01")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when code does not exist", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "communities" WHERE code = \$1`).
			WithArgs("ZZ-99").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByCode(context.Background(), "ZZ-99")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCommunityRepository_Count(t *testing.T) {
	t.Run("counts communities", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "communities"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

		count, err := repo.Count(context.Background(), shared.Filter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(10), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("counts with search applied", func(t *testing.T) {
		repo, mock, mockDB := newMockCommunityRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "communities" WHERE name ILIKE \$1 OR code ILIKE \$2`).
			WithArgs("%Robles%", "%Robles%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		count, err := repo.Count(context.Background(), shared.Filter{Search: "Robles"})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
