package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
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

	return NewGormCustomerRepository(gormDB), mock, mockDB
}

func customerColumns() []string {
	return []string{"id", "tenant_id", "version", "client_name", "category",
		"credit_limit", "opening_balance"}
}

func TestGormCustomerRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds customer within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows(customerColumns()).
			AddRow(customerID, tenantID, 1, "Acme Traders", "Retail",
				decimal.NewFromInt(100000), decimal.Zero)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE .* LIMIT .*`).
			WillReturnRows(rows)

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "Acme Traders", customer.ClientName)
		assert.True(t, customer.HasCreditLimit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil without error for missing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		assert.NoError(t, err)
		assert.Nil(t, customer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindAllForTenant(t *testing.T) {
	t.Run("orders customers by client name", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows(customerColumns()).
			AddRow(uuid.New(), tenantID, 1, "Acme Traders", "Retail", decimal.Zero, decimal.Zero).
			AddRow(uuid.New(), tenantID, 1, "Zenith Mills", "Wholesale", decimal.Zero, decimal.Zero)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE .*ORDER BY client_name ASC`).
			WillReturnRows(rows)

		customers, err := repo.FindAllForTenant(context.Background(), tenantID)

		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, "Acme Traders", customers[0].ClientName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Update(t *testing.T) {
	t.Run("fails on a stale version", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customer, err := partner.NewCustomer(uuid.New(), "Acme Traders", "Retail",
			decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		customer.IncrementVersion()

		mock.ExpectExec(`UPDATE "customers" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.Update(context.Background(), customer)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
