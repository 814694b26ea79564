package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockAllocationRepository(t *testing.T) (*GormAllocationEntryRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormAllocationEntryRepository(gormDB), mock, mockDB
}

func TestGormAllocationEntryRepository_FindByCustomer(t *testing.T) {
	t.Run("loads the customer ledger ordered by receipt date", func(t *testing.T) {
		repo, mock, mockDB := newMockAllocationRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customerID := uuid.New()
		invoiceID := uuid.New()
		receiptID := uuid.New()
		receiptDate := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "customer_id", "invoice_id",
			"receipt_id", "amount", "receipt_date"}).
			AddRow(uuid.New(), tenantID, customerID, invoiceID, receiptID,
				decimal.NewFromInt(750), receiptDate)

		mock.ExpectQuery(`SELECT \* FROM "allocation_entries" WHERE .*ORDER BY receipt_date ASC, created_at ASC`).
			WillReturnRows(rows)

		entries, err := repo.FindByCustomer(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, invoiceID, entries[0].InvoiceID)
		assert.Equal(t, receiptID, entries[0].ReceiptID)
		assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(750)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAllocationEntryRepository_ReplaceForCustomer(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()

	entry := func() ledger.AllocationEntry {
		return ledger.AllocationEntry{
			ID:          uuid.New(),
			TenantID:    tenantID,
			CustomerID:  customerID,
			InvoiceID:   uuid.New(),
			ReceiptID:   uuid.New(),
			Amount:      decimal.NewFromInt(500),
			ReceiptDate: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	t.Run("replaces the ledger in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockAllocationRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "allocation_entries" WHERE .*`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO "allocation_entries" .*`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := repo.ReplaceForCustomer(context.Background(), tenantID, customerID,
			[]ledger.AllocationEntry{entry(), entry()})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clears the ledger when there are no entries", func(t *testing.T) {
		repo, mock, mockDB := newMockAllocationRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "allocation_entries" WHERE .*`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err := repo.ReplaceForCustomer(context.Background(), tenantID, customerID, nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the insert fails", func(t *testing.T) {
		repo, mock, mockDB := newMockAllocationRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "allocation_entries" WHERE .*`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "allocation_entries" .*`).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.ReplaceForCustomer(context.Background(), tenantID, customerID,
			[]ledger.AllocationEntry{entry()})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
