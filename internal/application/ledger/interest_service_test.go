package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInterestService_TenantInterest(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	customerID := uuid.New()
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	overdue := func(t *testing.T, number string, amount int64, rate string) *ledger.Invoice {
		t.Helper()
		inv := fixtureInvoice(t, tenantID, customerID, number, testDate(2025, 1, 1), amount)
		inv.SetInterestTerms(decimal.RequireFromString(rate), ledger.InterestFromDueDate)
		return inv
	}

	t.Run("sums interest over open invoices", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInterestService(invoiceRepo)

		a := overdue(t, "INV-1", 100000, "18")
		b := overdue(t, "INV-2", 50000, "12")
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{a, b}, nil)

		resp, err := svc.TenantInterest(ctx, tenantID, nil, asOf)

		require.NoError(t, err)
		assert.Len(t, resp.Assessments, 2)
		assert.Equal(t, asOf, resp.AsOf)
		// Due 2025-01-31; 150 days overdue as of 2025-06-30.
		// 100000*18%*150/365 = 7397.26, 50000*12%*150/365 = 2465.75
		assert.True(t, resp.TotalInterest.Amount().Equal(decimal.RequireFromString("9863.01")),
			"got %s", resp.TotalInterest.Amount())
	})

	t.Run("excludes settled invoices", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInterestService(invoiceRepo)

		open := overdue(t, "INV-1", 1000, "18")
		paid := overdue(t, "INV-2", 1000, "18")
		_, err := paid.ApplyStatus(ledger.InvoiceStatusPaid)
		require.NoError(t, err)

		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{open, paid}, nil)

		resp, err := svc.TenantInterest(ctx, tenantID, nil, asOf)

		require.NoError(t, err)
		assert.Len(t, resp.Assessments, 1)
		assert.Equal(t, "INV-1", resp.Assessments[0].InvoiceNumber)
	})

	t.Run("passes customer filter through", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInterestService(invoiceRepo)

		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{CustomerID: &customerID}).
			Return([]*ledger.Invoice{}, nil)

		resp, err := svc.TenantInterest(ctx, tenantID, &customerID, asOf)

		require.NoError(t, err)
		assert.Empty(t, resp.Assessments)
		assert.True(t, resp.TotalInterest.Amount().IsZero())
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("invoices without terms contribute zero", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInterestService(invoiceRepo)

		plain := fixtureInvoice(t, tenantID, customerID, "INV-1", testDate(2025, 1, 1), 5000)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{plain}, nil)

		resp, err := svc.TenantInterest(ctx, tenantID, nil, asOf)

		require.NoError(t, err)
		require.Len(t, resp.Assessments, 1)
		assert.True(t, resp.Assessments[0].Interest.Amount().IsZero())
		assert.True(t, resp.TotalInterest.Amount().IsZero())
	})
}
