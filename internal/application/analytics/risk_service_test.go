package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/backend/internal/domain/analytics"
	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRiskService_Report(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	asOf := testDate(2025, 6, 30)

	t.Run("scores and orders customers by risk", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		svc := NewRiskService(customerRepo, invoiceRepo, receiptRepo, nil, 0)

		risky := fixtureCustomer(t, tenantID, "Overextended Traders", 100000)
		safe := fixtureCustomer(t, tenantID, "Prompt Payers", 100000)

		// Both invoices 150 days past due, 90% of the credit limit consumed.
		invoices := []*ledger.Invoice{
			fixtureInvoice(t, tenantID, risky, "R-1", testDate(2025, 1, 1), 45000),
			fixtureInvoice(t, tenantID, risky, "R-2", testDate(2025, 1, 1), 45000),
			markPaid(t, fixtureInvoice(t, tenantID, safe, "S-1", testDate(2025, 5, 1), 10000)),
		}
		receipts := []*ledger.Receipt{
			fixtureReceipt(t, tenantID, safe, "RV-1", testDate(2025, 5, 20), 10000),
		}

		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{safe, risky}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).Return(invoices, nil)
		receiptRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.ReceiptFilter{}).Return(receipts, nil)

		report, err := svc.Report(ctx, tenantID, asOf)

		require.NoError(t, err)
		assert.Equal(t, RiskSummary{TotalCustomers: 2, HighRisk: 1, LowRisk: 1}, report.Summary)
		require.Len(t, report.Profiles, 2)

		// utilization 40 + delay 30 + overdue count 10
		assert.Equal(t, risky.ID, report.Profiles[0].CustomerID)
		assert.Equal(t, 80, report.Profiles[0].RiskScore)
		assert.Equal(t, analytics.RiskLevelHigh, report.Profiles[0].RiskLevel)
		assert.Equal(t, 2, report.Profiles[0].Factors.OverdueInvoiceCount)
		assert.InDelta(t, 90.0, report.Profiles[0].Factors.CreditUtilization, 0.01)
		assert.InDelta(t, 150.0, report.Profiles[0].Factors.AvgPaymentDelayDays, 0.01)

		assert.Equal(t, safe.ID, report.Profiles[1].CustomerID)
		assert.Equal(t, 0, report.Profiles[1].RiskScore)
		assert.Equal(t, analytics.RiskLevelLow, report.Profiles[1].RiskLevel)
		assert.True(t, report.Profiles[1].Factors.Outstanding.IsZero())
	})

	t.Run("second current-date call within the ttl is served from cache", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		reportCache := cache.NewInMemoryReportCache()
		t.Cleanup(func() { _ = reportCache.Close() })
		svc := NewRiskService(customerRepo, invoiceRepo, receiptRepo, reportCache, time.Minute)

		customer := fixtureCustomer(t, tenantID, "Cached Co", 0)
		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{customer}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).Return([]*ledger.Invoice{}, nil)
		receiptRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.ReceiptFilter{}).Return([]*ledger.Receipt{}, nil)

		now := time.Now().UTC()
		first, err := svc.Report(ctx, tenantID, now)
		require.NoError(t, err)
		second, err := svc.Report(ctx, tenantID, now)
		require.NoError(t, err)

		assert.Equal(t, first.Summary, second.Summary)
		customerRepo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
		invoiceRepo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
	})

	t.Run("backdated as-of never reuses the current-date cache", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		reportCache := cache.NewInMemoryReportCache()
		t.Cleanup(func() { _ = reportCache.Close() })
		svc := NewRiskService(customerRepo, invoiceRepo, receiptRepo, reportCache, time.Minute)

		customer := fixtureCustomer(t, tenantID, "Backdated Co", 0)
		invoice := fixtureInvoice(t, tenantID, customer, "B-1", testDate(2025, 1, 1), 10000)

		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{customer}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).Return([]*ledger.Invoice{invoice}, nil)
		receiptRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.ReceiptFilter{}).Return([]*ledger.Receipt{}, nil)

		// Warm the cache with the current-date report, then ask for a date
		// on which the invoice was not yet due
		current, err := svc.Report(ctx, tenantID, time.Now().UTC())
		require.NoError(t, err)
		earlier, err := svc.Report(ctx, tenantID, testDate(2025, 1, 10))
		require.NoError(t, err)

		customerRepo.AssertNumberOfCalls(t, "FindAllForTenant", 2)
		require.Len(t, current.Profiles, 1)
		require.Len(t, earlier.Profiles, 1)
		assert.Greater(t, current.Profiles[0].RiskScore, earlier.Profiles[0].RiskScore)
		assert.Equal(t, 0, earlier.Profiles[0].Factors.OverdueInvoiceCount)
	})

	t.Run("customer without invoices scores zero", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		receiptRepo := new(MockReceiptRepository)
		svc := NewRiskService(customerRepo, invoiceRepo, receiptRepo, nil, 0)

		quiet := fixtureCustomer(t, tenantID, "Quiet Co", 50000)
		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{quiet}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).Return([]*ledger.Invoice{}, nil)
		receiptRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.ReceiptFilter{}).Return([]*ledger.Receipt{}, nil)

		report, err := svc.Report(ctx, tenantID, asOf)

		require.NoError(t, err)
		require.Len(t, report.Profiles, 1)
		assert.Equal(t, 0, report.Profiles[0].RiskScore)
		assert.Equal(t, 1, report.Summary.LowRisk)
	})
}
