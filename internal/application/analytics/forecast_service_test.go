package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestForecastService_Report(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	asOf := testDate(2025, 6, 30)

	entryFor := func(inv *ledger.Invoice, receiptDate time.Time, amount int64) ledger.AllocationEntry {
		return ledger.AllocationEntry{
			ID:          uuid.New(),
			TenantID:    tenantID,
			CustomerID:  inv.CustomerID,
			InvoiceID:   inv.ID,
			ReceiptID:   uuid.New(),
			Amount:      decimal.NewFromInt(amount),
			ReceiptDate: receiptDate,
		}
	}

	t.Run("flags chronically late customers and skips clean ones", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		svc := NewForecastService(customerRepo, invoiceRepo, allocationRepo, nil, 0)

		late := fixtureCustomer(t, tenantID, "Habitually Late", 0)
		clean := fixtureCustomer(t, tenantID, "Always On Time", 0)

		// Settled 29 days past due, plus three invoices still open.
		settledLate := markPaid(t, fixtureInvoice(t, tenantID, late, "L-1", testDate(2025, 1, 1), 10000))
		open1 := fixtureInvoice(t, tenantID, late, "L-2", testDate(2025, 4, 1), 5000)
		open2 := fixtureInvoice(t, tenantID, late, "L-3", testDate(2025, 4, 2), 5000)
		open3 := fixtureInvoice(t, tenantID, late, "L-4", testDate(2025, 4, 3), 5000)

		// Settled before the due date, nothing open.
		settledClean := markPaid(t, fixtureInvoice(t, tenantID, clean, "C-1", testDate(2025, 3, 1), 8000))

		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{late, clean}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{settledLate, open1, open2, open3, settledClean}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{
			entryFor(settledLate, testDate(2025, 3, 1), 10000),
			entryFor(settledClean, testDate(2025, 3, 20), 8000),
		}, nil)

		report, err := svc.Report(ctx, tenantID, asOf)

		require.NoError(t, err)
		require.Len(t, report.Entries, 1)
		assert.Equal(t, ForecastSummary{HighRisk: 1}, report.Summary)

		entry := report.Entries[0]
		assert.Equal(t, late.ID, entry.CustomerID)
		// on-time rate 40 + avg delay 30 + open invoices 15
		assert.Equal(t, 85, entry.StuckProbability)
		assert.Equal(t, ForecastTierHigh, entry.Tier)
		assert.Equal(t, 3, entry.Metrics.UnpaidInvoiceCount)
		assert.True(t, entry.Metrics.UnpaidAmount.Equal(decimal.NewFromInt(15000)))
		assert.InDelta(t, 0.0, entry.Metrics.OnTimeRate, 0.01)
		assert.InDelta(t, 29.0, entry.Metrics.AvgDelayDays, 0.01)

		// Earliest open invoice due 2025-05-01 shifted by the 29-day habit.
		require.NotNil(t, entry.ExpectedPaymentDate)
		assert.Equal(t, testDate(2025, 5, 30), *entry.ExpectedPaymentDate)
	})

	t.Run("second current-date call within the ttl is served from cache", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		reportCache := cache.NewInMemoryReportCache()
		t.Cleanup(func() { _ = reportCache.Close() })
		svc := NewForecastService(customerRepo, invoiceRepo, allocationRepo, reportCache, time.Minute)

		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).Return([]*ledger.Invoice{}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{}, nil)

		now := time.Now().UTC()
		_, err := svc.Report(ctx, tenantID, now)
		require.NoError(t, err)
		_, err = svc.Report(ctx, tenantID, now)
		require.NoError(t, err)

		customerRepo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
		allocationRepo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
	})

	t.Run("backdated as-of bypasses the cache", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		reportCache := cache.NewInMemoryReportCache()
		t.Cleanup(func() { _ = reportCache.Close() })
		svc := NewForecastService(customerRepo, invoiceRepo, allocationRepo, reportCache, time.Minute)

		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).Return([]*ledger.Invoice{}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{}, nil)

		_, err := svc.Report(ctx, tenantID, time.Now().UTC())
		require.NoError(t, err)
		_, err = svc.Report(ctx, tenantID, asOf)
		require.NoError(t, err)
		_, err = svc.Report(ctx, tenantID, asOf)
		require.NoError(t, err)

		// Only the current-date call may be cached; both backdated calls recompute
		customerRepo.AssertNumberOfCalls(t, "FindAllForTenant", 3)
	})

	t.Run("customer with no history gets the neutral on-time rate", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		svc := NewForecastService(customerRepo, invoiceRepo, allocationRepo, nil, 0)

		newcomer := fixtureCustomer(t, tenantID, "Newcomer", 0)
		open := fixtureInvoice(t, tenantID, newcomer, "N-1", testDate(2025, 6, 1), 2000)

		customerRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]*partner.Customer{newcomer}, nil)
		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{open}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{}, nil)

		report, err := svc.Report(ctx, tenantID, asOf)

		require.NoError(t, err)
		require.Len(t, report.Entries, 1)
		// neutral 50% on-time rate scores 25, one open invoice adds nothing
		assert.Equal(t, 25, report.Entries[0].StuckProbability)
		assert.Equal(t, ForecastTierLow, report.Entries[0].Tier)
		assert.InDelta(t, 50.0, report.Entries[0].Metrics.OnTimeRate, 0.01)
	})
}
