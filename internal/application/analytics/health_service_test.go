package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/backend/internal/domain/analytics"
	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthService_Report(t *testing.T) {
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

	t.Run("computes the snapshot over the tenant ledger", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		svc := NewHealthService(invoiceRepo, allocationRepo, nil, 0)

		customer := fixtureCustomer(t, tenantID, "Acme Traders", 0)
		recentPaid := markPaid(t, fixtureInvoice(t, tenantID, customer, "H-1", testDate(2025, 6, 1), 5000))
		midPaid := markPaid(t, fixtureInvoice(t, tenantID, customer, "H-2", testDate(2025, 5, 15), 5000))
		stale := fixtureInvoice(t, tenantID, customer, "H-3", testDate(2025, 1, 1), 5000)

		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{recentPaid, midPaid, stale}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{
			entryFor(recentPaid, testDate(2025, 6, 15), 5000),
			entryFor(midPaid, testDate(2025, 6, 10), 5000),
		}, nil)

		report, err := svc.Report(ctx, tenantID, asOf)

		require.NoError(t, err)
		snap := report.Snapshot
		require.NotNil(t, snap)

		// collection speed 40 + overall rate 15 + recent rate 20
		assert.Equal(t, 75, snap.HealthScore)
		assert.Equal(t, analytics.HealthLevelModerate, snap.HealthLevel)
		assert.InDelta(t, 20.0, snap.AvgCollectionDays, 0.01)
		assert.InDelta(t, 66.67, snap.OverallRecoveryRate, 0.01)
		assert.InDelta(t, 100.0, snap.RecentRecoveryRate, 0.01)

		require.Len(t, snap.AgeBucketRates, 4)
		assert.Equal(t, 1, snap.AgeBucketRates[0].Total) // 0-30
		assert.InDelta(t, 100.0, snap.AgeBucketRates[0].Rate, 0.01)
		assert.Equal(t, 1, snap.AgeBucketRates[1].Total) // 31-60
		assert.Equal(t, 1, snap.AgeBucketRates[3].Total) // 90+
		assert.InDelta(t, 0.0, snap.AgeBucketRates[3].Rate, 0.01)

		require.Len(t, snap.Recommendations, 1)
		assert.Contains(t, snap.Recommendations[0], "recovery rate")
	})

	t.Run("empty ledger yields a weak zero snapshot", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		svc := NewHealthService(invoiceRepo, allocationRepo, nil, 0)

		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{}, nil)

		report, err := svc.Report(ctx, tenantID, asOf)

		require.NoError(t, err)
		// zero collection days still scores the speed factor
		assert.Equal(t, 40, report.Snapshot.HealthScore)
		assert.InDelta(t, 0.0, report.Snapshot.OverallRecoveryRate, 0.01)
	})

	t.Run("second current-date call within the ttl is served from cache", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		reportCache := cache.NewInMemoryReportCache()
		t.Cleanup(func() { _ = reportCache.Close() })
		svc := NewHealthService(invoiceRepo, allocationRepo, reportCache, time.Minute)

		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{}, nil)

		now := time.Now().UTC()
		_, err := svc.Report(ctx, tenantID, now)
		require.NoError(t, err)
		_, err = svc.Report(ctx, tenantID, now)
		require.NoError(t, err)

		invoiceRepo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
		allocationRepo.AssertNumberOfCalls(t, "FindAllForTenant", 1)
	})

	t.Run("backdated as-of bypasses the cache", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		allocationRepo := new(MockAllocationEntryRepository)
		reportCache := cache.NewInMemoryReportCache()
		t.Cleanup(func() { _ = reportCache.Close() })
		svc := NewHealthService(invoiceRepo, allocationRepo, reportCache, time.Minute)

		invoiceRepo.On("FindAllForTenant", mock.Anything, tenantID, ledger.InvoiceFilter{}).
			Return([]*ledger.Invoice{}, nil)
		allocationRepo.On("FindAllForTenant", mock.Anything, tenantID).Return([]ledger.AllocationEntry{}, nil)

		_, err := svc.Report(ctx, tenantID, time.Now().UTC())
		require.NoError(t, err)
		_, err = svc.Report(ctx, tenantID, asOf)
		require.NoError(t, err)
		_, err = svc.Report(ctx, tenantID, asOf)
		require.NoError(t, err)

		invoiceRepo.AssertNumberOfCalls(t, "FindAllForTenant", 3)
	})
}
