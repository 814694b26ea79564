package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/recoverly/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reportCacheable reports whether a report computed for asOf may use the
// cache. Only current-date reports are cached: ledger writes invalidate the
// current date's keys, so a backdated or future-dated report is always
// computed fresh.
func reportCacheable(asOf time.Time) bool {
	ay, am, ad := asOf.UTC().Date()
	ny, nm, nd := time.Now().UTC().Date()
	return ay == ny && am == nm && ad == nd
}

// readCachedReport loads a cached report payload into dst. A cache error is
// logged and treated as a miss so reports never fail on a cache outage.
func readCachedReport(ctx context.Context, c cache.ReportCache, key string, dst any) bool {
	if c == nil {
		return false
	}
	payload, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.L(ctx).Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		logger.L(ctx).Warn("discarding undecodable cached report", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// storeCachedReport caches a freshly computed report, fail-soft
func storeCachedReport(ctx context.Context, c cache.ReportCache, key string, ttl time.Duration, report any) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		logger.L(ctx).Warn("report not cacheable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.Set(ctx, key, payload, ttl); err != nil {
		logger.L(ctx).Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// groupEntriesByInvoice indexes a tenant's allocation ledger by invoice id
func groupEntriesByInvoice(entries []ledger.AllocationEntry) map[uuid.UUID][]ledger.AllocationEntry {
	grouped := make(map[uuid.UUID][]ledger.AllocationEntry, len(entries))
	for _, e := range entries {
		grouped[e.InvoiceID] = append(grouped[e.InvoiceID], e)
	}
	return grouped
}

// groupInvoicesByCustomer indexes a tenant's invoices by customer id
func groupInvoicesByCustomer(invoices []*ledger.Invoice) map[uuid.UUID][]*ledger.Invoice {
	grouped := make(map[uuid.UUID][]*ledger.Invoice, len(invoices))
	for _, inv := range invoices {
		grouped[inv.CustomerID] = append(grouped[inv.CustomerID], inv)
	}
	return grouped
}

// groupReceiptsByCustomer indexes a tenant's receipts by customer id
func groupReceiptsByCustomer(receipts []*ledger.Receipt) map[uuid.UUID][]*ledger.Receipt {
	grouped := make(map[uuid.UUID][]*ledger.Receipt, len(receipts))
	for _, r := range receipts {
		grouped[r.CustomerID] = append(grouped[r.CustomerID], r)
	}
	return grouped
}
