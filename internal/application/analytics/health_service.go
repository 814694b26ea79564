package analytics

import (
	"context"
	"time"

	"github.com/recoverly/backend/internal/domain/analytics"
	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// HealthService produces the tenant-wide recovery health report
type HealthService struct {
	invoiceRepo    ledger.InvoiceRepository
	allocationRepo ledger.AllocationEntryRepository
	analyzer       *analytics.RecoveryHealthAnalyzer
	reportCache    cache.ReportCache
	cacheTTL       time.Duration
}

// NewHealthService creates a recovery health report service. A nil
// reportCache disables caching; a non-positive ttl falls back to the
// default report TTL.
func NewHealthService(
	invoiceRepo ledger.InvoiceRepository,
	allocationRepo ledger.AllocationEntryRepository,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
) *HealthService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultReportTTL
	}
	return &HealthService{
		invoiceRepo:    invoiceRepo,
		allocationRepo: allocationRepo,
		analyzer:       analytics.NewRecoveryHealthAnalyzer(),
		reportCache:    reportCache,
		cacheTTL:       cacheTTL,
	}
}

// Report computes the collections health snapshot over every invoice of
// the tenant
func (s *HealthService) Report(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*HealthReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "HealthService", "Report")
	defer span.End()
	telemetry.SetAttribute(span, "tenant.id", tenantID.String())

	key := cache.HealthReportKey(tenantID, asOf)
	cacheable := reportCacheable(asOf)
	if cacheable {
		var cached HealthReport
		if readCachedReport(ctx, s.reportCache, key, &cached) {
			telemetry.SetAttribute(span, "cache.hit", true)
			return &cached, nil
		}
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, ledger.InvoiceFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	entries, err := s.allocationRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	report := &HealthReport{
		GeneratedAt: time.Now().UTC(),
		Snapshot:    s.analyzer.Analyze(invoices, groupEntriesByInvoice(entries), asOf),
	}
	if cacheable {
		storeCachedReport(ctx, s.reportCache, key, s.cacheTTL, report)
	}
	return report, nil
}
