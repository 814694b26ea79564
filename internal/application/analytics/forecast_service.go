package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/recoverly/backend/internal/domain/analytics"
	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ForecastService produces the tenant-wide payment forecast report
type ForecastService struct {
	customerRepo   partner.CustomerRepository
	invoiceRepo    ledger.InvoiceRepository
	allocationRepo ledger.AllocationEntryRepository
	forecaster     *analytics.PaymentForecaster
	reportCache    cache.ReportCache
	cacheTTL       time.Duration
}

// NewForecastService creates a forecast report service. A nil reportCache
// disables caching; a non-positive ttl falls back to the default report TTL.
func NewForecastService(
	customerRepo partner.CustomerRepository,
	invoiceRepo ledger.InvoiceRepository,
	allocationRepo ledger.AllocationEntryRepository,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
) *ForecastService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultReportTTL
	}
	return &ForecastService{
		customerRepo:   customerRepo,
		invoiceRepo:    invoiceRepo,
		allocationRepo: allocationRepo,
		forecaster:     analytics.NewPaymentForecaster(),
		reportCache:    reportCache,
		cacheTTL:       cacheTTL,
	}
}

// Report forecasts every customer of the tenant and returns those with a
// non-zero stuck probability, highest first
func (s *ForecastService) Report(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*ForecastReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ForecastService", "Report")
	defer span.End()
	telemetry.SetAttribute(span, "tenant.id", tenantID.String())

	key := cache.ForecastReportKey(tenantID, asOf)
	cacheable := reportCacheable(asOf)
	if cacheable {
		var cached ForecastReport
		if readCachedReport(ctx, s.reportCache, key, &cached) {
			telemetry.SetAttribute(span, "cache.hit", true)
			return &cached, nil
		}
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
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

	invoicesByCustomer := groupInvoicesByCustomer(invoices)
	entriesByInvoice := groupEntriesByInvoice(entries)

	report := &ForecastReport{
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]ForecastEntry, 0, len(customers)),
	}
	for _, customer := range customers {
		profile := s.forecaster.Forecast(customer.ID, customer.ClientName,
			invoicesByCustomer[customer.ID], entriesByInvoice, asOf)
		if profile.StuckProbability <= 0 {
			continue
		}
		tier := TierForProbability(profile.StuckProbability)
		report.Entries = append(report.Entries, ForecastEntry{ForecastProfile: profile, Tier: tier})
		switch tier {
		case ForecastTierHigh:
			report.Summary.HighRisk++
		case ForecastTierMedium:
			report.Summary.MediumRisk++
		default:
			report.Summary.LowRisk++
		}
	}

	sort.SliceStable(report.Entries, func(a, b int) bool {
		return report.Entries[a].StuckProbability > report.Entries[b].StuckProbability
	})

	if cacheable {
		storeCachedReport(ctx, s.reportCache, key, s.cacheTTL, report)
	}
	return report, nil
}
