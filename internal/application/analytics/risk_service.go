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

// RiskService produces the tenant-wide client risk report. Reports are
// read-through cached per tenant; mutations to the ledger invalidate them.
type RiskService struct {
	customerRepo partner.CustomerRepository
	invoiceRepo  ledger.InvoiceRepository
	receiptRepo  ledger.ReceiptRepository
	scorer       *analytics.RiskScorer
	reportCache  cache.ReportCache
	cacheTTL     time.Duration
}

// NewRiskService creates a risk report service. A nil reportCache disables
// caching; a non-positive ttl falls back to the default report TTL.
func NewRiskService(
	customerRepo partner.CustomerRepository,
	invoiceRepo ledger.InvoiceRepository,
	receiptRepo ledger.ReceiptRepository,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
) *RiskService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultReportTTL
	}
	return &RiskService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		receiptRepo:  receiptRepo,
		scorer:       analytics.NewRiskScorer(),
		reportCache:  reportCache,
		cacheTTL:     cacheTTL,
	}
}

// Report scores every customer of the tenant and returns them ordered by
// risk score, highest first
func (s *RiskService) Report(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*RiskReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "RiskService", "Report")
	defer span.End()
	telemetry.SetAttribute(span, "tenant.id", tenantID.String())

	key := cache.RiskReportKey(tenantID, asOf)
	cacheable := reportCacheable(asOf)
	if cacheable {
		var cached RiskReport
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
	receipts, err := s.receiptRepo.FindAllForTenant(ctx, tenantID, ledger.ReceiptFilter{})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoicesByCustomer := groupInvoicesByCustomer(invoices)
	receiptsByCustomer := groupReceiptsByCustomer(receipts)

	report := &RiskReport{
		GeneratedAt: time.Now().UTC(),
		Profiles:    make([]analytics.RiskProfile, 0, len(customers)),
	}
	for _, customer := range customers {
		profile := s.scorer.Score(customer, invoicesByCustomer[customer.ID], receiptsByCustomer[customer.ID], asOf)
		report.Profiles = append(report.Profiles, profile)
		switch profile.RiskLevel {
		case analytics.RiskLevelHigh:
			report.Summary.HighRisk++
		case analytics.RiskLevelMedium:
			report.Summary.MediumRisk++
		default:
			report.Summary.LowRisk++
		}
	}
	report.Summary.TotalCustomers = len(customers)

	sort.SliceStable(report.Profiles, func(a, b int) bool {
		return report.Profiles[a].RiskScore > report.Profiles[b].RiskScore
	})

	if cacheable {
		storeCachedReport(ctx, s.reportCache, key, s.cacheTTL, report)
	}
	return report, nil
}
