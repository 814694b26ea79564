package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultReportTTL is how long analytics reports stay cached before the
// next request recomputes them.
const DefaultReportTTL = 60 * time.Second

// ReportCache stores serialized analytics reports keyed per tenant.
// Implementations must treat a missing key and an expired key identically.
type ReportCache interface {
	// Get returns the cached payload for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)

	// Set stores payload under key for the given TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Invalidate removes the given keys. Missing keys are not an error.
	Invalidate(ctx context.Context, keys ...string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Report keys carry the as-of calendar date: a report is a function of the
// date it was computed for, so entries for different dates must never alias.
// Only current-date reports are ever stored (see ReportKeys), which keeps
// write-path invalidation exact.

// RiskReportKey returns the cache key for a tenant's risk report as of a date.
func RiskReportKey(tenantID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("report:risk:%s:%s", tenantID, reportDate(asOf))
}

// ForecastReportKey returns the cache key for a tenant's payment forecast as of a date.
func ForecastReportKey(tenantID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("report:forecast:%s:%s", tenantID, reportDate(asOf))
}

// HealthReportKey returns the cache key for a tenant's recovery health report as of a date.
func HealthReportKey(tenantID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("report:health:%s:%s", tenantID, reportDate(asOf))
}

// ReportKeys returns every report key a tenant can currently have cached.
// Write paths use this to invalidate all derived reports after the ledger
// changes; since only current-date reports are stored, the current date's
// keys cover everything.
func ReportKeys(tenantID uuid.UUID) []string {
	now := time.Now().UTC()
	return []string{
		RiskReportKey(tenantID, now),
		ForecastReportKey(tenantID, now),
		HealthReportKey(tenantID, now),
	}
}

func reportDate(asOf time.Time) string {
	return asOf.UTC().Format("2006-01-02")
}
