package scheduler

import (
	"context"

	analyticsapp "github.com/recoverly/backend/internal/application/analytics"
	"github.com/recoverly/backend/internal/infrastructure/cache"
)

// ReportWarmExecutor recomputes one cached analytics report. The stale
// entry is dropped first so the service's read-through path stores a
// fresh copy.
type ReportWarmExecutor struct {
	riskService     *analyticsapp.RiskService
	forecastService *analyticsapp.ForecastService
	healthService   *analyticsapp.HealthService
	reportCache     cache.ReportCache
}

// NewReportWarmExecutor creates a new ReportWarmExecutor
func NewReportWarmExecutor(
	riskService *analyticsapp.RiskService,
	forecastService *analyticsapp.ForecastService,
	healthService *analyticsapp.HealthService,
	reportCache cache.ReportCache,
) *ReportWarmExecutor {
	return &ReportWarmExecutor{
		riskService:     riskService,
		forecastService: forecastService,
		healthService:   healthService,
		reportCache:     reportCache,
	}
}

var _ JobExecutor = (*ReportWarmExecutor)(nil)

// Execute implements JobExecutor
func (e *ReportWarmExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.ReportType {
	case ReportTypeRisk:
		if err := e.invalidate(ctx, cache.RiskReportKey(job.TenantID, job.AsOf)); err != nil {
			return err
		}
		_, err := e.riskService.Report(ctx, job.TenantID, job.AsOf)
		return err
	case ReportTypeForecast:
		if err := e.invalidate(ctx, cache.ForecastReportKey(job.TenantID, job.AsOf)); err != nil {
			return err
		}
		_, err := e.forecastService.Report(ctx, job.TenantID, job.AsOf)
		return err
	case ReportTypeRecoveryHealth:
		if err := e.invalidate(ctx, cache.HealthReportKey(job.TenantID, job.AsOf)); err != nil {
			return err
		}
		_, err := e.healthService.Report(ctx, job.TenantID, job.AsOf)
		return err
	default:
		return ErrInvalidReportType
	}
}

func (e *ReportWarmExecutor) invalidate(ctx context.Context, key string) error {
	if e.reportCache == nil {
		return nil
	}
	return e.reportCache.Invalidate(ctx, key)
}
