package handler

import (
	analyticsapp "github.com/recoverly/backend/internal/application/analytics"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the risk, forecast and recovery health reports
type AnalyticsHandler struct {
	BaseHandler
	riskService     *analyticsapp.RiskService
	forecastService *analyticsapp.ForecastService
	healthService   *analyticsapp.HealthService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(
	riskService *analyticsapp.RiskService,
	forecastService *analyticsapp.ForecastService,
	healthService *analyticsapp.HealthService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		riskService:     riskService,
		forecastService: forecastService,
		healthService:   healthService,
	}
}

// Risk handles GET /analytics/risk
func (h *AnalyticsHandler) Risk(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	at, err := asOf(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.riskService.Report(c.Request.Context(), tenant, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Forecast handles GET /analytics/forecast
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	at, err := asOf(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.forecastService.Report(c.Request.Context(), tenant, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Health handles GET /analytics/health
func (h *AnalyticsHandler) Health(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	at, err := asOf(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.healthService.Report(c.Request.Context(), tenant, at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
