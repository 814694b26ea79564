package analytics

import (
	"time"

	"github.com/recoverly/backend/internal/domain/analytics"
)

// ForecastTier buckets a stuck probability for follow-up prioritization
type ForecastTier string

const (
	ForecastTierHigh   ForecastTier = "HIGH"   // probability >= 70
	ForecastTierMedium ForecastTier = "MEDIUM" // probability >= 30
	ForecastTierLow    ForecastTier = "LOW"
)

// TierForProbability maps a stuck probability to its tier
func TierForProbability(probability int) ForecastTier {
	switch {
	case probability >= 70:
		return ForecastTierHigh
	case probability >= 30:
		return ForecastTierMedium
	default:
		return ForecastTierLow
	}
}

// RiskSummary counts customers per risk level
type RiskSummary struct {
	TotalCustomers int `json:"total_customers"`
	HighRisk       int `json:"high_risk"`
	MediumRisk     int `json:"medium_risk"`
	LowRisk        int `json:"low_risk"`
}

// RiskReport is the tenant-wide risk thermometer, highest scores first
type RiskReport struct {
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     RiskSummary             `json:"summary"`
	Profiles    []analytics.RiskProfile `json:"profiles"`
}

// ForecastEntry is one customer's forecast with its tier attached
type ForecastEntry struct {
	analytics.ForecastProfile
	Tier ForecastTier `json:"tier"`
}

// ForecastSummary counts forecast entries per tier
type ForecastSummary struct {
	HighRisk   int `json:"high_risk"`
	MediumRisk int `json:"medium_risk"`
	LowRisk    int `json:"low_risk"`
}

// ForecastReport lists customers with a non-zero stuck probability,
// highest first
type ForecastReport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Summary     ForecastSummary `json:"summary"`
	Entries     []ForecastEntry `json:"entries"`
}

// HealthReport is the tenant-wide recovery health snapshot
type HealthReport struct {
	GeneratedAt time.Time                         `json:"generated_at"`
	Snapshot    *analytics.RecoveryHealthSnapshot `json:"snapshot"`
}
