package analytics

import (
	"fmt"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// HealthLevel buckets a tenant's recovery health score
type HealthLevel string

const (
	HealthLevelStrong   HealthLevel = "STRONG"   // score >= 80
	HealthLevelModerate HealthLevel = "MODERATE" // score >= 50
	HealthLevelWeak     HealthLevel = "WEAK"
)

// HealthLevelForScore maps a health score to its level
func HealthLevelForScore(score int) HealthLevel {
	switch {
	case score >= 80:
		return HealthLevelStrong
	case score >= 50:
		return HealthLevelModerate
	default:
		return HealthLevelWeak
	}
}

// recentAgeDays bounds the "recent" recovery-rate window
const recentAgeDays = 60

// AgeBucketRate is the recovery ratio for one invoice-age range
type AgeBucketRate struct {
	Label     string  `json:"label"`
	MinDays   int     `json:"min_days"`
	MaxDays   int     `json:"max_days"` // -1 for the open-ended bucket
	Total     int     `json:"total"`
	Recovered int     `json:"recovered"`
	Rate      float64 `json:"rate"` // percent, 0 when bucket is empty
}

// RecoveryHealthSnapshot is the tenant-wide collections health report
type RecoveryHealthSnapshot struct {
	HealthScore         int             `json:"health_score"` // 0-100
	HealthLevel         HealthLevel     `json:"health_level"`
	AvgCollectionDays   float64         `json:"avg_collection_days"`
	OverallRecoveryRate float64         `json:"overall_recovery_rate"` // percent
	RecentRecoveryRate  float64         `json:"recent_recovery_rate"`  // percent
	AgeBucketRates      []AgeBucketRate `json:"age_bucket_rates"`
	Recommendations     []string        `json:"recommendations"`
}

// RecoveryHealthAnalyzer produces the tenant-wide recovery health snapshot:
// collection speed, recovery rates overall / recent / by age bucket, and
// threshold-triggered recommendations. Collection days are measured from
// invoice date to the first receipt in the invoice's allocation entries.
type RecoveryHealthAnalyzer struct{}

// NewRecoveryHealthAnalyzer creates a new recovery health analyzer
func NewRecoveryHealthAnalyzer() *RecoveryHealthAnalyzer {
	return &RecoveryHealthAnalyzer{}
}

// Analyze computes the snapshot over a tenant's complete invoice set.
// entriesByInvoice is the tenant's allocation ledger grouped by invoice id.
func (a *RecoveryHealthAnalyzer) Analyze(
	invoices []*ledger.Invoice,
	entriesByInvoice map[uuid.UUID][]ledger.AllocationEntry,
	asOf time.Time,
) *RecoveryHealthSnapshot {
	total := len(invoices)
	paid := 0
	unpaid := 0
	collectionDaysSum := 0
	collectionSamples := 0
	recentTotal := 0
	recentPaid := 0

	buckets := []AgeBucketRate{
		{Label: "0-30", MinDays: 0, MaxDays: 30},
		{Label: "31-60", MinDays: 31, MaxDays: 60},
		{Label: "61-90", MinDays: 61, MaxDays: 90},
		{Label: "90+", MinDays: 91, MaxDays: -1},
	}

	for _, inv := range invoices {
		age := ledger.DaysBetween(inv.InvoiceDate, asOf)
		if age < 0 {
			// future-dated invoices count as brand new
			age = 0
		}
		isPaid := inv.Status == ledger.InvoiceStatusPaid
		if isPaid {
			paid++
			if first, ok := ledger.FirstReceiptAt(entriesByInvoice[inv.ID]); ok {
				collectionDaysSum += ledger.DaysBetween(inv.InvoiceDate, first)
				collectionSamples++
			}
		} else {
			unpaid++
		}
		if age <= recentAgeDays {
			recentTotal++
			if isPaid {
				recentPaid++
			}
		}
		for i := range buckets {
			if age >= buckets[i].MinDays && (buckets[i].MaxDays < 0 || age <= buckets[i].MaxDays) {
				buckets[i].Total++
				if isPaid {
					buckets[i].Recovered++
				}
				break
			}
		}
	}

	avgCollectionDays := 0.0
	if collectionSamples > 0 {
		avgCollectionDays = float64(collectionDaysSum) / float64(collectionSamples)
	}
	overallRate := ratio(paid, total)
	recentRate := ratio(recentPaid, recentTotal)
	for i := range buckets {
		buckets[i].Rate = ratio(buckets[i].Recovered, buckets[i].Total)
	}

	score := collectionDaysPoints(avgCollectionDays) + overallRatePoints(overallRate) + recentRatePoints(recentRate)
	if score > 100 {
		score = 100
	}

	return &RecoveryHealthSnapshot{
		HealthScore:         score,
		HealthLevel:         HealthLevelForScore(score),
		AvgCollectionDays:   avgCollectionDays,
		OverallRecoveryRate: overallRate,
		RecentRecoveryRate:  recentRate,
		AgeBucketRates:      buckets,
		Recommendations:     a.recommendations(avgCollectionDays, overallRate, unpaid, buckets),
	}
}

// recommendations appends one fixed rule-based suggestion per triggered
// threshold; rules trigger independently.
func (a *RecoveryHealthAnalyzer) recommendations(avgCollectionDays, overallRate float64, unpaid int, buckets []AgeBucketRate) []string {
	recs := make([]string, 0, 4)
	if avgCollectionDays > 45 {
		recs = append(recs, fmt.Sprintf("Average collection time is %.0f days. Tighten payment terms or send reminders earlier.", avgCollectionDays))
	}
	if overallRate < 70 {
		recs = append(recs, fmt.Sprintf("Overall recovery rate is %.0f%%. Review credit policy for repeat defaulters.", overallRate))
	}
	if unpaid > 20 {
		recs = append(recs, fmt.Sprintf("%d invoices are still unpaid. Prioritize follow-ups using the risk report.", unpaid))
	}
	for _, b := range buckets {
		if b.MaxDays < 0 && b.Total-b.Recovered > 5 {
			recs = append(recs, fmt.Sprintf("%d invoices older than 90 days remain unrecovered. Consider escalating these to collections.", b.Total-b.Recovered))
		}
	}
	return recs
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func collectionDaysPoints(days float64) int {
	switch {
	case days < 30:
		return 40
	case days < 60:
		return 25
	case days < 90:
		return 10
	default:
		return 0
	}
}

func overallRatePoints(rate float64) int {
	switch {
	case rate > 85:
		return 40
	case rate > 70:
		return 25
	case rate > 50:
		return 15
	default:
		return 0
	}
}

func recentRatePoints(rate float64) int {
	switch {
	case rate > 80:
		return 20
	case rate > 60:
		return 12
	case rate > 40:
		return 5
	default:
		return 0
	}
}
