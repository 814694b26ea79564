package analytics

import (
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskLevel buckets a risk score for collections prioritization
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "HIGH"   // score >= 70
	RiskLevelMedium RiskLevel = "MEDIUM" // score >= 30
	RiskLevelLow    RiskLevel = "LOW"
)

// RiskLevelForScore maps a composite score to its level
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskLevelHigh
	case score >= 30:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskFactors are the inputs behind a customer's risk score
type RiskFactors struct {
	CreditUtilization   float64         `json:"credit_utilization"` // percent
	AvgPaymentDelayDays float64         `json:"avg_payment_delay_days"`
	OverdueInvoiceCount int             `json:"overdue_invoice_count"`
	Outstanding         decimal.Decimal `json:"outstanding"`
	CreditLimit         decimal.Decimal `json:"credit_limit"`
}

// RiskProfile is the risk thermometer reading for one customer
type RiskProfile struct {
	CustomerID   uuid.UUID   `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	RiskScore    int         `json:"risk_score"` // 0-100
	RiskLevel    RiskLevel   `json:"risk_level"`
	Factors      RiskFactors `json:"factors"`
}

// RiskScorer computes the composite 0-100 client risk thermometer from
// credit utilization, average payment delay, and overdue invoice count.
// Each factor is independently capped; the sum is clamped to 100.
type RiskScorer struct{}

// NewRiskScorer creates a new risk scorer
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Score computes the risk profile for one customer from their complete
// invoice and receipt sets as of the given time
func (s *RiskScorer) Score(customer *partner.Customer, invoices []*ledger.Invoice, receipts []*ledger.Receipt, asOf time.Time) RiskProfile {
	outstanding := customer.OpeningBalance
	for _, inv := range invoices {
		outstanding = outstanding.Add(inv.Amount)
	}
	for _, r := range receipts {
		outstanding = outstanding.Sub(r.Amount)
	}

	// Guarded: zero or missing credit limit means utilization is 0.
	utilization := 0.0
	if customer.HasCreditLimit() {
		u, _ := outstanding.Div(customer.CreditLimit).Mul(decimal.NewFromInt(100)).Float64()
		utilization = u
	}

	overdueCount := 0
	delaySum := 0
	for _, inv := range invoices {
		if inv.IsOverdue(asOf) {
			overdueCount++
			delaySum += ledger.DaysBetween(inv.DueDate(), asOf)
		}
	}
	avgDelay := 0.0
	if overdueCount > 0 {
		avgDelay = float64(delaySum) / float64(overdueCount)
	}

	score := utilizationPoints(utilization) + delayPoints(avgDelay) + overduePoints(overdueCount)
	if score > 100 {
		score = 100
	}

	return RiskProfile{
		CustomerID:   customer.ID,
		CustomerName: customer.ClientName,
		RiskScore:    score,
		RiskLevel:    RiskLevelForScore(score),
		Factors: RiskFactors{
			CreditUtilization:   utilization,
			AvgPaymentDelayDays: avgDelay,
			OverdueInvoiceCount: overdueCount,
			Outstanding:         outstanding,
			CreditLimit:         customer.CreditLimit,
		},
	}
}

func utilizationPoints(utilization float64) int {
	switch {
	case utilization > 80:
		return 40
	case utilization > 50:
		return 25
	case utilization > 30:
		return 15
	default:
		return 0
	}
}

func delayPoints(avgDelayDays float64) int {
	switch {
	case avgDelayDays > 30:
		return 30
	case avgDelayDays > 15:
		return 20
	case avgDelayDays > 5:
		return 10
	default:
		return 0
	}
}

func overduePoints(overdueCount int) int {
	switch {
	case overdueCount > 5:
		return 30
	case overdueCount > 3:
		return 20
	case overdueCount > 0:
		return 10
	default:
		return 0
	}
}
