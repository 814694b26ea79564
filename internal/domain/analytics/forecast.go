package analytics

import (
	"math"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// neutralOnTimeRate is assumed when a customer has no settled invoices to
// learn from
const neutralOnTimeRate = 50.0

// ForecastMetrics are the payment-pattern measurements behind a forecast
type ForecastMetrics struct {
	OnTimeRate         float64         `json:"on_time_rate"` // percent
	AvgDelayDays       float64         `json:"avg_delay_days"`
	UnpaidInvoiceCount int             `json:"unpaid_invoice_count"`
	UnpaidAmount       decimal.Decimal `json:"unpaid_amount"`
}

// ForecastProfile is the payment forecast for one customer
type ForecastProfile struct {
	CustomerID          uuid.UUID       `json:"customer_id"`
	CustomerName        string          `json:"customer_name"`
	StuckProbability    int             `json:"stuck_probability"` // 0-100
	ExpectedPaymentDate *time.Time      `json:"expected_payment_date,omitempty"`
	Metrics             ForecastMetrics `json:"metrics"`
}

// PaymentForecaster estimates how likely a customer's next payment is to be
// delayed or fail, from their settled-payment history in the allocation
// ledger. An invoice counts as settled on the latest receipt date among its
// allocation entries; on time means settled on or before the due date.
type PaymentForecaster struct{}

// NewPaymentForecaster creates a new payment forecaster
func NewPaymentForecaster() *PaymentForecaster {
	return &PaymentForecaster{}
}

// Forecast computes the forecast profile for one customer. entriesByInvoice
// is the customer's allocation ledger grouped by invoice id.
func (f *PaymentForecaster) Forecast(
	customerID uuid.UUID,
	customerName string,
	invoices []*ledger.Invoice,
	entriesByInvoice map[uuid.UUID][]ledger.AllocationEntry,
	asOf time.Time,
) ForecastProfile {
	onTime := 0
	late := 0
	delaySum := 0

	unpaidCount := 0
	unpaidAmount := decimal.Zero
	var earliestUnpaid *ledger.Invoice

	for _, inv := range invoices {
		if inv.Status != ledger.InvoiceStatusPaid {
			unpaidCount++
			unpaidAmount = unpaidAmount.Add(inv.Amount)
			if earliestUnpaid == nil || inv.InvoiceDate.Before(earliestUnpaid.InvoiceDate) {
				earliestUnpaid = inv
			}
			continue
		}
		settled, ok := ledger.SettledAt(entriesByInvoice[inv.ID])
		if !ok {
			continue
		}
		delay := ledger.DaysBetween(inv.DueDate(), settled)
		if delay <= 0 {
			onTime++
		} else {
			late++
			delaySum += delay
		}
	}

	onTimeRate := neutralOnTimeRate
	if onTime+late > 0 {
		onTimeRate = float64(onTime) / float64(onTime+late) * 100
	}
	avgDelay := 0.0
	if onTime+late > 0 {
		avgDelay = float64(delaySum) / float64(onTime+late)
	}

	stuck := onTimeRatePoints(onTimeRate) + forecastDelayPoints(avgDelay) + unpaidCountPoints(unpaidCount)
	if stuck > 100 {
		stuck = 100
	}

	profile := ForecastProfile{
		CustomerID:       customerID,
		CustomerName:     customerName,
		StuckProbability: stuck,
		Metrics: ForecastMetrics{
			OnTimeRate:         onTimeRate,
			AvgDelayDays:       avgDelay,
			UnpaidInvoiceCount: unpaidCount,
			UnpaidAmount:       unpaidAmount,
		},
	}
	if earliestUnpaid != nil {
		expected := earliestUnpaid.DueDate().AddDate(0, 0, int(math.Round(avgDelay)))
		profile.ExpectedPaymentDate = &expected
	}
	return profile
}

func onTimeRatePoints(rate float64) int {
	switch {
	case rate < 50:
		return 40
	case rate < 70:
		return 25
	case rate < 85:
		return 10
	default:
		return 0
	}
}

func forecastDelayPoints(avgDelayDays float64) int {
	switch {
	case avgDelayDays > 20:
		return 30
	case avgDelayDays > 10:
		return 15
	case avgDelayDays > 5:
		return 5
	default:
		return 0
	}
}

func unpaidCountPoints(unpaid int) int {
	switch {
	case unpaid > 5:
		return 30
	case unpaid > 2:
		return 15
	default:
		return 0
	}
}
