package analytics

import (
	"testing"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCustomer(t *testing.T, creditLimit, openingBalance float64) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(uuid.New(), "Acme Traders", "wholesale",
		decimal.NewFromFloat(creditLimit), decimal.NewFromFloat(openingBalance))
	require.NoError(t, err)
	return c
}

func testInvoice(t *testing.T, customer *partner.Customer, number string, invDate time.Time, amount float64, termsDays int, status ledger.InvoiceStatus) *ledger.Invoice {
	t.Helper()
	inv, err := ledger.NewInvoice(customer.TenantID, customer.ID, customer.ClientName, number,
		invDate, decimal.NewFromFloat(amount), termsDays)
	require.NoError(t, err)
	if status != ledger.InvoiceStatusUnpaid {
		_, err = inv.ApplyStatus(status)
		require.NoError(t, err)
	}
	return inv
}

func testReceipt(t *testing.T, customer *partner.Customer, number string, rcptDate time.Time, amount float64) *ledger.Receipt {
	t.Helper()
	r, err := ledger.NewReceipt(customer.TenantID, customer.ID, customer.ClientName, number,
		ledger.VoucherTypeBank, rcptDate, decimal.NewFromFloat(amount))
	require.NoError(t, err)
	return r
}

func TestRiskLevelForScore(t *testing.T) {
	assert.Equal(t, RiskLevelLow, RiskLevelForScore(0))
	assert.Equal(t, RiskLevelLow, RiskLevelForScore(29))
	assert.Equal(t, RiskLevelMedium, RiskLevelForScore(30))
	assert.Equal(t, RiskLevelMedium, RiskLevelForScore(69))
	assert.Equal(t, RiskLevelHigh, RiskLevelForScore(70))
	assert.Equal(t, RiskLevelHigh, RiskLevelForScore(100))
}

func TestRiskScorer_Score(t *testing.T) {
	scorer := NewRiskScorer()
	asOf := date(2024, 6, 1)

	t.Run("clean customer scores zero", func(t *testing.T) {
		customer := testCustomer(t, 100000, 0)
		inv := testInvoice(t, customer, "INV-1", date(2024, 5, 20), 1000, 30, ledger.InvoiceStatusUnpaid)

		profile := scorer.Score(customer, []*ledger.Invoice{inv}, nil, asOf)
		assert.Equal(t, 0, profile.RiskScore)
		assert.Equal(t, RiskLevelLow, profile.RiskLevel)
		assert.Zero(t, profile.Factors.OverdueInvoiceCount)
	})

	t.Run("zero credit limit means zero utilization", func(t *testing.T) {
		customer := testCustomer(t, 0, 0)
		inv := testInvoice(t, customer, "INV-1", date(2024, 5, 1), 50000, 30, ledger.InvoiceStatusUnpaid)

		profile := scorer.Score(customer, []*ledger.Invoice{inv}, nil, asOf)
		assert.Zero(t, profile.Factors.CreditUtilization)
	})

	t.Run("outstanding is opening plus invoices minus receipts", func(t *testing.T) {
		customer := testCustomer(t, 10000, 500)
		inv := testInvoice(t, customer, "INV-1", date(2024, 5, 20), 2000, 30, ledger.InvoiceStatusUnpaid)
		rcpt := testReceipt(t, customer, "RCP-1", date(2024, 5, 25), 800)

		profile := scorer.Score(customer, []*ledger.Invoice{inv}, []*ledger.Receipt{rcpt}, asOf)
		assert.True(t, profile.Factors.Outstanding.Equal(decimal.NewFromInt(1700)))
		assert.InDelta(t, 17.0, profile.Factors.CreditUtilization, 0.001)
	})

	t.Run("worst case clamps to 100", func(t *testing.T) {
		customer := testCustomer(t, 1000, 0)
		invoices := make([]*ledger.Invoice, 0, 6)
		for i := 0; i < 6; i++ {
			// Six invoices, all overdue by more than 30 days.
			inv := testInvoice(t, customer, "INV-"+string(rune('A'+i)), date(2024, 1, 1), 500, 10, ledger.InvoiceStatusUnpaid)
			invoices = append(invoices, inv)
		}

		profile := scorer.Score(customer, invoices, nil, asOf)
		assert.Equal(t, 100, profile.RiskScore)
		assert.Equal(t, RiskLevelHigh, profile.RiskLevel)
		assert.Equal(t, 6, profile.Factors.OverdueInvoiceCount)
	})

	t.Run("paid invoices never count as overdue", func(t *testing.T) {
		customer := testCustomer(t, 0, 0)
		inv := testInvoice(t, customer, "INV-1", date(2024, 1, 1), 500, 10, ledger.InvoiceStatusPaid)

		profile := scorer.Score(customer, []*ledger.Invoice{inv}, nil, asOf)
		assert.Zero(t, profile.Factors.OverdueInvoiceCount)
		assert.Zero(t, profile.Factors.AvgPaymentDelayDays)
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		customer := testCustomer(t, 100, 1000000)
		invoices := make([]*ledger.Invoice, 0, 20)
		for i := 0; i < 20; i++ {
			invoices = append(invoices, testInvoice(t, customer, "INV-X", date(2023, 1, 1), 100000, 0, ledger.InvoiceStatusPartial))
		}
		profile := scorer.Score(customer, invoices, nil, asOf)
		assert.GreaterOrEqual(t, profile.RiskScore, 0)
		assert.LessOrEqual(t, profile.RiskScore, 100)
	})
}

func TestUtilizationPoints(t *testing.T) {
	assert.Equal(t, 0, utilizationPoints(30))
	assert.Equal(t, 15, utilizationPoints(30.01))
	assert.Equal(t, 15, utilizationPoints(50))
	assert.Equal(t, 25, utilizationPoints(50.01))
	assert.Equal(t, 25, utilizationPoints(80))
	assert.Equal(t, 40, utilizationPoints(80.01))
}

func TestDelayPoints(t *testing.T) {
	assert.Equal(t, 0, delayPoints(5))
	assert.Equal(t, 10, delayPoints(5.5))
	assert.Equal(t, 10, delayPoints(15))
	assert.Equal(t, 20, delayPoints(16))
	assert.Equal(t, 20, delayPoints(30))
	assert.Equal(t, 30, delayPoints(31))
}

func TestOverduePoints(t *testing.T) {
	assert.Equal(t, 0, overduePoints(0))
	assert.Equal(t, 10, overduePoints(1))
	assert.Equal(t, 10, overduePoints(3))
	assert.Equal(t, 20, overduePoints(4))
	assert.Equal(t, 20, overduePoints(5))
	assert.Equal(t, 30, overduePoints(6))
}
