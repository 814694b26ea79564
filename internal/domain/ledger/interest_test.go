package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interestInvoice(t *testing.T, invDate time.Time, amount float64, rate float64, from string, termsDays int) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), "Acme Traders", "INV-1", invDate, decimal.NewFromFloat(amount), termsDays)
	require.NoError(t, err)
	inv.SetInterestTerms(decimal.NewFromFloat(rate), from)
	return inv
}

func TestInterestCalculator_ApplicableDate(t *testing.T) {
	calc := NewInterestCalculator()

	t.Run("due date adds payment terms", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 1000, 12, InterestFromDueDate, 30)
		d, ok := calc.ApplicableDate(inv)
		require.True(t, ok)
		assert.Equal(t, date(2024, 1, 31), d)
	})

	t.Run("invoice date is the invoice date", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 1000, 12, InterestFromInvoiceDate, 30)
		d, ok := calc.ApplicableDate(inv)
		require.True(t, ok)
		assert.Equal(t, date(2024, 1, 1), d)
	})

	t.Run("literal ISO date parses", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 1000, 12, "2024-03-15", 30)
		d, ok := calc.ApplicableDate(inv)
		require.True(t, ok)
		assert.Equal(t, date(2024, 3, 15), d)
	})

	t.Run("literal dd-mm-yyyy date parses", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 1000, 12, "15-03-2024", 30)
		d, ok := calc.ApplicableDate(inv)
		require.True(t, ok)
		assert.Equal(t, date(2024, 3, 15), d)
	})

	t.Run("garbage is unusable", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 1000, 12, "whenever", 30)
		_, ok := calc.ApplicableDate(inv)
		assert.False(t, ok)
	})

	t.Run("absent terms are unusable", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 1000, 0, "", 30)
		_, ok := calc.ApplicableDate(inv)
		assert.False(t, ok)
	})
}

func TestInterestCalculator_Assess(t *testing.T) {
	calc := NewInterestCalculator()

	t.Run("formula: 18% on 10000 for 100 days", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 10000, 18, InterestFromInvoiceDate, 0)
		asOf := date(2024, 1, 1).AddDate(0, 0, 100)

		a := calc.Assess(inv, asOf)
		assert.Equal(t, 100, a.DaysOverdue)
		// 10000 * 18 * 100 / 36500 = 493.15
		assert.Equal(t, "493.15", a.Interest.Amount().StringFixed(2))
	})

	t.Run("zero when not yet overdue", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 6, 1), 10000, 18, InterestFromDueDate, 30)
		a := calc.Assess(inv, date(2024, 6, 15))
		assert.True(t, a.Interest.IsZero())
		assert.Zero(t, a.DaysOverdue)
	})

	t.Run("zero on the applicable date itself", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 10000, 18, InterestFromInvoiceDate, 0)
		a := calc.Assess(inv, date(2024, 1, 1))
		assert.True(t, a.Interest.IsZero())
	})

	t.Run("zero rate contributes nothing", func(t *testing.T) {
		inv := interestInvoice(t, date(2023, 1, 1), 10000, 0, InterestFromInvoiceDate, 0)
		a := calc.Assess(inv, date(2024, 1, 1))
		assert.True(t, a.Interest.IsZero())
	})

	t.Run("unparseable applicable date fails soft", func(t *testing.T) {
		inv := interestInvoice(t, date(2023, 1, 1), 10000, 18, "not-a-date", 0)
		a := calc.Assess(inv, date(2024, 1, 1))
		assert.True(t, a.Interest.IsZero())
		assert.Nil(t, a.ApplicableFrom)
	})

	t.Run("accrues on full amount despite partial payment", func(t *testing.T) {
		inv := interestInvoice(t, date(2024, 1, 1), 10000, 18, InterestFromInvoiceDate, 0)
		_, err := inv.ApplyStatus(InvoiceStatusPartial)
		require.NoError(t, err)

		a := calc.Assess(inv, date(2024, 1, 1).AddDate(0, 0, 100))
		assert.Equal(t, "493.15", a.Interest.Amount().StringFixed(2))
	})
}

func TestInterestCalculator_AssessAll(t *testing.T) {
	calc := NewInterestCalculator()
	asOf := date(2024, 4, 10)

	inv1 := interestInvoice(t, date(2024, 1, 1), 10000, 18, InterestFromInvoiceDate, 0) // 100 days
	inv2 := interestInvoice(t, date(2024, 1, 1), 5000, 0, "", 0)                        // no terms

	assessments, total := calc.AssessAll([]*Invoice{inv1, inv2}, asOf)
	require.Len(t, assessments, 2)
	assert.Equal(t, "493.15", total.Amount().StringFixed(2))
	assert.True(t, assessments[1].Interest.IsZero())
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2024, 1, 1), date(2024, 1, 1)))
	assert.Equal(t, 1, DaysBetween(date(2024, 1, 1), date(2024, 1, 2)))
	assert.Equal(t, -1, DaysBetween(date(2024, 1, 2), date(2024, 1, 1)))
	assert.Equal(t, 100, DaysBetween(date(2024, 1, 1), date(2024, 1, 1).AddDate(0, 0, 100)))
}
