package ledger

import (
	"time"

	"github.com/recoverly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// daysPerYear is the fixed divisor for simple interest. No day-count
// convention switching, no compounding.
const daysPerYear = 365

// literalDateLayouts are tried in order when InterestFrom is neither
// "Invoice Date" nor "Due Date"
var literalDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// InterestAssessment is the overdue interest computed for one invoice as of
// a given date
type InterestAssessment struct {
	InvoiceID      uuid.UUID         `json:"invoice_id"`
	InvoiceNumber  string            `json:"invoice_number"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	CustomerName   string            `json:"customer_name"`
	InvoiceAmount  decimal.Decimal   `json:"invoice_amount"`
	InterestRate   decimal.Decimal   `json:"interest_rate"`
	ApplicableFrom *time.Time        `json:"applicable_from,omitempty"`
	DaysOverdue    int               `json:"days_overdue"`
	Interest       valueobject.Money `json:"interest"`
}

// InterestCalculator accrues simple overdue interest on invoices. Interest
// always accrues on the full original invoice amount, even after partial
// payment reduces the outstanding balance.
//
// The calculator is fail-soft: an invoice with missing or unparseable
// interest terms contributes zero interest rather than an error, so one bad
// row never blocks a summary.
type InterestCalculator struct{}

// NewInterestCalculator creates a new interest calculator
func NewInterestCalculator() *InterestCalculator {
	return &InterestCalculator{}
}

// ApplicableDate resolves the date interest starts accruing from.
// Returns false when the invoice carries no usable interest terms.
func (c *InterestCalculator) ApplicableDate(inv *Invoice) (time.Time, bool) {
	if inv.InterestFrom == "" {
		return time.Time{}, false
	}
	switch inv.InterestFrom {
	case InterestFromDueDate:
		return inv.DueDate(), true
	case InterestFromInvoiceDate:
		return inv.InvoiceDate, true
	}
	for _, layout := range literalDateLayouts {
		if d, err := time.Parse(layout, inv.InterestFrom); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Assess computes the overdue interest for one invoice as of the given
// time. Interest is zero when the rate is non-positive, the applicable date
// is absent or unparseable, or the invoice is not yet overdue.
func (c *InterestCalculator) Assess(inv *Invoice, asOf time.Time) InterestAssessment {
	assessment := InterestAssessment{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		InvoiceAmount: inv.Amount,
		InterestRate:  inv.InterestRate,
		Interest:      valueobject.ZeroINR(),
	}
	if inv.InterestRate.LessThanOrEqual(decimal.Zero) {
		return assessment
	}
	applicable, ok := c.ApplicableDate(inv)
	if !ok {
		return assessment
	}
	assessment.ApplicableFrom = &applicable

	days := DaysBetween(applicable, asOf)
	if days <= 0 {
		return assessment
	}
	assessment.DaysOverdue = days

	// amount * rate% * days / 365
	interest := inv.Amount.
		Mul(inv.InterestRate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(100 * daysPerYear))
	assessment.Interest = valueobject.NewMoneyINR(interest.Round(2))
	return assessment
}

// AssessAll computes interest for every invoice and the total across them.
// Invoices without interest terms appear with zero interest.
func (c *InterestCalculator) AssessAll(invoices []*Invoice, asOf time.Time) ([]InterestAssessment, valueobject.Money) {
	assessments := make([]InterestAssessment, 0, len(invoices))
	total := valueobject.ZeroINR()
	for _, inv := range invoices {
		a := c.Assess(inv, asOf)
		assessments = append(assessments, a)
		total, _ = total.Add(a.Interest)
	}
	return assessments, total
}

// DaysBetween returns the number of whole calendar days from one date to
// another, negative when to precedes from
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
