package ledger

import (
	"strings"
	"time"

	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the derived payment status of an invoice.
// Status is owned by the allocation engine; no other code path may set it.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "UNPAID"  // No receipts applied
	InvoiceStatusPartial InvoiceStatus = "PARTIAL" // 0 < applied < amount
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // Fully covered by receipts
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InterestFrom values understood by the interest calculator. Anything else
// is treated as a literal calendar date and parsed fail-soft.
const (
	InterestFromInvoiceDate = "Invoice Date"
	InterestFromDueDate     = "Due Date"
)

// Invoice is an aggregate root representing a receivable invoice issued to
// a customer. Amounts are stored as decimals; Status is derived.
type Invoice struct {
	shared.TenantAggregateRoot
	CustomerID       uuid.UUID
	CustomerName     string
	InvoiceNumber    string
	InvoiceDate      time.Time
	Amount           decimal.Decimal
	InterestRate     decimal.Decimal // annual %, zero means no interest terms
	InterestFrom     string          // "Invoice Date" | "Due Date" | literal date | empty
	PaymentTermsDays int
	Status           InvoiceStatus
}

// NewInvoice creates a new invoice in UNPAID status
func NewInvoice(
	tenantID, customerID uuid.UUID,
	customerName, invoiceNumber string,
	invoiceDate time.Time,
	amount decimal.Decimal,
	paymentTermsDays int,
) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is required")
	}
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}
	if paymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms days cannot be negative")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		CustomerName:        strings.TrimSpace(customerName),
		InvoiceNumber:       strings.TrimSpace(invoiceNumber),
		InvoiceDate:         invoiceDate,
		Amount:              amount,
		InterestRate:        decimal.Zero,
		PaymentTermsDays:    paymentTermsDays,
		Status:              InvoiceStatusUnpaid,
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// SetInterestTerms sets the overdue interest terms for the invoice.
// A non-positive rate clears the terms.
func (i *Invoice) SetInterestTerms(rate decimal.Decimal, from string) {
	if rate.LessThanOrEqual(decimal.Zero) {
		i.InterestRate = decimal.Zero
		i.InterestFrom = ""
		return
	}
	i.InterestRate = rate
	i.InterestFrom = strings.TrimSpace(from)
}

// DueDate returns the invoice date plus the payment terms in calendar days
func (i *Invoice) DueDate() time.Time {
	return i.InvoiceDate.AddDate(0, 0, i.PaymentTermsDays)
}

// IsOverdue reports whether the invoice is unpaid or partial past its due date
func (i *Invoice) IsOverdue(asOf time.Time) bool {
	return i.Status != InvoiceStatusPaid && asOf.After(i.DueDate())
}

// ApplyStatus overwrites the derived status with the allocation engine's
// verdict and raises a status-changed event when it actually changes.
// Returns true if the status changed.
func (i *Invoice) ApplyStatus(status InvoiceStatus) (bool, error) {
	if !status.IsValid() {
		return false, shared.NewDomainError("INVALID_STATUS", "Invalid invoice status")
	}
	if i.Status == status {
		return false, nil
	}
	old := i.Status
	i.Status = status
	i.IncrementVersion()
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, old))
	return true, nil
}
