package ledger

import (
	"strings"
	"time"

	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherType classifies how a receipt was settled. All voucher types are
// pooled together for allocation purposes.
type VoucherType string

const (
	VoucherTypeCash  VoucherType = "CASH"
	VoucherTypeBank  VoucherType = "BANK"
	VoucherTypeTDS   VoucherType = "TDS"   // Tax deducted at source
	VoucherTypeCN    VoucherType = "CN"    // Credit note
	VoucherTypeOther VoucherType = "OTHER"
)

// IsValid checks if the voucher type is valid
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherTypeCash, VoucherTypeBank, VoucherTypeTDS, VoucherTypeCN, VoucherTypeOther:
		return true
	}
	return false
}

// String returns the string representation
func (t VoucherType) String() string {
	return string(t)
}

// Receipt is an aggregate root representing money received from a customer.
// Receipts are never linked to specific invoices at entry time; the
// allocation engine derives the linkage.
type Receipt struct {
	shared.TenantAggregateRoot
	CustomerID    uuid.UUID
	CustomerName  string
	VoucherNumber string
	VoucherType   VoucherType
	Date          time.Time
	Amount        decimal.Decimal
}

// NewReceipt creates a new receipt voucher
func NewReceipt(
	tenantID, customerID uuid.UUID,
	customerName, voucherNumber string,
	voucherType VoucherType,
	date time.Time,
	amount decimal.Decimal,
) (*Receipt, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is required")
	}
	if strings.TrimSpace(voucherNumber) == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if !voucherType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VOUCHER_TYPE", "Invalid voucher type")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEIPT_DATE", "Receipt date is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount cannot be negative")
	}

	return &Receipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		CustomerName:        strings.TrimSpace(customerName),
		VoucherNumber:       strings.TrimSpace(voucherNumber),
		VoucherType:         voucherType,
		Date:                date,
		Amount:              amount,
	}, nil
}
