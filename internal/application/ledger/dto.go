package ledger

import (
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest is the payload for creating an invoice
type CreateInvoiceRequest struct {
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	InvoiceNumber    string          `json:"invoice_number" binding:"required"`
	InvoiceDate      time.Time       `json:"invoice_date" binding:"required"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	InterestFrom     string          `json:"interest_from"`
}

// UpdateInvoiceRequest is the payload for updating an invoice. Status is
// not accepted; it is derived by the allocation engine.
type UpdateInvoiceRequest struct {
	InvoiceNumber    string          `json:"invoice_number" binding:"required"`
	InvoiceDate      time.Time       `json:"invoice_date" binding:"required"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	InterestFrom     string          `json:"interest_from"`
}

// CreateReceiptRequest is the payload for recording a receipt voucher
type CreateReceiptRequest struct {
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	VoucherNumber string          `json:"voucher_number" binding:"required"`
	VoucherType   string          `json:"voucher_type" binding:"required"`
	Date          time.Time       `json:"date" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// UpdateReceiptRequest is the payload for updating a receipt voucher
type UpdateReceiptRequest struct {
	VoucherNumber string          `json:"voucher_number" binding:"required"`
	VoucherType   string          `json:"voucher_type" binding:"required"`
	Date          time.Time       `json:"date" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
}

// ReceiptListFilter defines filtering options for receipt list queries
type ReceiptListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
}

// ImportInvoiceRow is one pre-parsed row of a bulk invoice import. String
// fields carry whatever the upstream extractor produced; malformed values
// are handled per row, never failing the whole batch.
type ImportInvoiceRow struct {
	CustomerID       uuid.UUID `json:"customer_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	InvoiceDate      string    `json:"invoice_date"`
	Amount           string    `json:"amount"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	InterestRate     string    `json:"interest_rate"`
	InterestFrom     string    `json:"interest_from"`
}

// ImportRowError records why one row was skipped
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport summarizes a bulk invoice import
type ImportReport struct {
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID               uuid.UUID            `json:"id"`
	TenantID         uuid.UUID            `json:"tenant_id"`
	CustomerID       uuid.UUID            `json:"customer_id"`
	CustomerName     string               `json:"customer_name"`
	InvoiceNumber    string               `json:"invoice_number"`
	InvoiceDate      time.Time            `json:"invoice_date"`
	DueDate          time.Time            `json:"due_date"`
	Amount           decimal.Decimal      `json:"amount"`
	InterestRate     decimal.Decimal      `json:"interest_rate"`
	InterestFrom     string               `json:"interest_from,omitempty"`
	PaymentTermsDays int                  `json:"payment_terms_days"`
	Status           ledger.InvoiceStatus `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Version          int                  `json:"version"`
}

// ReceiptResponse represents a receipt voucher in API responses
type ReceiptResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	VoucherNumber string          `json:"voucher_number"`
	VoucherType   string          `json:"voucher_type"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// InterestSummaryResponse is the overdue interest report
type InterestSummaryResponse struct {
	AsOf          time.Time                   `json:"as_of"`
	Assessments   []ledger.InterestAssessment `json:"assessments"`
	TotalInterest valueobject.Money           `json:"total_interest"`
}

// ToInvoiceResponse maps a domain invoice to its API representation
func ToInvoiceResponse(inv *ledger.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:               inv.ID,
		TenantID:         inv.TenantID,
		CustomerID:       inv.CustomerID,
		CustomerName:     inv.CustomerName,
		InvoiceNumber:    inv.InvoiceNumber,
		InvoiceDate:      inv.InvoiceDate,
		DueDate:          inv.DueDate(),
		Amount:           inv.Amount,
		InterestRate:     inv.InterestRate,
		InterestFrom:     inv.InterestFrom,
		PaymentTermsDays: inv.PaymentTermsDays,
		Status:           inv.Status,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
}

// ToReceiptResponse maps a domain receipt to its API representation
func ToReceiptResponse(r *ledger.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:            r.ID,
		TenantID:      r.TenantID,
		CustomerID:    r.CustomerID,
		CustomerName:  r.CustomerName,
		VoucherNumber: r.VoucherNumber,
		VoucherType:   r.VoucherType.String(),
		Date:          r.Date,
		Amount:        r.Amount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Version:       r.Version,
	}
}
