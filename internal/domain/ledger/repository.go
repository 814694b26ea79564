package ledger

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice queries
type InvoiceFilter struct {
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
}

// ReceiptFilter narrows receipt queries
type ReceiptFilter struct {
	CustomerID *uuid.UUID
}

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	// FindByIDForTenant returns (nil, nil) when no invoice matches; errors
	// are reserved for storage failures.
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]*Invoice, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	// UpdateStatus persists only the derived status with an optimistic
	// version bump, so the reallocation path never clobbers unrelated edits.
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status InvoiceStatus) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ReceiptRepository defines persistence operations for receipts
type ReceiptRepository interface {
	// FindByIDForTenant returns (nil, nil) when no receipt matches.
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceiptFilter) ([]*Receipt, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Receipt, error)
	Save(ctx context.Context, receipt *Receipt) error
	Update(ctx context.Context, receipt *Receipt) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// AllocationEntryRepository defines persistence operations for the
// allocation ledger. Entries are only ever replaced as a whole per customer.
type AllocationEntryRepository interface {
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]AllocationEntry, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]AllocationEntry, error)
	ReplaceForCustomer(ctx context.Context, tenantID, customerID uuid.UUID, entries []AllocationEntry) error
}
