package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationEntry is a persisted allocation record linking one receipt to
// one invoice. Entries are produced exclusively by the allocation engine and
// replaced wholesale whenever a customer's ledger is recomputed.
type AllocationEntry struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	ReceiptID   uuid.UUID       `json:"receipt_id"`
	Amount      decimal.Decimal `json:"amount"`
	ReceiptDate time.Time       `json:"receipt_date"`
}

// InvoiceAllocation is the engine's verdict for a single invoice
type InvoiceAllocation struct {
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	Status           InvoiceStatus   `json:"status"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AllocationOutcome is the complete result of allocating a customer's pooled
// receipts against their invoices
type AllocationOutcome struct {
	Invoices        []InvoiceAllocation `json:"invoices"`
	Entries         []AllocationEntry   `json:"entries"`
	TotalAllocated  decimal.Decimal     `json:"total_allocated"`
	UnappliedAmount decimal.Decimal     `json:"unapplied_amount"`
}

// AllocationEngine matches a customer's pooled receipts against their
// invoices oldest-first (FIFO). It is a pure function over its inputs:
// re-running it on unchanged inputs yields an identical outcome.
//
// Receipts are consumed oldest-first as well, which yields the same
// per-invoice totals as draining a single aggregate pool while additionally
// recording which receipt settled which invoice. Leftover receipt amount is
// reported as unapplied and not carried forward as credit.
type AllocationEngine struct{}

// NewAllocationEngine creates a new allocation engine
func NewAllocationEngine() *AllocationEngine {
	return &AllocationEngine{}
}

// Allocate computes the allocation outcome for one customer's complete
// invoice and receipt sets. Both slices may be in any order; invoices are
// ordered by invoice date (ties keep input order) and receipts by receipt
// date before matching.
func (e *AllocationEngine) Allocate(invoices []*Invoice, receipts []*Receipt) *AllocationOutcome {
	outcome := &AllocationOutcome{
		Invoices:        make([]InvoiceAllocation, 0, len(invoices)),
		Entries:         make([]AllocationEntry, 0),
		TotalAllocated:  decimal.Zero,
		UnappliedAmount: decimal.Zero,
	}
	if len(invoices) == 0 {
		for _, r := range receipts {
			outcome.UnappliedAmount = outcome.UnappliedAmount.Add(r.Amount)
		}
		return outcome
	}

	sortedInvoices := make([]*Invoice, len(invoices))
	copy(sortedInvoices, invoices)
	sort.SliceStable(sortedInvoices, func(a, b int) bool {
		return sortedInvoices[a].InvoiceDate.Before(sortedInvoices[b].InvoiceDate)
	})

	sortedReceipts := make([]*Receipt, len(receipts))
	copy(sortedReceipts, receipts)
	sort.SliceStable(sortedReceipts, func(a, b int) bool {
		return sortedReceipts[a].Date.Before(sortedReceipts[b].Date)
	})

	// remaining[i] tracks the unconsumed portion of sortedReceipts[i]
	remaining := make([]decimal.Decimal, len(sortedReceipts))
	for i, r := range sortedReceipts {
		remaining[i] = r.Amount
	}

	next := 0 // index of the oldest receipt with remaining amount
	for _, inv := range sortedInvoices {
		allocated := decimal.Zero
		target := inv.Amount

		for next < len(sortedReceipts) && allocated.LessThan(target) {
			if remaining[next].LessThanOrEqual(decimal.Zero) {
				next++
				continue
			}
			slice := target.Sub(allocated)
			if remaining[next].LessThan(slice) {
				slice = remaining[next]
			}
			allocated = allocated.Add(slice)
			remaining[next] = remaining[next].Sub(slice)

			outcome.Entries = append(outcome.Entries, AllocationEntry{
				ID:          uuid.New(),
				TenantID:    inv.TenantID,
				CustomerID:  inv.CustomerID,
				InvoiceID:   inv.ID,
				ReceiptID:   sortedReceipts[next].ID,
				Amount:      slice,
				ReceiptDate: sortedReceipts[next].Date,
			})
		}

		outcome.Invoices = append(outcome.Invoices, InvoiceAllocation{
			InvoiceID:        inv.ID,
			InvoiceNumber:    inv.InvoiceNumber,
			Status:           DeriveStatus(target, allocated),
			AllocatedAmount:  allocated,
			RemainingBalance: target.Sub(allocated),
		})
		outcome.TotalAllocated = outcome.TotalAllocated.Add(allocated)
	}

	for i := next; i < len(sortedReceipts); i++ {
		outcome.UnappliedAmount = outcome.UnappliedAmount.Add(remaining[i])
	}
	return outcome
}

// DeriveStatus maps an invoice amount and its allocated total to a status.
// A zero-amount invoice counts as paid since nothing is outstanding.
func DeriveStatus(amount, allocated decimal.Decimal) InvoiceStatus {
	if allocated.GreaterThanOrEqual(amount) {
		return InvoiceStatusPaid
	}
	if allocated.GreaterThan(decimal.Zero) {
		return InvoiceStatusPartial
	}
	return InvoiceStatusUnpaid
}

// SettledAt returns the receipt date that completed the invoice's payment,
// i.e. the latest receipt date among the invoice's allocation entries.
// Returns false when the invoice has no entries.
func SettledAt(entries []AllocationEntry) (time.Time, bool) {
	var settled time.Time
	found := false
	for _, e := range entries {
		if !found || e.ReceiptDate.After(settled) {
			settled = e.ReceiptDate
			found = true
		}
	}
	return settled, found
}

// FirstReceiptAt returns the earliest receipt date among the invoice's
// allocation entries. Returns false when the invoice has no entries.
func FirstReceiptAt(entries []AllocationEntry) (time.Time, bool) {
	var first time.Time
	found := false
	for _, e := range entries {
		if !found || e.ReceiptDate.Before(first) {
			first = e.ReceiptDate
			found = true
		}
	}
	return first, found
}
