package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/recoverly/backend/internal/infrastructure/logger"
	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// importDateLayouts are tried in order when parsing import row dates
var importDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// LedgerService handles invoice and receipt writes. Every mutation is
// followed by a synchronous reallocation of the affected customer's ledger
// under a per-customer lock, so derived invoice statuses and the allocation
// entry ledger are never stale when the request returns.
type LedgerService struct {
	invoiceRepo    ledger.InvoiceRepository
	receiptRepo    ledger.ReceiptRepository
	allocationRepo ledger.AllocationEntryRepository
	customerRepo   partner.CustomerRepository
	engine         *ledger.AllocationEngine
	locks          *customerLocks
	publisher      shared.EventPublisher
	reportCache    cache.ReportCache
}

// LedgerServiceOption is a functional option for configuring LedgerService
type LedgerServiceOption func(*LedgerService)

// WithEventPublisher sets the publisher for domain events raised by ledger writes
func WithEventPublisher(publisher shared.EventPublisher) LedgerServiceOption {
	return func(s *LedgerService) {
		s.publisher = publisher
	}
}

// WithReportCache sets the report cache invalidated on ledger writes
func WithReportCache(reportCache cache.ReportCache) LedgerServiceOption {
	return func(s *LedgerService) {
		s.reportCache = reportCache
	}
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	invoiceRepo ledger.InvoiceRepository,
	receiptRepo ledger.ReceiptRepository,
	allocationRepo ledger.AllocationEntryRepository,
	customerRepo partner.CustomerRepository,
	opts ...LedgerServiceOption,
) *LedgerService {
	s := &LedgerService{
		invoiceRepo:    invoiceRepo,
		receiptRepo:    receiptRepo,
		allocationRepo: allocationRepo,
		customerRepo:   customerRepo,
		engine:         ledger.NewAllocationEngine(),
		locks:          newCustomerLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===================== Invoice Operations =====================

// CreateInvoice creates an invoice and reallocates the customer's ledger
func (s *LedgerService) CreateInvoice(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_invoice")
	defer span.End()

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer == nil {
		err := shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err := ledger.NewInvoice(tenantID, req.CustomerID, customer.ClientName,
		req.InvoiceNumber, req.InvoiceDate, req.Amount, req.PaymentTermsDays)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	invoice.SetInterestTerms(req.InterestRate, req.InterestFrom)

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, invoice.GetDomainEvents())
	invoice.ClearDomainEvents()

	if err := s.Reallocate(ctx, tenantID, req.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	// Reload to pick up the status the engine derived
	invoice, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoice.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// UpdateInvoice updates an invoice and reallocates the customer's ledger
func (s *LedgerService) UpdateInvoice(ctx context.Context, tenantID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "update_invoice")
	defer span.End()

	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice == nil {
		err := shared.NewDomainError("NOT_FOUND", "Invoice not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if strings.TrimSpace(req.InvoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if req.Amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}
	if req.PaymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms days cannot be negative")
	}

	invoice.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
	invoice.InvoiceDate = req.InvoiceDate
	invoice.Amount = req.Amount
	invoice.PaymentTermsDays = req.PaymentTermsDays
	invoice.SetInterestTerms(req.InterestRate, req.InterestFrom)
	invoice.IncrementVersion()

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.Reallocate(ctx, tenantID, invoice.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	invoice, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// DeleteInvoice deletes an invoice and reallocates the customer's ledger
func (s *LedgerService) DeleteInvoice(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "delete_invoice")
	defer span.End()

	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if invoice == nil {
		return shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	if err := s.invoiceRepo.Delete(ctx, tenantID, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.Reallocate(ctx, tenantID, invoice.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// GetInvoice retrieves a single invoice
func (s *LedgerService) GetInvoice(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	resp := ToInvoiceResponse(invoice)
	return &resp, nil
}

// ListInvoices lists invoices with filtering
func (s *LedgerService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, error) {
	domainFilter := ledger.InvoiceFilter{
		CustomerID: filter.CustomerID,
	}
	if filter.Status != "" {
		status := ledger.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Invalid invoice status filter")
		}
		domainFilter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		responses[i] = ToInvoiceResponse(inv)
	}
	return responses, nil
}

// ImportInvoices imports pre-parsed invoice rows in bulk. Rows are handled
// fail-soft: a malformed amount is zeroed, an unparseable date skips only
// that row, and each affected customer is reallocated once at the end.
func (s *LedgerService) ImportInvoices(ctx context.Context, tenantID uuid.UUID, rows []ImportInvoiceRow) (*ImportReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "import_invoices")
	defer span.End()
	telemetry.SetAttribute(span, "row_count", len(rows))

	log := logger.L(ctx)
	report := &ImportReport{Total: len(rows)}
	affected := make(map[uuid.UUID]struct{})

	customerNames := make(map[uuid.UUID]string)

	for i, row := range rows {
		skip := func(reason string) {
			report.Skipped++
			report.Errors = append(report.Errors, ImportRowError{Row: i, Reason: reason})
			log.Warn("import row skipped",
				zap.Int("row", i),
				zap.String("reason", reason),
				zap.String("invoice_number", row.InvoiceNumber),
			)
		}

		if row.CustomerID == uuid.Nil {
			skip("missing customer id")
			continue
		}
		name, ok := customerNames[row.CustomerID]
		if !ok {
			customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, row.CustomerID)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			if customer == nil {
				skip("unknown customer")
				continue
			}
			name = customer.ClientName
			customerNames[row.CustomerID] = name
		}

		invoiceDate, ok := parseImportDate(row.InvoiceDate)
		if !ok {
			skip(fmt.Sprintf("unparseable invoice date %q", row.InvoiceDate))
			continue
		}

		// Amounts fall back to zero so one bad cell never loses the row
		amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
		if err != nil || amount.IsNegative() {
			amount = decimal.Zero
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(row.InterestRate))
		if err != nil {
			rate = decimal.Zero
		}

		invoice, err := ledger.NewInvoice(tenantID, row.CustomerID, name,
			row.InvoiceNumber, invoiceDate, amount, row.PaymentTermsDays)
		if err != nil {
			skip(err.Error())
			continue
		}
		invoice.SetInterestTerms(rate, row.InterestFrom)

		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.publishEvents(ctx, invoice.GetDomainEvents())
		invoice.ClearDomainEvents()

		report.Imported++
		affected[row.CustomerID] = struct{}{}
	}

	for customerID := range affected {
		if err := s.Reallocate(ctx, tenantID, customerID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	return report, nil
}

// ===================== Receipt Operations =====================

// CreateReceipt records a receipt voucher and reallocates the customer's ledger
func (s *LedgerService) CreateReceipt(ctx context.Context, tenantID uuid.UUID, req CreateReceiptRequest) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_receipt")
	defer span.End()

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer == nil {
		err := shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	receipt, err := ledger.NewReceipt(tenantID, req.CustomerID, customer.ClientName,
		req.VoucherNumber, ledger.VoucherType(req.VoucherType), req.Date, req.Amount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.receiptRepo.Save(ctx, receipt); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.Reallocate(ctx, tenantID, req.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// UpdateReceipt updates a receipt voucher and reallocates the customer's ledger
func (s *LedgerService) UpdateReceipt(ctx context.Context, tenantID, id uuid.UUID, req UpdateReceiptRequest) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "update_receipt")
	defer span.End()

	receipt, err := s.receiptRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if receipt == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Receipt not found")
	}

	voucherType := ledger.VoucherType(req.VoucherType)
	if !voucherType.IsValid() {
		return nil, shared.NewDomainError("INVALID_VOUCHER_TYPE", "Invalid voucher type")
	}
	if strings.TrimSpace(req.VoucherNumber) == "" {
		return nil, shared.NewDomainError("INVALID_VOUCHER_NUMBER", "Voucher number cannot be empty")
	}
	if req.Amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount cannot be negative")
	}

	receipt.VoucherNumber = strings.TrimSpace(req.VoucherNumber)
	receipt.VoucherType = voucherType
	receipt.Date = req.Date
	receipt.Amount = req.Amount
	receipt.IncrementVersion()

	if err := s.receiptRepo.Update(ctx, receipt); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.Reallocate(ctx, tenantID, receipt.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// DeleteReceipt deletes a receipt voucher and reallocates the customer's ledger
func (s *LedgerService) DeleteReceipt(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "delete_receipt")
	defer span.End()

	receipt, err := s.receiptRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if receipt == nil {
		return shared.NewDomainError("NOT_FOUND", "Receipt not found")
	}

	if err := s.receiptRepo.Delete(ctx, tenantID, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.Reallocate(ctx, tenantID, receipt.CustomerID); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	return nil
}

// ListReceipts lists receipt vouchers with filtering
func (s *LedgerService) ListReceipts(ctx context.Context, tenantID uuid.UUID, filter ReceiptListFilter) ([]ReceiptResponse, error) {
	receipts, err := s.receiptRepo.FindAllForTenant(ctx, tenantID, ledger.ReceiptFilter{
		CustomerID: filter.CustomerID,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]ReceiptResponse, len(receipts))
	for i, r := range receipts {
		responses[i] = ToReceiptResponse(r)
	}
	return responses, nil
}

// ===================== Reallocation =====================

// Reallocate recomputes the customer's complete allocation: loads their
// invoices and receipts, runs the engine, writes back only the invoice
// statuses that changed, replaces the customer's allocation entries, and
// invalidates the tenant's cached reports. Serialized per customer.
func (s *LedgerService) Reallocate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "reallocate")
	defer span.End()
	telemetry.SetAttribute(span, "customer_id", customerID.String())

	release := s.locks.Acquire(tenantID, customerID)
	defer release()

	invoices, err := s.invoiceRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	receipts, err := s.receiptRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	outcome := s.engine.Allocate(invoices, receipts)

	byID := make(map[uuid.UUID]*ledger.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	for _, verdict := range outcome.Invoices {
		inv := byID[verdict.InvoiceID]
		changed, err := inv.ApplyStatus(verdict.Status)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}
		if !changed {
			continue
		}
		if err := s.invoiceRepo.UpdateStatus(ctx, tenantID, inv.ID, verdict.Status); err != nil {
			telemetry.RecordError(span, err)
			return err
		}
		s.publishEvents(ctx, inv.GetDomainEvents())
		inv.ClearDomainEvents()
	}

	if err := s.allocationRepo.ReplaceForCustomer(ctx, tenantID, customerID, outcome.Entries); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.invalidateReports(ctx, tenantID)

	logger.L(ctx).Debug("customer ledger reallocated",
		zap.String("customer_id", customerID.String()),
		zap.Int("invoices", len(outcome.Invoices)),
		zap.Int("entries", len(outcome.Entries)),
		zap.String("unapplied", outcome.UnappliedAmount.String()),
	)
	return nil
}

// publishEvents publishes domain events when a publisher is configured.
// Publish failures are logged, never surfaced to the caller.
func (s *LedgerService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish domain events", zap.Error(err))
	}
}

// invalidateReports drops the tenant's cached analytics reports
func (s *LedgerService) invalidateReports(ctx context.Context, tenantID uuid.UUID) {
	if s.reportCache == nil {
		return
	}
	if err := s.reportCache.Invalidate(ctx, cache.ReportKeys(tenantID)...); err != nil {
		logger.L(ctx).Warn("failed to invalidate report cache", zap.Error(err))
	}
}

// parseImportDate tries the known import layouts in order
func parseImportDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range importDateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
