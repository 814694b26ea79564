package models

import (
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root
type InvoiceModel struct {
	TenantAggregateModel
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerName     string               `gorm:"type:varchar(200);not null"`
	InvoiceNumber    string               `gorm:"type:varchar(50);not null;index"`
	InvoiceDate      time.Time            `gorm:"not null;index"`
	Amount           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	InterestRate     decimal.Decimal      `gorm:"type:decimal(9,4);not null;default:0"`
	InterestFrom     string               `gorm:"type:varchar(50)"`
	PaymentTermsDays int                  `gorm:"not null;default:0"`
	Status           ledger.InvoiceStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		InvoiceNumber:       m.InvoiceNumber,
		InvoiceDate:         m.InvoiceDate,
		Amount:              m.Amount,
		InterestRate:        m.InterestRate,
		InterestFrom:        m.InterestFrom,
		PaymentTermsDays:    m.PaymentTermsDays,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.InvoiceNumber = inv.InvoiceNumber
	m.InvoiceDate = inv.InvoiceDate
	m.Amount = inv.Amount
	m.InterestRate = inv.InterestRate
	m.InterestFrom = inv.InterestFrom
	m.PaymentTermsDays = inv.PaymentTermsDays
	m.Status = inv.Status
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ReceiptModel is the persistence model for the Receipt aggregate root
type ReceiptModel struct {
	TenantAggregateModel
	CustomerID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName  string             `gorm:"type:varchar(200);not null"`
	VoucherNumber string             `gorm:"type:varchar(50);not null;index"`
	VoucherType   ledger.VoucherType `gorm:"type:varchar(20);not null"`
	Date          time.Time          `gorm:"not null;index"`
	Amount        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt
func (m *ReceiptModel) ToDomain() *ledger.Receipt {
	return &ledger.Receipt{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		VoucherNumber:       m.VoucherNumber,
		VoucherType:         m.VoucherType,
		Date:                m.Date,
		Amount:              m.Amount,
	}
}

// FromDomain populates the persistence model from a domain Receipt
func (m *ReceiptModel) FromDomain(r *ledger.Receipt) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.CustomerID = r.CustomerID
	m.CustomerName = r.CustomerName
	m.VoucherNumber = r.VoucherNumber
	m.VoucherType = r.VoucherType
	m.Date = r.Date
	m.Amount = r.Amount
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt
func ReceiptModelFromDomain(r *ledger.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// AllocationEntryModel is the persistence model for allocation ledger rows.
// Entries are plain records, not aggregates; they carry no version.
type AllocationEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_allocation_tenant_customer,priority:1"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_allocation_tenant_customer,priority:2"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceiptDate time.Time       `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AllocationEntryModel) TableName() string {
	return "allocation_entries"
}

// ToDomain converts the persistence model to a domain AllocationEntry
func (m *AllocationEntryModel) ToDomain() ledger.AllocationEntry {
	return ledger.AllocationEntry{
		ID:          m.ID,
		TenantID:    m.TenantID,
		CustomerID:  m.CustomerID,
		InvoiceID:   m.InvoiceID,
		ReceiptID:   m.ReceiptID,
		Amount:      m.Amount,
		ReceiptDate: m.ReceiptDate,
	}
}

// AllocationEntryModelFromDomain creates a new persistence model from a
// domain AllocationEntry
func AllocationEntryModelFromDomain(e ledger.AllocationEntry) *AllocationEntryModel {
	return &AllocationEntryModel{
		ID:          e.ID,
		TenantID:    e.TenantID,
		CustomerID:  e.CustomerID,
		InvoiceID:   e.InvoiceID,
		ReceiptID:   e.ReceiptID,
		Amount:      e.Amount,
		ReceiptDate: e.ReceiptDate,
	}
}
