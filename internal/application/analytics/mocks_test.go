package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*partner.Customer, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.InvoiceFilter) ([]*ledger.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *ledger.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status ledger.InvoiceStatus) error {
	return m.Called(ctx, tenantID, id, status).Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Receipt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ReceiptFilter) ([]*ledger.Receipt, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Receipt, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *ledger.Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

func (m *MockReceiptRepository) Update(ctx context.Context, receipt *ledger.Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

func (m *MockReceiptRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type MockAllocationEntryRepository struct {
	mock.Mock
}

func (m *MockAllocationEntryRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]ledger.AllocationEntry, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.AllocationEntry), args.Error(1)
}

func (m *MockAllocationEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.AllocationEntry, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.AllocationEntry), args.Error(1)
}

func (m *MockAllocationEntryRepository) ReplaceForCustomer(ctx context.Context, tenantID, customerID uuid.UUID, entries []ledger.AllocationEntry) error {
	return m.Called(ctx, tenantID, customerID, entries).Error(0)
}

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func fixtureCustomer(t *testing.T, tenantID uuid.UUID, name string, creditLimit int64) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(tenantID, name, "Retail",
		decimal.NewFromInt(creditLimit), decimal.Zero)
	require.NoError(t, err)
	return c
}

func fixtureInvoice(t *testing.T, tenantID uuid.UUID, customer *partner.Customer, number string, date time.Time, amount int64) *ledger.Invoice {
	t.Helper()
	inv, err := ledger.NewInvoice(tenantID, customer.ID, customer.ClientName, number, date,
		decimal.NewFromInt(amount), 30)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func fixtureReceipt(t *testing.T, tenantID uuid.UUID, customer *partner.Customer, number string, date time.Time, amount int64) *ledger.Receipt {
	t.Helper()
	r, err := ledger.NewReceipt(tenantID, customer.ID, customer.ClientName, number,
		ledger.VoucherTypeBank, date, decimal.NewFromInt(amount))
	require.NoError(t, err)
	r.ClearDomainEvents()
	return r
}

func markPaid(t *testing.T, inv *ledger.Invoice) *ledger.Invoice {
	t.Helper()
	_, err := inv.ApplyStatus(ledger.InvoiceStatusPaid)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}
