package partner

import (
	"context"

	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/recoverly/backend/internal/infrastructure/cache"
	"github.com/recoverly/backend/internal/infrastructure/logger"
	"github.com/recoverly/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer master operations. Every mutation
// invalidates the tenant's cached analytics reports because customer
// counts and credit limits feed directly into them.
type CustomerService struct {
	customerRepo partner.CustomerRepository
	reportCache  cache.ReportCache
}

// CustomerServiceOption is a functional option for configuring CustomerService
type CustomerServiceOption func(*CustomerService)

// WithReportCache sets the report cache invalidated on customer writes
func WithReportCache(reportCache cache.ReportCache) CustomerServiceOption {
	return func(s *CustomerService) {
		s.reportCache = reportCache
	}
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, opts ...CustomerServiceOption) *CustomerService {
	s := &CustomerService{customerRepo: customerRepo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new customer master record
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "create")
	defer span.End()

	customer, err := partner.NewCustomer(tenantID, req.ClientName, req.Category, req.CreditLimit, req.OpeningBalance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateReports(ctx, tenantID)

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a single customer
func (s *CustomerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns all customer masters for the tenant
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID) ([]CustomerResponse, error) {
	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		responses[i] = ToCustomerResponse(c)
	}
	return responses, nil
}

// Update updates a customer master record
func (s *CustomerService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "update")
	defer span.End()

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer == nil {
		err := shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := customer.Update(req.ClientName, req.Category, req.CreditLimit, req.OpeningBalance); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	customer.IncrementVersion()

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateReports(ctx, tenantID)

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete removes a customer master. Invoices, receipts and allocation
// entries for the customer are removed by the database cascade.
func (s *CustomerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "delete")
	defer span.End()

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if customer == nil {
		err := shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.customerRepo.Delete(ctx, tenantID, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.invalidateReports(ctx, tenantID)
	return nil
}

func (s *CustomerService) invalidateReports(ctx context.Context, tenantID uuid.UUID) {
	if s.reportCache == nil {
		return
	}
	if err := s.reportCache.Invalidate(ctx, cache.ReportKeys(tenantID)...); err != nil {
		logger.L(ctx).Warn("failed to invalidate report cache", zap.Error(err))
	}
}
