package partner

import (
	"strings"

	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the master record for a billable client. CreditLimit and
// OpeningBalance feed the risk thermometer; a zero credit limit means
// utilization is not tracked for this customer.
type Customer struct {
	shared.TenantAggregateRoot
	ClientName     string
	Category       string
	CreditLimit    decimal.Decimal
	OpeningBalance decimal.Decimal
}

// NewCustomer creates a new customer master record
func NewCustomer(tenantID uuid.UUID, clientName, category string, creditLimit, openingBalance decimal.Decimal) (*Customer, error) {
	if strings.TrimSpace(clientName) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientName:          strings.TrimSpace(clientName),
		Category:            strings.TrimSpace(category),
		CreditLimit:         creditLimit,
		OpeningBalance:      openingBalance,
	}, nil
}

// Update replaces the customer's editable fields
func (c *Customer) Update(clientName, category string, creditLimit, openingBalance decimal.Decimal) error {
	if strings.TrimSpace(clientName) == "" {
		return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.ClientName = strings.TrimSpace(clientName)
	c.Category = strings.TrimSpace(category)
	c.CreditLimit = creditLimit
	c.OpeningBalance = openingBalance
	return nil
}

// HasCreditLimit reports whether utilization can be computed for this customer
func (c *Customer) HasCreditLimit() bool {
	return c.CreditLimit.IsPositive()
}
