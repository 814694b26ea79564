package partner

import (
	"time"

	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest is the payload for creating a customer master
type CreateCustomerRequest struct {
	ClientName     string          `json:"client_name" binding:"required"`
	Category       string          `json:"category"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// UpdateCustomerRequest is the payload for updating a customer master
type UpdateCustomerRequest struct {
	ClientName     string          `json:"client_name" binding:"required"`
	Category       string          `json:"category"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CustomerResponse represents a customer master in API responses
type CustomerResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	ClientName     string          `json:"client_name"`
	Category       string          `json:"category"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ToCustomerResponse maps a domain customer to its API representation
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		TenantID:       c.TenantID,
		ClientName:     c.ClientName,
		Category:       c.Category,
		CreditLimit:    c.CreditLimit,
		OpeningBalance: c.OpeningBalance,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}
