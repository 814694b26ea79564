package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customer masters
type CustomerRepository interface {
	// FindByIDForTenant returns (nil, nil) when no customer matches; errors
	// are reserved for storage failures.
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
