// Package tenant provides multi-tenant scoping for GORM queries.
//
// Every repository query must be constrained to one tenant. Scope applies
// the tenant_id condition and poisons the query when the tenant ID is
// missing, so an unscoped query fails instead of leaking rows across
// tenants.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantRequired is returned when a query is built without a tenant ID
var ErrTenantRequired = errors.New("tenant id is required")

// Scope constrains a query to one tenant
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}
