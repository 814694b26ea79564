package persistence

import (
	"context"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/infrastructure/persistence/models"
	"github.com/recoverly/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationEntryRepository implements AllocationEntryRepository using GORM
type GormAllocationEntryRepository struct {
	db *gorm.DB
}

// NewGormAllocationEntryRepository creates a new GormAllocationEntryRepository
func NewGormAllocationEntryRepository(db *gorm.DB) *GormAllocationEntryRepository {
	return &GormAllocationEntryRepository{db: db}
}

// FindByCustomer finds the allocation ledger of one customer within a tenant
func (r *GormAllocationEntryRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]ledger.AllocationEntry, error) {
	var entryModels []models.AllocationEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("receipt_date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// FindAllForTenant finds the complete allocation ledger of a tenant
func (r *GormAllocationEntryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]ledger.AllocationEntry, error) {
	var entryModels []models.AllocationEntryModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Order("receipt_date ASC, created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toEntries(entryModels), nil
}

// ReplaceForCustomer atomically replaces one customer's allocation ledger
// with the engine's freshly computed entries
func (r *GormAllocationEntryRepository) ReplaceForCustomer(ctx context.Context, tenantID, customerID uuid.UUID, entries []ledger.AllocationEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Scopes(tenant.Scope(tenantID)).
			Where("customer_id = ?", customerID).
			Delete(&models.AllocationEntryModel{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		entryModels := make([]*models.AllocationEntryModel, len(entries))
		for i, e := range entries {
			entryModels[i] = models.AllocationEntryModelFromDomain(e)
		}
		return tx.Create(entryModels).Error
	})
}

func toEntries(entryModels []models.AllocationEntryModel) []ledger.AllocationEntry {
	entries := make([]ledger.AllocationEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return entries
}

// Ensure GormAllocationEntryRepository implements AllocationEntryRepository
var _ ledger.AllocationEntryRepository = (*GormAllocationEntryRepository)(nil)
