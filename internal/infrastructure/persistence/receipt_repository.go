package persistence

import (
	"context"
	"errors"

	"github.com/recoverly/backend/internal/domain/ledger"
	"github.com/recoverly/backend/internal/domain/shared"
	"github.com/recoverly/backend/internal/infrastructure/persistence/models"
	"github.com/recoverly/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByIDForTenant finds a receipt by ID within a tenant. A missing row
// is (nil, nil), not an error.
func (r *GormReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all receipts for a tenant matching the filter,
// oldest receipt date first
func (r *GormReceiptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.ReceiptFilter) ([]*ledger.Receipt, error) {
	query := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Model(&models.ReceiptModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	var receiptModels []models.ReceiptModel
	if err := query.Order("date ASC, created_at ASC").Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toReceipts(receiptModels), nil
}

// FindByCustomer finds all receipts of one customer within a tenant
func (r *GormReceiptRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*ledger.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("customer_id = ?", customerID).
		Order("date ASC, created_at ASC").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toReceipts(receiptModels), nil
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *ledger.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	return r.db.WithContext(ctx).Save(model).Error
}

// Update saves a receipt with optimistic locking on its version
func (r *GormReceiptRepository) Update(ctx context.Context, receipt *ledger.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", receipt.ID, receipt.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The receipt record has been modified by another transaction")
	}
	return nil
}

// Delete deletes a receipt within a tenant
func (r *GormReceiptRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Delete(&models.ReceiptModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toReceipts(receiptModels []models.ReceiptModel) []*ledger.Receipt {
	receipts := make([]*ledger.Receipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = receiptModels[i].ToDomain()
	}
	return receipts
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ ledger.ReceiptRepository = (*GormReceiptRepository)(nil)
