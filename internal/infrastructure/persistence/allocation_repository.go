package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByPayment finds all allocations for a payment
func (r *GormAllocationRepository) FindByPayment(ctx context.Context, companyID, paymentID uuid.UUID) ([]books.PaymentAllocation, error) {
	var allocations []books.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND payment_id = ?", companyID, paymentID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// FindByDocument finds all allocations applied to a document
func (r *GormAllocationRepository) FindByDocument(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, documentID uuid.UUID) ([]books.PaymentAllocation, error) {
	var allocations []books.PaymentAllocation
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND document_kind = ? AND document_id = ?", companyID, kind, documentID).
		Order("created_at ASC").
		Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// ExistsForDocument checks whether any allocation references the document
func (r *GormAllocationRepository) ExistsForDocument(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, documentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&books.PaymentAllocation{}).
		Where("company_id = ? AND document_kind = ? AND document_id = ?", companyID, kind, documentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an allocation
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *books.PaymentAllocation) error {
	return r.db.WithContext(ctx).Save(allocation).Error
}

// Delete removes an allocation row
func (r *GormAllocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&books.PaymentAllocation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ books.AllocationRepository = (*GormAllocationRepository)(nil)
