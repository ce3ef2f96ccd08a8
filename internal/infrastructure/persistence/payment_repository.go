package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID within a company
func (r *GormPaymentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*books.Payment, error) {
	var payment books.Payment
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByIDForUpdate finds a payment and takes an exclusive row lock held
// until the surrounding transaction ends
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*books.Payment, error) {
	var payment books.Payment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByCompany lists payments for a company
func (r *GormPaymentRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]books.Payment, int64, error) {
	var payments []books.Payment
	var total int64

	if err := r.db.WithContext(ctx).Model(&books.Payment{}).
		Where("company_id = ?", companyID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilter(r.db.WithContext(ctx).
		Where("company_id = ?", companyID), filter)
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *books.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SoftDelete marks the payment deleted and records who deleted it
func (r *GormPaymentRepository) SoftDelete(ctx context.Context, payment *books.Payment, deletedBy uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(payment).
		Updates(map[string]any{
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ books.PaymentRepository = (*GormPaymentRepository)(nil)
