package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbooks/backend/internal/domain/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByIDForCompany finds a contact by ID within a company
func (r *GormContactRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.Contact, error) {
	var contact ledger.Contact
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindByIDForUpdate finds a contact and takes an exclusive row lock so
// concurrent balance movements serialize
func (r *GormContactRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.Contact, error) {
	var contact ledger.Contact
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// ExistsForCompany checks if a contact exists within a company
func (r *GormContactRepository) ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Contact{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAllForCompany lists contacts for a company
func (r *GormContactRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.Contact, int64, error) {
	var contacts []ledger.Contact
	var total int64

	if err := r.db.WithContext(ctx).Model(&ledger.Contact{}).
		Where("company_id = ?", companyID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilter(r.db.WithContext(ctx).
		Where("company_id = ?", companyID), filter)
	if err := query.Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *ledger.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// Ensure GormContactRepository implements ContactRepository
var _ ledger.ContactRepository = (*GormContactRepository)(nil)
