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

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByIDForCompany finds a bank account by ID within a company
func (r *GormBankAccountRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	var account ledger.BankAccount
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDForUpdate finds a bank account and takes an exclusive row lock so
// concurrent balance movements serialize
func (r *GormBankAccountRepository) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	var account ledger.BankAccount
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ExistsForCompany checks if a bank account exists within a company
func (r *GormBankAccountRepository) ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.BankAccount{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAllForCompany lists bank accounts for a company
func (r *GormBankAccountRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ledger.BankAccount, int64, error) {
	var accounts []ledger.BankAccount
	var total int64

	if err := r.db.WithContext(ctx).Model(&ledger.BankAccount{}).
		Where("company_id = ?", companyID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := applyFilter(r.db.WithContext(ctx).
		Where("company_id = ?", companyID), filter)
	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *ledger.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Ensure GormBankAccountRepository implements BankAccountRepository
var _ ledger.BankAccountRepository = (*GormBankAccountRepository)(nil)
