package persistence

import (
	"context"

	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// gormUnitOfWork binds all repositories to one *gorm.DB transaction handle.
// Row locks taken through any of its repositories are held until the
// surrounding transaction commits or rolls back.
type gormUnitOfWork struct {
	documents    *GormDocumentRepository
	payments     *GormPaymentRepository
	allocations  *GormAllocationRepository
	bankAccounts *GormBankAccountRepository
	contacts     *GormContactRepository
}

func newGormUnitOfWork(tx *gorm.DB) *gormUnitOfWork {
	return &gormUnitOfWork{
		documents:    NewGormDocumentRepository(tx),
		payments:     NewGormPaymentRepository(tx),
		allocations:  NewGormAllocationRepository(tx),
		bankAccounts: NewGormBankAccountRepository(tx),
		contacts:     NewGormContactRepository(tx),
	}
}

func (u *gormUnitOfWork) Documents() books.DocumentRepository       { return u.documents }
func (u *gormUnitOfWork) Payments() books.PaymentRepository         { return u.payments }
func (u *gormUnitOfWork) Allocations() books.AllocationRepository   { return u.allocations }
func (u *gormUnitOfWork) BankAccounts() ledger.BankAccountRepository { return u.bankAccounts }
func (u *gormUnitOfWork) Contacts() ledger.ContactRepository        { return u.contacts }

// GormTransactionManager implements books.TransactionManager on top of GORM
// transactions
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do runs fn inside a database transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context, uow books.UnitOfWork) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newGormUnitOfWork(tx))
	})
}

// Ensure implementations satisfy the domain interfaces
var (
	_ books.UnitOfWork         = (*gormUnitOfWork)(nil)
	_ books.TransactionManager = (*GormTransactionManager)(nil)
)
