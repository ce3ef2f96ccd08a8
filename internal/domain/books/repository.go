package books

import (
	"context"

	"github.com/google/uuid"
	"github.com/smallbooks/backend/internal/domain/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// DocumentRepository defines persistence for documents. Documents are
// addressed by (kind, id); an ID alone is ambiguous across kinds.
type DocumentRepository interface {
	FindByID(ctx context.Context, companyID uuid.UUID, kind DocumentKind, id uuid.UUID) (*Document, error)
	// FindByIDForUpdate loads the document under an exclusive row lock so a
	// reconciliation transaction observes a stable paid amount.
	FindByIDForUpdate(ctx context.Context, companyID uuid.UUID, kind DocumentKind, id uuid.UUID) (*Document, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID, kind DocumentKind, filter shared.Filter) ([]Document, int64, error)
	Save(ctx context.Context, document *Document) error
	// SoftDelete marks the document deleted and records who deleted it
	SoftDelete(ctx context.Context, document *Document, deletedBy uuid.UUID) error
}

// PaymentRepository defines persistence for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, companyID uuid.UUID, id uuid.UUID) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, companyID uuid.UUID, id uuid.UUID) (*Payment, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)
	Save(ctx context.Context, payment *Payment) error
	SoftDelete(ctx context.Context, payment *Payment, deletedBy uuid.UUID) error
}

// AllocationRepository defines persistence for payment allocations
type AllocationRepository interface {
	FindByPayment(ctx context.Context, companyID uuid.UUID, paymentID uuid.UUID) ([]PaymentAllocation, error)
	FindByDocument(ctx context.Context, companyID uuid.UUID, kind DocumentKind, documentID uuid.UUID) ([]PaymentAllocation, error)
	ExistsForDocument(ctx context.Context, companyID uuid.UUID, kind DocumentKind, documentID uuid.UUID) (bool, error)
	Save(ctx context.Context, allocation *PaymentAllocation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitOfWork exposes all repositories bound to one database transaction.
// Everything loaded or saved through it shares the transaction's locks, so a
// reconciliation either lands as a whole or not at all.
type UnitOfWork interface {
	Documents() DocumentRepository
	Payments() PaymentRepository
	Allocations() AllocationRepository
	BankAccounts() ledger.BankAccountRepository
	Contacts() ledger.ContactRepository
}

// TransactionManager runs a function inside a database transaction, handing
// it a UnitOfWork. The transaction commits when fn returns nil and rolls
// back otherwise.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
