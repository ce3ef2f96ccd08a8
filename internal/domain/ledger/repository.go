package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/smallbooks/backend/internal/domain/shared"
)

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	// FindByIDForCompany finds a bank account by ID scoped to a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*BankAccount, error)

	// FindByIDForUpdate finds a bank account with an exclusive row lock held
	// for the duration of the surrounding unit of work
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*BankAccount, error)

	// ExistsForCompany checks existence within the company scope
	ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error)

	// FindAllForCompany lists bank accounts for a company with paging
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]BankAccount, int64, error)

	// Save creates or updates a bank account
	Save(ctx context.Context, account *BankAccount) error
}

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	// FindByIDForCompany finds a contact by ID scoped to a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Contact, error)

	// FindByIDForUpdate finds a contact with an exclusive row lock held for
	// the duration of the surrounding unit of work
	FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*Contact, error)

	// ExistsForCompany checks existence within the company scope
	ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error)

	// FindAllForCompany lists contacts for a company with paging
	FindAllForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Contact, int64, error)

	// Save creates or updates a contact
	Save(ctx context.Context, contact *Contact) error
}
