package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// BankAccount represents a cash position held at a bank.
// It is a passive balance holder: the balance is never set directly after
// creation, only moved through signed increments applied by the
// reconciliation engine.
type BankAccount struct {
	shared.CompanyAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null"`
	AccountNumber  string          `gorm:"type:varchar(50)"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// NewBankAccount creates a new bank account with an opening balance
func NewBankAccount(companyID uuid.UUID, name, accountNumber string, openingBalance decimal.Decimal) (*BankAccount, error) {
	if name == "" {
		return nil, shared.NewValidationError("Bank account name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Bank account name cannot exceed 200 characters")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("Company ID cannot be empty")
	}

	return &BankAccount{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		AccountNumber:        accountNumber,
		CurrentBalance:       openingBalance,
	}, nil
}

// ApplyDelta moves the balance by a signed amount. A negative balance is
// allowed (overdraft); the engine is responsible for only applying deltas it
// can later reverse exactly.
func (b *BankAccount) ApplyDelta(delta decimal.Decimal) {
	b.CurrentBalance = b.CurrentBalance.Add(delta)
	b.IncrementVersion()
}
