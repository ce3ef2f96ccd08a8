package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// ContactType classifies a counterparty
type ContactType string

const (
	ContactTypeCustomer ContactType = "CUSTOMER"
	ContactTypeVendor   ContactType = "VENDOR"
	ContactTypeBoth     ContactType = "BOTH"
)

// String returns the string representation of the contact type
func (t ContactType) String() string {
	return string(t)
}

// IsValid checks if the contact type is valid
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypeCustomer, ContactTypeVendor, ContactTypeBoth:
		return true
	}
	return false
}

// Contact represents a customer or vendor with a running balance.
// The balance sign convention follows the payment direction: an outgoing
// payment increases the balance, a receipt decreases it. Like BankAccount,
// the balance is only moved through signed increments.
type Contact struct {
	shared.CompanyAggregateRoot
	Name           string          `gorm:"type:varchar(200);not null"`
	Type           ContactType     `gorm:"type:varchar(20);not null;default:'BOTH'"`
	Phone          string          `gorm:"type:varchar(30)"`
	Email          string          `gorm:"type:varchar(200)"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new contact with an opening balance
func NewContact(companyID uuid.UUID, name string, contactType ContactType, openingBalance decimal.Decimal) (*Contact, error) {
	if name == "" {
		return nil, shared.NewValidationError("Contact name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Contact name cannot exceed 200 characters")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("Company ID cannot be empty")
	}
	if !contactType.IsValid() {
		return nil, shared.NewValidationError("Contact type is not valid")
	}

	return &Contact{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Type:                 contactType,
		CurrentBalance:       openingBalance,
	}, nil
}

// ApplyDelta moves the balance by a signed amount
func (c *Contact) ApplyDelta(delta decimal.Decimal) {
	c.CurrentBalance = c.CurrentBalance.Add(delta)
	c.IncrementVersion()
}
