package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smallbooks/backend/internal/domain/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// Service provides application-level bank account and contact operations.
// Balances are only read here; every balance mutation goes through the
// reconciliation engine's units of work.
type Service struct {
	bankRepo    ledger.BankAccountRepository
	contactRepo ledger.ContactRepository
}

// NewService creates a new ledger service
func NewService(bankRepo ledger.BankAccountRepository, contactRepo ledger.ContactRepository) *Service {
	return &Service{
		bankRepo:    bankRepo,
		contactRepo: contactRepo,
	}
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	CompanyID      uuid.UUID       `json:"company_id"`
	Name           string          `json:"name"`
	AccountNumber  string          `json:"account_number,omitempty"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// CreateBankAccountRequest represents a request to create a bank account
type CreateBankAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	AccountNumber  string          `json:"account_number"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CreateBankAccount creates a new bank account with an opening balance
func (s *Service) CreateBankAccount(ctx context.Context, companyID uuid.UUID, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	account, err := ledger.NewBankAccount(companyID, req.Name, req.AccountNumber, req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	if err := s.bankRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toBankAccountResponse(account), nil
}

// GetBankAccount gets a bank account by ID
func (s *Service) GetBankAccount(ctx context.Context, companyID, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.bankRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewNotFoundError("Bank account not found")
	}
	return toBankAccountResponse(account), nil
}

// ListBankAccounts lists bank accounts for a company
func (s *Service) ListBankAccounts(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]BankAccountResponse, int64, error) {
	accounts, total, err := s.bankRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toBankAccountResponse(&accounts[i])
	}
	return responses, total, nil
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID             uuid.UUID       `json:"id"`
	CompanyID      uuid.UUID       `json:"company_id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// CreateContactRequest represents a request to create a contact
type CreateContactRequest struct {
	Name           string          `json:"name" binding:"required"`
	Type           string          `json:"type" binding:"required"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// CreateContact creates a new contact with an opening balance
func (s *Service) CreateContact(ctx context.Context, companyID uuid.UUID, req CreateContactRequest) (*ContactResponse, error) {
	contact, err := ledger.NewContact(companyID, req.Name, ledger.ContactType(strings.ToUpper(req.Type)), req.OpeningBalance)
	if err != nil {
		return nil, err
	}
	contact.Phone = req.Phone
	contact.Email = req.Email
	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	return toContactResponse(contact), nil
}

// GetContact gets a contact by ID
func (s *Service) GetContact(ctx context.Context, companyID, id uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, shared.NewNotFoundError("Contact not found")
	}
	return toContactResponse(contact), nil
}

// ListContacts lists contacts for a company
func (s *Service) ListContacts(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ContactResponse, int64, error) {
	contacts, total, err := s.contactRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = *toContactResponse(&contacts[i])
	}
	return responses, total, nil
}

func toBankAccountResponse(a *ledger.BankAccount) *BankAccountResponse {
	return &BankAccountResponse{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		Name:           a.Name,
		AccountNumber:  a.AccountNumber,
		CurrentBalance: a.CurrentBalance,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Version:        a.Version,
	}
}

func toContactResponse(c *ledger.Contact) *ContactResponse {
	return &ContactResponse{
		ID:             c.ID,
		CompanyID:      c.CompanyID,
		Name:           c.Name,
		Type:           c.Type.String(),
		Phone:          c.Phone,
		Email:          c.Email,
		CurrentBalance: c.CurrentBalance,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}
