package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbooks/backend/internal/domain/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
)

type fakeBankRepo struct {
	accounts map[uuid.UUID]ledger.BankAccount
}

func (r *fakeBankRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	b, ok := r.accounts[id]
	if !ok || b.CompanyID != companyID {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeBankRepo) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	return r.FindByIDForCompany(ctx, companyID, id)
}

func (r *fakeBankRepo) ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	b, err := r.FindByIDForCompany(ctx, companyID, id)
	return b != nil, err
}

func (r *fakeBankRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]ledger.BankAccount, int64, error) {
	var out []ledger.BankAccount
	for _, b := range r.accounts {
		if b.CompanyID == companyID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBankRepo) Save(_ context.Context, account *ledger.BankAccount) error {
	r.accounts[account.ID] = *account
	return nil
}

type fakeContactRepo struct {
	contacts map[uuid.UUID]ledger.Contact
}

func (r *fakeContactRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*ledger.Contact, error) {
	c, ok := r.contacts[id]
	if !ok || c.CompanyID != companyID {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeContactRepo) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.Contact, error) {
	return r.FindByIDForCompany(ctx, companyID, id)
}

func (r *fakeContactRepo) ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	c, err := r.FindByIDForCompany(ctx, companyID, id)
	return c != nil, err
}

func (r *fakeContactRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]ledger.Contact, int64, error) {
	var out []ledger.Contact
	for _, c := range r.contacts {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeContactRepo) Save(_ context.Context, contact *ledger.Contact) error {
	r.contacts[contact.ID] = *contact
	return nil
}

func newTestService() (*Service, *fakeBankRepo, *fakeContactRepo) {
	bankRepo := &fakeBankRepo{accounts: make(map[uuid.UUID]ledger.BankAccount)}
	contactRepo := &fakeContactRepo{contacts: make(map[uuid.UUID]ledger.Contact)}
	return NewService(bankRepo, contactRepo), bankRepo, contactRepo
}

func TestCreateBankAccount(t *testing.T) {
	svc, repo, _ := newTestService()
	companyID := uuid.New()

	t.Run("creates account with opening balance", func(t *testing.T) {
		resp, err := svc.CreateBankAccount(context.Background(), companyID, CreateBankAccountRequest{
			Name:           "Operating Account",
			AccountNumber:  "100-200-300",
			OpeningBalance: decimal.NewFromInt(500),
		})
		require.NoError(t, err)
		assert.Equal(t, companyID, resp.CompanyID)
		assert.True(t, resp.CurrentBalance.Equal(decimal.NewFromInt(500)))
		assert.Len(t, repo.accounts, 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.CreateBankAccount(context.Background(), companyID, CreateBankAccountRequest{
			Name: "",
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}

func TestGetBankAccount(t *testing.T) {
	svc, _, _ := newTestService()
	companyID := uuid.New()

	created, err := svc.CreateBankAccount(context.Background(), companyID, CreateBankAccountRequest{
		Name: "Operating Account",
	})
	require.NoError(t, err)

	t.Run("returns the account", func(t *testing.T) {
		got, err := svc.GetBankAccount(context.Background(), companyID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("hides accounts of other companies", func(t *testing.T) {
		_, err := svc.GetBankAccount(context.Background(), uuid.New(), created.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestCreateContact(t *testing.T) {
	svc, _, repo := newTestService()
	companyID := uuid.New()

	t.Run("creates contact with normalized type", func(t *testing.T) {
		resp, err := svc.CreateContact(context.Background(), companyID, CreateContactRequest{
			Name:           "Acme Ltd",
			Type:           "customer",
			Phone:          "555-0100",
			Email:          "billing@acme.example",
			OpeningBalance: decimal.NewFromInt(-200),
		})
		require.NoError(t, err)
		assert.Equal(t, "CUSTOMER", resp.Type)
		assert.True(t, resp.CurrentBalance.Equal(decimal.NewFromInt(-200)))
		assert.Len(t, repo.contacts, 1)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := svc.CreateContact(context.Background(), companyID, CreateContactRequest{
			Name: "Acme Ltd",
			Type: "partner",
		})
		require.Error(t, err)
	})
}

func TestListContacts(t *testing.T) {
	svc, _, _ := newTestService()
	companyID := uuid.New()

	for _, name := range []string{"Acme Ltd", "Globex"} {
		_, err := svc.CreateContact(context.Background(), companyID, CreateContactRequest{
			Name: name,
			Type: "both",
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateContact(context.Background(), uuid.New(), CreateContactRequest{
		Name: "Other Company Contact",
		Type: "both",
	})
	require.NoError(t, err)

	contacts, total, err := svc.ListContacts(context.Background(), companyID, shared.Filter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, contacts, 2)
}
