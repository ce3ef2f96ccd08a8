package books

import (
	"context"

	"github.com/google/uuid"

	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// fakeStore is an in-memory stand-in for the relational store. The fake
// transaction manager snapshots it before each unit of work and restores the
// snapshot on error, mirroring rollback semantics.
type fakeStore struct {
	documents   map[uuid.UUID]books.Document
	payments    map[uuid.UUID]books.Payment
	allocations map[uuid.UUID]books.PaymentAllocation
	banks       map[uuid.UUID]ledger.BankAccount
	contacts    map[uuid.UUID]ledger.Contact

	deletedDocuments map[uuid.UUID]uuid.UUID // document id -> deleted by
	deletedPayments  map[uuid.UUID]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		documents:        make(map[uuid.UUID]books.Document),
		payments:         make(map[uuid.UUID]books.Payment),
		allocations:      make(map[uuid.UUID]books.PaymentAllocation),
		banks:            make(map[uuid.UUID]ledger.BankAccount),
		contacts:         make(map[uuid.UUID]ledger.Contact),
		deletedDocuments: make(map[uuid.UUID]uuid.UUID),
		deletedPayments:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.documents {
		c.documents[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.allocations {
		c.allocations[k] = v
	}
	for k, v := range s.banks {
		c.banks[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	for k, v := range s.deletedDocuments {
		c.deletedDocuments[k] = v
	}
	for k, v := range s.deletedPayments {
		c.deletedPayments[k] = v
	}
	return c
}

type fakeTx struct {
	store *fakeStore
}

func (f *fakeTx) Do(_ context.Context, fn func(ctx context.Context, uow books.UnitOfWork) error) error {
	snapshot := f.store.clone()
	if err := fn(context.Background(), &fakeUnitOfWork{store: f.store}); err != nil {
		*f.store = *snapshot
		return err
	}
	return nil
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Documents() books.DocumentRepository     { return &fakeDocumentRepo{u.store} }
func (u *fakeUnitOfWork) Payments() books.PaymentRepository       { return &fakePaymentRepo{u.store} }
func (u *fakeUnitOfWork) Allocations() books.AllocationRepository { return &fakeAllocationRepo{u.store} }
func (u *fakeUnitOfWork) BankAccounts() ledger.BankAccountRepository {
	return &fakeBankAccountRepo{u.store}
}
func (u *fakeUnitOfWork) Contacts() ledger.ContactRepository { return &fakeContactRepo{u.store} }

type fakeDocumentRepo struct{ s *fakeStore }

func (r *fakeDocumentRepo) FindByID(_ context.Context, companyID uuid.UUID, kind books.DocumentKind, id uuid.UUID) (*books.Document, error) {
	d, ok := r.s.documents[id]
	if !ok || d.CompanyID != companyID || d.Kind != kind {
		return nil, nil
	}
	return &d, nil
}

func (r *fakeDocumentRepo) FindByIDForUpdate(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, id uuid.UUID) (*books.Document, error) {
	return r.FindByID(ctx, companyID, kind, id)
}

func (r *fakeDocumentRepo) FindByCompany(_ context.Context, companyID uuid.UUID, kind books.DocumentKind, _ shared.Filter) ([]books.Document, int64, error) {
	var out []books.Document
	for _, d := range r.s.documents {
		if d.CompanyID == companyID && d.Kind == kind {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeDocumentRepo) Save(_ context.Context, document *books.Document) error {
	r.s.documents[document.ID] = *document
	return nil
}

func (r *fakeDocumentRepo) SoftDelete(_ context.Context, document *books.Document, deletedBy uuid.UUID) error {
	delete(r.s.documents, document.ID)
	r.s.deletedDocuments[document.ID] = deletedBy
	return nil
}

type fakePaymentRepo struct{ s *fakeStore }

func (r *fakePaymentRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*books.Payment, error) {
	p, ok := r.s.payments[id]
	if !ok || p.CompanyID != companyID {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePaymentRepo) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*books.Payment, error) {
	return r.FindByID(ctx, companyID, id)
}

func (r *fakePaymentRepo) FindByCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]books.Payment, int64, error) {
	var out []books.Payment
	for _, p := range r.s.payments {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) Save(_ context.Context, payment *books.Payment) error {
	r.s.payments[payment.ID] = *payment
	return nil
}

func (r *fakePaymentRepo) SoftDelete(_ context.Context, payment *books.Payment, deletedBy uuid.UUID) error {
	delete(r.s.payments, payment.ID)
	r.s.deletedPayments[payment.ID] = deletedBy
	return nil
}

type fakeAllocationRepo struct{ s *fakeStore }

func (r *fakeAllocationRepo) FindByPayment(_ context.Context, companyID, paymentID uuid.UUID) ([]books.PaymentAllocation, error) {
	var out []books.PaymentAllocation
	for _, a := range r.s.allocations {
		if a.CompanyID == companyID && a.PaymentID == paymentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) FindByDocument(_ context.Context, companyID uuid.UUID, kind books.DocumentKind, documentID uuid.UUID) ([]books.PaymentAllocation, error) {
	var out []books.PaymentAllocation
	for _, a := range r.s.allocations {
		if a.CompanyID == companyID && a.DocumentKind == kind && a.DocumentID == documentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) ExistsForDocument(ctx context.Context, companyID uuid.UUID, kind books.DocumentKind, documentID uuid.UUID) (bool, error) {
	found, err := r.FindByDocument(ctx, companyID, kind, documentID)
	return len(found) > 0, err
}

func (r *fakeAllocationRepo) Save(_ context.Context, allocation *books.PaymentAllocation) error {
	r.s.allocations[allocation.ID] = *allocation
	return nil
}

func (r *fakeAllocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.s.allocations, id)
	return nil
}

type fakeBankAccountRepo struct{ s *fakeStore }

func (r *fakeBankAccountRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	b, ok := r.s.banks[id]
	if !ok || b.CompanyID != companyID {
		return nil, nil
	}
	return &b, nil
}

func (r *fakeBankAccountRepo) FindByIDForUpdate(ctx context.Context, companyID, id uuid.UUID) (*ledger.BankAccount, error) {
	return r.FindByIDForCompany(ctx, companyID, id)
}

func (r *fakeBankAccountRepo) ExistsForCompany(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	b, err := r.FindByIDForCompany(ctx, companyID, id)
	return b != nil, err
}

func (r *fakeBankAccountRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]ledger.BankAccount, int64, error) {
	var out []ledger.BankAccount
	for _, b := range r.s.banks {
		if b.CompanyID == companyID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBankAccountRepo) Save(_ context.Context, account *ledger.BankAccount) error {
	r.s.banks[account.ID] = *account
	return nil
}

type fakeContactRepo struct{ s *fakeStore }

func (r *fakeContactRepo) FindByIDForCompany(_ context.Context, companyID, id uuid.UUID) (*ledger.Contact, error) {
	c, ok := r.s.contacts[id]
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
	for _, c := range r.s.contacts {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeContactRepo) Save(_ context.Context, contact *ledger.Contact) error {
	r.s.contacts[contact.ID] = *contact
	return nil
}
