package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	booksapp "github.com/smallbooks/backend/internal/application/books"
	ledgerapp "github.com/smallbooks/backend/internal/application/ledger"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/smallbooks/backend/internal/infrastructure/persistence"
)

// fixture wires the application services against the test database. Each
// scenario uses its own company ID so scenarios cannot see each other's rows.
type fixture struct {
	engine    *booksapp.Engine
	ledger    *ledgerapp.Service
	companyID uuid.UUID
	userID    uuid.UUID
	bankID    uuid.UUID
	contactID uuid.UUID
}

func newFixture(t *testing.T, tdb *TestDB, bankOpening decimal.Decimal) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		engine:    booksapp.NewEngine(persistence.NewGormTransactionManager(tdb.DB)),
		ledger:    ledgerapp.NewService(persistence.NewGormBankAccountRepository(tdb.DB), persistence.NewGormContactRepository(tdb.DB)),
		companyID: uuid.New(),
		userID:    uuid.New(),
	}

	bank, err := f.ledger.CreateBankAccount(ctx, f.companyID, ledgerapp.CreateBankAccountRequest{
		Name:           "Operating Account",
		AccountNumber:  "100-200-300",
		OpeningBalance: bankOpening,
	})
	require.NoError(t, err)
	f.bankID = bank.ID

	contact, err := f.ledger.CreateContact(ctx, f.companyID, ledgerapp.CreateContactRequest{
		Name: "Acme Ltd",
		Type: "both",
	})
	require.NoError(t, err)
	f.contactID = contact.ID

	return f
}

func (f *fixture) bankBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	bank, err := f.ledger.GetBankAccount(context.Background(), f.companyID, f.bankID)
	require.NoError(t, err)
	return bank.CurrentBalance
}

func (f *fixture) contactBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	contact, err := f.ledger.GetContact(context.Background(), f.companyID, f.contactID)
	require.NoError(t, err)
	return contact.CurrentBalance
}

func (f *fixture) createSale(t *testing.T, number string, amount int64) uuid.UUID {
	t.Helper()
	doc, err := f.engine.CreateDocument(context.Background(), f.companyID, booksapp.CreateDocumentRequest{
		Kind:           "sale",
		DocumentNumber: number,
		ContactID:      &f.contactID,
		Amount:         decimal.NewFromInt(amount),
		Status:         "pending",
		IssuedAt:       time.Now(),
	})
	require.NoError(t, err)
	return doc.ID
}

func (f *fixture) receiveAgainst(t *testing.T, number string, docID uuid.UUID, amount int64) uuid.UUID {
	t.Helper()
	payment, err := f.engine.CreatePayment(context.Background(), f.companyID, booksapp.CreatePaymentRequest{
		PaymentNumber: number,
		ContactID:     f.contactID,
		BankAccountID: &f.bankID,
		Amount:        decimal.NewFromInt(amount),
		Type:          "receipt",
		PaidAt:        time.Now(),
		Allocations: []booksapp.PaymentAllocationRequest{
			{DocumentKind: "sale", DocumentID: docID, PaidAmount: decimal.NewFromInt(amount)},
		},
	})
	require.NoError(t, err)
	return payment.ID
}

func assertAmount(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.NewFromInt(expected)),
		"expected %d, got %s", expected, actual)
}

func TestReconciliationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	tdb := NewTestDB(t)
	ctx := context.Background()

	t.Run("allocated receipt settles the document and moves both ledgers", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.NewFromInt(1000))
		docID := f.createSale(t, "INV-001", 1000)
		paymentID := f.receiveAgainst(t, "RCPT-001", docID, 400)

		doc, err := f.engine.GetDocument(ctx, f.companyID, "sale", docID)
		require.NoError(t, err)
		assertAmount(t, 400, doc.PaidAmount)
		assertAmount(t, 600, doc.RemainingAmount)
		assert.Equal(t, "PENDING", doc.Status)

		payment, err := f.engine.GetPayment(ctx, f.companyID, paymentID)
		require.NoError(t, err)
		require.Len(t, payment.Allocations, 1)
		assertAmount(t, 400, payment.Allocations[0].PaidAmount)

		assertAmount(t, 1400, f.bankBalance(t))
		assertAmount(t, -400, f.contactBalance(t))
	})

	t.Run("full settlement marks the document paid", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 250)
		f.receiveAgainst(t, "RCPT-001", docID, 250)

		doc, err := f.engine.GetDocument(ctx, f.companyID, "sale", docID)
		require.NoError(t, err)
		assert.Equal(t, "PAID", doc.Status)
		assertAmount(t, 0, doc.RemainingAmount)
	})

	t.Run("allocation above the outstanding amount is rejected", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 100)

		_, err := f.engine.CreatePayment(ctx, f.companyID, booksapp.CreatePaymentRequest{
			PaymentNumber: "RCPT-001",
			ContactID:     f.contactID,
			Amount:        decimal.NewFromInt(150),
			Type:          "receipt",
			PaidAt:        time.Now(),
			Allocations: []booksapp.PaymentAllocationRequest{
				{DocumentKind: "sale", DocumentID: docID, PaidAmount: decimal.NewFromInt(150)},
			},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_OUTSTANDING", domainErr.Code)

		// the rejected payment must leave no trace
		doc, err := f.engine.GetDocument(ctx, f.companyID, "sale", docID)
		require.NoError(t, err)
		assertAmount(t, 0, doc.PaidAmount)
		assertAmount(t, 0, f.contactBalance(t))
	})

	t.Run("amount change with allocations requires an adjustment choice", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 1000)
		f.receiveAgainst(t, "RCPT-001", docID, 400)

		newAmount := decimal.NewFromInt(500)
		_, err := f.engine.UpdateDocument(ctx, f.companyID, "sale", docID, f.userID, booksapp.UpdateDocumentRequest{
			Amount: &newAmount,
		})
		require.Error(t, err)

		conflict, ok := booksapp.AsConflict(err)
		require.True(t, ok, "expected a conflict error, got %v", err)
		assertAmount(t, 1000, conflict.CurrentAmount)
		assertAmount(t, 500, conflict.RequestedAmount)
		assertAmount(t, 400, conflict.AllocatedTotal)
		require.Len(t, conflict.Allocations, 1)
		assert.Equal(t, "RCPT-001", conflict.Allocations[0].PaymentNumber)

		// the aborted update must leave the document untouched
		doc, err := f.engine.GetDocument(ctx, f.companyID, "sale", docID)
		require.NoError(t, err)
		assertAmount(t, 1000, doc.Amount)
		assertAmount(t, 400, doc.PaidAmount)
	})

	t.Run("scaling allocations moves payments and both ledgers proportionally", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 1000)
		paymentID := f.receiveAgainst(t, "RCPT-001", docID, 400)

		newAmount := decimal.NewFromInt(500)
		choice := "scale_allocations"
		resp, err := f.engine.UpdateDocument(ctx, f.companyID, "sale", docID, f.userID, booksapp.UpdateDocumentRequest{
			Amount:           &newAmount,
			AdjustmentChoice: &choice,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Adjustment)
		assert.True(t, resp.Adjustment.PaymentAdjustmentMade)

		assertAmount(t, 500, resp.Document.Amount)
		assertAmount(t, 200, resp.Document.PaidAmount)
		assertAmount(t, 300, resp.Document.RemainingAmount)

		payment, err := f.engine.GetPayment(ctx, f.companyID, paymentID)
		require.NoError(t, err)
		assertAmount(t, 200, payment.Amount)
		require.Len(t, payment.Allocations, 1)
		assertAmount(t, 200, payment.Allocations[0].PaidAmount)

		assertAmount(t, 200, f.bankBalance(t))
		assertAmount(t, -200, f.contactBalance(t))
	})

	t.Run("keep paid reprices the document without touching payments", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 1000)
		paymentID := f.receiveAgainst(t, "RCPT-001", docID, 400)

		newAmount := decimal.NewFromInt(1200)
		choice := "keep_paid"
		resp, err := f.engine.UpdateDocument(ctx, f.companyID, "sale", docID, f.userID, booksapp.UpdateDocumentRequest{
			Amount:           &newAmount,
			AdjustmentChoice: &choice,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Adjustment)
		assert.False(t, resp.Adjustment.PaymentAdjustmentMade)

		assertAmount(t, 400, resp.Document.PaidAmount)
		assertAmount(t, 800, resp.Document.RemainingAmount)

		payment, err := f.engine.GetPayment(ctx, f.companyID, paymentID)
		require.NoError(t, err)
		assertAmount(t, 400, payment.Amount)
		assertAmount(t, 400, f.bankBalance(t))
	})

	t.Run("keep paid below the paid amount is rejected", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 1000)
		f.receiveAgainst(t, "RCPT-001", docID, 400)

		newAmount := decimal.NewFromInt(300)
		choice := "keep_paid"
		_, err := f.engine.UpdateDocument(ctx, f.companyID, "sale", docID, f.userID, booksapp.UpdateDocumentRequest{
			Amount:           &newAmount,
			AdjustmentChoice: &choice,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("deleting a payment restores documents and both ledgers", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.NewFromInt(100))
		docID := f.createSale(t, "INV-001", 1000)
		paymentID := f.receiveAgainst(t, "RCPT-001", docID, 400)

		require.NoError(t, f.engine.DeletePayment(ctx, f.companyID, paymentID, f.userID))

		doc, err := f.engine.GetDocument(ctx, f.companyID, "sale", docID)
		require.NoError(t, err)
		assertAmount(t, 0, doc.PaidAmount)
		assertAmount(t, 1000, doc.RemainingAmount)
		assert.Equal(t, "PENDING", doc.Status)

		assertAmount(t, 100, f.bankBalance(t))
		assertAmount(t, 0, f.contactBalance(t))

		_, err = f.engine.GetPayment(ctx, f.companyID, paymentID)
		require.Error(t, err)
	})

	t.Run("deleting an allocated document retires the fully allocated payment", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 1000)
		paymentID := f.receiveAgainst(t, "RCPT-001", docID, 400)

		_, err := f.engine.DeleteDocument(ctx, f.companyID, "sale", docID, f.userID)
		require.NoError(t, err)

		_, err = f.engine.GetDocument(ctx, f.companyID, "sale", docID)
		require.Error(t, err)

		// the payment was settling only this document, so it is retired too
		_, err = f.engine.GetPayment(ctx, f.companyID, paymentID)
		require.Error(t, err)

		assertAmount(t, 0, f.bankBalance(t))
		assertAmount(t, 0, f.contactBalance(t))
	})

	t.Run("deleting a bank-paid document reverses only the direct bank effect", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.NewFromInt(1000))

		doc, err := f.engine.CreateDocument(ctx, f.companyID, booksapp.CreateDocumentRequest{
			Kind:           "expense",
			DocumentNumber: "EXP-001",
			BankAccountID:  &f.bankID,
			Amount:         decimal.NewFromInt(250),
			Status:         "paid",
			IssuedAt:       time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, "PAID", doc.Status)
		assertAmount(t, 750, f.bankBalance(t))

		_, err = f.engine.DeleteDocument(ctx, f.companyID, "expense", doc.ID, f.userID)
		require.NoError(t, err)
		assertAmount(t, 1000, f.bankBalance(t))
	})

	t.Run("documents are invisible across companies", func(t *testing.T) {
		f := newFixture(t, tdb, decimal.Zero)
		other := newFixture(t, tdb, decimal.Zero)
		docID := f.createSale(t, "INV-001", 100)

		_, err := other.engine.GetDocument(ctx, other.companyID, "sale", docID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}
