package books

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbooks/backend/internal/domain/shared/valueobject"
)

func money(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(s, valueobject.USD)
	require.NoError(t, err)
	return m
}

func TestNewDocument(t *testing.T) {
	companyID := uuid.New()
	bankID := uuid.New()
	contactID := uuid.New()

	t.Run("creates pending contact document", func(t *testing.T) {
		d, err := NewDocument(companyID, KindSale, "INV-001", nil, &contactID, money(t, "500"), DocumentStatusPending, time.Now())
		require.NoError(t, err)
		assert.Equal(t, DocumentStatusPending, d.Status)
		assert.True(t, d.PaidAmount.IsZero())
		assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(500)))
		require.NoError(t, d.CheckBalance())
	})

	t.Run("creates paid bank document", func(t *testing.T) {
		d, err := NewDocument(companyID, KindExpense, "EXP-001", &bankID, nil, money(t, "120.50"), DocumentStatusPaid, time.Now())
		require.NoError(t, err)
		assert.Equal(t, DocumentStatusPaid, d.Status)
		assert.True(t, d.PaidAmount.Equal(d.Amount))
		assert.True(t, d.RemainingAmount.IsZero())
	})

	t.Run("requires a counterparty", func(t *testing.T) {
		_, err := NewDocument(companyID, KindSale, "INV-002", nil, nil, money(t, "10"), DocumentStatusPending, time.Now())
		require.Error(t, err)
	})

	t.Run("bank-only document must be paid", func(t *testing.T) {
		_, err := NewDocument(companyID, KindExpense, "EXP-002", &bankID, nil, money(t, "10"), DocumentStatusPending, time.Now())
		require.Error(t, err)
	})

	t.Run("contact-only document cannot be created paid", func(t *testing.T) {
		_, err := NewDocument(companyID, KindSale, "INV-003", nil, &contactID, money(t, "10"), DocumentStatusPaid, time.Now())
		require.Error(t, err)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewDocument(companyID, KindSale, "INV-004", nil, &contactID, money(t, "-5"), DocumentStatusPending, time.Now())
		require.Error(t, err)
	})

	t.Run("zero-amount document stays pending", func(t *testing.T) {
		d, err := NewDocument(companyID, KindIncome, "INC-001", nil, &contactID, money(t, "0"), DocumentStatusPending, time.Now())
		require.NoError(t, err)
		assert.Equal(t, DocumentStatusPending, d.Status)
	})
}

func TestDocumentApplyAndReverseAllocation(t *testing.T) {
	companyID := uuid.New()
	bankID := uuid.New()
	contactID := uuid.New()

	d, err := NewDocument(companyID, KindSale, "INV-010", &bankID, &contactID, money(t, "1000"), DocumentStatusPending, time.Now())
	require.NoError(t, err)

	require.NoError(t, d.ApplyAllocation(decimal.NewFromInt(400)))
	assert.Equal(t, DocumentStatusPending, d.Status)
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(600)))

	require.NoError(t, d.ApplyAllocation(decimal.NewFromInt(600)))
	assert.Equal(t, DocumentStatusPaid, d.Status)
	require.NoError(t, d.CheckBalance())

	t.Run("rejects allocation beyond remaining", func(t *testing.T) {
		err := d.ApplyAllocation(decimal.NewFromInt(1))
		require.Error(t, err)
	})

	t.Run("reversal restores pending", func(t *testing.T) {
		d.ReverseAllocation(decimal.NewFromInt(600))
		assert.Equal(t, DocumentStatusPending, d.Status)
		assert.True(t, d.PaidAmount.Equal(decimal.NewFromInt(400)))
		require.NoError(t, d.CheckBalance())
	})

	t.Run("reversal floors paid amount at zero", func(t *testing.T) {
		d.ReverseAllocation(decimal.NewFromInt(9999))
		assert.True(t, d.PaidAmount.IsZero())
		assert.True(t, d.RemainingAmount.Equal(d.Amount))
	})
}

func TestDocumentReprice(t *testing.T) {
	companyID := uuid.New()
	contactID := uuid.New()

	d, err := NewDocument(companyID, KindPurchase, "PUR-001", nil, &contactID, money(t, "300"), DocumentStatusPending, time.Now())
	require.NoError(t, err)
	require.NoError(t, d.ApplyAllocation(decimal.NewFromInt(100)))

	t.Run("raising the amount keeps paid portion", func(t *testing.T) {
		require.NoError(t, d.Reprice(decimal.NewFromInt(500)))
		assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(400)))
		assert.Equal(t, DocumentStatusPending, d.Status)
	})

	t.Run("lowering to the paid amount settles the document", func(t *testing.T) {
		require.NoError(t, d.Reprice(decimal.NewFromInt(100)))
		assert.True(t, d.RemainingAmount.IsZero())
		assert.Equal(t, DocumentStatusPaid, d.Status)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		require.Error(t, d.Reprice(decimal.NewFromInt(-1)))
	})
}

func TestDocumentDirectBankPaid(t *testing.T) {
	companyID := uuid.New()
	bankID := uuid.New()
	contactID := uuid.New()

	t.Run("no bank account means no direct portion", func(t *testing.T) {
		d, err := NewDocument(companyID, KindSale, "INV-020", nil, &contactID, money(t, "100"), DocumentStatusPending, time.Now())
		require.NoError(t, err)
		assert.True(t, d.DirectBankPaid(decimal.Zero).IsZero())
	})

	t.Run("paid beyond allocations is the direct portion", func(t *testing.T) {
		d, err := NewDocument(companyID, KindExpense, "EXP-020", &bankID, &contactID, money(t, "100"), DocumentStatusPending, time.Now())
		require.NoError(t, err)
		require.NoError(t, d.ApplyAllocation(decimal.NewFromInt(100)))
		// 30 of the paid amount came through allocations, 70 directly
		assert.True(t, d.DirectBankPaid(decimal.NewFromInt(30)).Equal(decimal.NewFromInt(70)))
	})

	t.Run("allocations covering everything leave no direct portion", func(t *testing.T) {
		d, err := NewDocument(companyID, KindExpense, "EXP-021", &bankID, &contactID, money(t, "100"), DocumentStatusPending, time.Now())
		require.NoError(t, err)
		require.NoError(t, d.ApplyAllocation(decimal.NewFromInt(100)))
		assert.True(t, d.DirectBankPaid(decimal.NewFromInt(100)).IsZero())
		assert.True(t, d.DirectBankPaid(decimal.NewFromInt(150)).IsZero())
	})
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, DocumentStatusPaid, DeriveStatus(decimal.NewFromInt(100), decimal.Zero))
	assert.Equal(t, DocumentStatusPending, DeriveStatus(decimal.NewFromInt(50), decimal.NewFromInt(50)))
	assert.Equal(t, DocumentStatusPending, DeriveStatus(decimal.Zero, decimal.Zero))
}
