package books

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentKind(t *testing.T) {
	t.Run("accepts lowercase", func(t *testing.T) {
		k, err := ParseDocumentKind("expense")
		require.NoError(t, err)
		assert.Equal(t, KindExpense, k)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := ParseDocumentKind("invoice")
		require.Error(t, err)
	})
}

func TestBankDelta(t *testing.T) {
	amount := decimal.NewFromInt(100)

	assert.True(t, KindSale.BankDelta(amount).Equal(amount))
	assert.True(t, KindIncome.BankDelta(amount).Equal(amount))
	assert.True(t, KindPurchase.BankDelta(amount).Equal(amount.Neg()))
	assert.True(t, KindExpense.BankDelta(amount).Equal(amount.Neg()))
}
