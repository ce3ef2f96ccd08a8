package books

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentAllocation(t *testing.T) {
	companyID := uuid.New()
	paymentID := uuid.New()
	documentID := uuid.New()

	t.Run("creates allocation", func(t *testing.T) {
		a, err := NewPaymentAllocation(companyID, paymentID, KindSale, documentID, money(t, "45.25"))
		require.NoError(t, err)
		assert.Equal(t, paymentID, a.PaymentID)
		assert.Equal(t, KindSale, a.DocumentKind)
		assert.Equal(t, documentID, a.DocumentID)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := NewPaymentAllocation(companyID, paymentID, KindSale, documentID, money(t, "0"))
		require.Error(t, err)
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		_, err := NewPaymentAllocation(companyID, paymentID, DocumentKind("VOUCHER"), documentID, money(t, "10"))
		require.Error(t, err)
	})
}
