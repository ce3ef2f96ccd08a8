package books

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	companyID := uuid.New()
	contactID := uuid.New()
	bankID := uuid.New()

	t.Run("creates receipt with bank leg", func(t *testing.T) {
		p, err := NewPayment(companyID, "RCV-001", contactID, &bankID, money(t, "750"), PaymentTypeReceipt, time.Now())
		require.NoError(t, err)
		assert.True(t, p.HasBankLeg())
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(750)))
	})

	t.Run("creates payment without bank leg", func(t *testing.T) {
		p, err := NewPayment(companyID, "PAY-001", contactID, nil, money(t, "100"), PaymentTypePayment, time.Now())
		require.NoError(t, err)
		assert.False(t, p.HasBankLeg())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment(companyID, "PAY-002", contactID, nil, money(t, "0"), PaymentTypePayment, time.Now())
		require.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewPayment(companyID, "PAY-003", contactID, nil, money(t, "10"), PaymentType("TRANSFER"), time.Now())
		require.Error(t, err)
	})

	t.Run("requires contact", func(t *testing.T) {
		_, err := NewPayment(companyID, "PAY-004", uuid.Nil, nil, money(t, "10"), PaymentTypePayment, time.Now())
		require.Error(t, err)
	})
}

func TestPaymentReduce(t *testing.T) {
	p, err := NewPayment(uuid.New(), "PAY-010", uuid.New(), nil, money(t, "200"), PaymentTypePayment, time.Now())
	require.NoError(t, err)
	version := p.Version

	p.Reduce(decimal.NewFromInt(80))
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, version+1, p.Version)

	// floored at zero, never negative
	p.Reduce(decimal.NewFromInt(500))
	assert.True(t, p.Amount.IsZero())
}
