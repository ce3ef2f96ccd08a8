package books

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/smallbooks/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// PaymentType represents the direction of a payment
type PaymentType string

const (
	// PaymentTypePayment is money going out to a contact
	PaymentTypePayment PaymentType = "PAYMENT"
	// PaymentTypeReceipt is money coming in from a contact
	PaymentTypeReceipt PaymentType = "RECEIPT"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	return t == PaymentTypePayment || t == PaymentTypeReceipt
}

// String returns the string representation of the payment type
func (t PaymentType) String() string {
	return string(t)
}

// Payment represents a discrete money movement associated with a contact and
// optionally a bank account. Its amount may later shrink when one of its
// allocations is reversed; it is soft-deleted when its last allocation goes.
type Payment struct {
	shared.CompanyAggregateRoot
	PaymentNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_company_number,priority:2"`
	ContactID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BankAccountID *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Type          PaymentType     `gorm:"type:varchar(20);not null"`
	PaidAt        time.Time       `gorm:"not null"`
	Remark        string          `gorm:"type:varchar(500)"`
	DeletedAt     gorm.DeletedAt  `gorm:"index"`
	DeletedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment
func NewPayment(
	companyID uuid.UUID,
	paymentNumber string,
	contactID uuid.UUID,
	bankAccountID *uuid.UUID,
	amount valueobject.Money,
	paymentType PaymentType,
	paidAt time.Time,
) (*Payment, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("Company ID cannot be empty")
	}
	if paymentNumber == "" {
		return nil, shared.NewValidationError("Payment number cannot be empty")
	}
	if len(paymentNumber) > 50 {
		return nil, shared.NewValidationError("Payment number cannot exceed 50 characters")
	}
	if contactID == uuid.Nil {
		return nil, shared.NewValidationError("Contact ID cannot be empty")
	}
	if bankAccountID != nil && *bankAccountID == uuid.Nil {
		return nil, shared.NewValidationError("Bank account ID cannot be the nil UUID")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError("Payment type is not valid")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		PaymentNumber:        paymentNumber,
		ContactID:            contactID,
		BankAccountID:        bankAccountID,
		Amount:               amount.Amount(),
		Type:                 paymentType,
		PaidAt:               paidAt,
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// Reduce shrinks the payment amount when one of its allocations is removed.
// The result is floored at zero; the reversal path never grows a payment.
func (p *Payment) Reduce(by decimal.Decimal) {
	p.AdjustAmount(by.Neg())
}

// AdjustAmount moves the payment amount by a signed delta, floored at zero.
// The allocation-adjustment path uses this to keep the payment equal to the
// sum of its allocations after they are rescaled.
func (p *Payment) AdjustAmount(delta decimal.Decimal) {
	p.Amount = p.Amount.Add(delta)
	if p.Amount.IsNegative() {
		p.Amount = decimal.Zero
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// HasBankLeg returns true when the payment moves cash at a bank account
func (p *Payment) HasBankLeg() bool {
	return p.BankAccountID != nil
}
