package books

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/smallbooks/backend/internal/domain/shared/valueobject"
)

// PaymentAllocation links a payment to one document it settles, for the
// stated portion of the payment. The document side is the (kind, id) pair;
// document IDs are only unique within their kind.
type PaymentAllocation struct {
	shared.BaseEntity
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentKind DocumentKind    `gorm:"type:varchar(20);not null;index:idx_allocation_document,priority:1"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_allocation_document,priority:2"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}

// NewPaymentAllocation creates a new allocation of a payment against a document
func NewPaymentAllocation(
	companyID uuid.UUID,
	paymentID uuid.UUID,
	documentKind DocumentKind,
	documentID uuid.UUID,
	paidAmount valueobject.Money,
) (*PaymentAllocation, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("Company ID cannot be empty")
	}
	if paymentID == uuid.Nil {
		return nil, shared.NewValidationError("Payment ID cannot be empty")
	}
	if !documentKind.IsValid() {
		return nil, shared.NewValidationError("Document kind must be one of sale, purchase, expense, income")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewValidationError("Document ID cannot be empty")
	}
	if !paidAmount.IsPositive() {
		return nil, shared.NewValidationError("Allocation amount must be positive")
	}

	return &PaymentAllocation{
		BaseEntity:   shared.NewBaseEntity(),
		CompanyID:    companyID,
		PaymentID:    paymentID,
		DocumentKind: documentKind,
		DocumentID:   documentID,
		PaidAmount:   paidAmount.Amount(),
	}, nil
}
