package books

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/smallbooks/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// DocumentStatus represents the settlement state of a document
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "PENDING"
	DocumentStatusPaid    DocumentStatus = "PAID"
)

// IsValid checks if the status is valid
func (s DocumentStatus) IsValid() bool {
	return s == DocumentStatusPending || s == DocumentStatusPaid
}

// String returns the string representation of the status
func (s DocumentStatus) String() string {
	return string(s)
}

// DeriveStatus computes the settlement status from the paid and remaining
// amounts. A document is paid only when nothing remains and something was
// actually paid; a zero-amount pending document stays pending.
func DeriveStatus(paid, remaining decimal.Decimal) DocumentStatus {
	if remaining.IsZero() && paid.IsPositive() {
		return DocumentStatusPaid
	}
	return DocumentStatusPending
}

// Document is any priced business event the company records: a sale, a
// purchase, an expense or an income entry. It references a bank account, a
// contact, or both, and tracks how much of its amount has been settled.
type Document struct {
	shared.CompanyAggregateRoot
	Kind            DocumentKind    `gorm:"type:varchar(20);not null;uniqueIndex:idx_document_company_kind_number,priority:2;index:idx_document_kind_id"`
	DocumentNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_document_company_kind_number,priority:3"`
	BankAccountID   *uuid.UUID      `gorm:"type:uuid;index"`
	ContactID       *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          DocumentStatus  `gorm:"type:varchar(20);not null;index"`
	IssuedAt        time.Time       `gorm:"not null"`
	Remark          string          `gorm:"type:varchar(500)"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"`
	DeletedBy       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates a new document. The counterparty rules are enforced
// here: at least one of bank account and contact is required, a bank-only
// document is settled at creation, and a contact-only document cannot be
// created already paid because there is no bank leg to move cash on.
func NewDocument(
	companyID uuid.UUID,
	kind DocumentKind,
	documentNumber string,
	bankAccountID *uuid.UUID,
	contactID *uuid.UUID,
	amount valueobject.Money,
	status DocumentStatus,
	issuedAt time.Time,
) (*Document, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewValidationError("Company ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Document kind must be one of sale, purchase, expense, income")
	}
	if documentNumber == "" {
		return nil, shared.NewValidationError("Document number cannot be empty")
	}
	if len(documentNumber) > 50 {
		return nil, shared.NewValidationError("Document number cannot exceed 50 characters")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Document amount cannot be negative")
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("Document status must be pending or paid")
	}
	if bankAccountID == nil && contactID == nil {
		return nil, shared.NewValidationError("Document requires a bank account, a contact, or both")
	}
	if bankAccountID != nil && *bankAccountID == uuid.Nil {
		return nil, shared.NewValidationError("Bank account ID cannot be the nil UUID")
	}
	if contactID != nil && *contactID == uuid.Nil {
		return nil, shared.NewValidationError("Contact ID cannot be the nil UUID")
	}
	if bankAccountID != nil && contactID == nil && status != DocumentStatusPaid {
		return nil, shared.NewValidationError("A bank-only document is settled immediately and must be paid")
	}
	if bankAccountID == nil && status == DocumentStatusPaid {
		return nil, shared.NewValidationError("A document without a bank account cannot be created as paid")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	d := &Document{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Kind:                 kind,
		DocumentNumber:       documentNumber,
		BankAccountID:        bankAccountID,
		ContactID:            contactID,
		Amount:               amount.Amount(),
		Status:               status,
		IssuedAt:             issuedAt,
	}

	if status == DocumentStatusPaid {
		d.PaidAmount = d.Amount
		d.RemainingAmount = decimal.Zero
	} else {
		d.PaidAmount = decimal.Zero
		d.RemainingAmount = d.Amount
	}
	// the derived status is authoritative, so a zero-amount document stays
	// pending even when declared paid
	d.Status = DeriveStatus(d.PaidAmount, d.RemainingAmount)

	d.AddDomainEvent(NewDocumentCreatedEvent(d))

	return d, nil
}

// ApplyAllocation records that part of the document's amount has been
// settled by a payment
func (d *Document) ApplyAllocation(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Allocation amount must be positive")
	}
	if amount.GreaterThan(d.RemainingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", "Allocation exceeds the document's remaining amount")
	}
	d.PaidAmount = d.PaidAmount.Add(amount)
	d.RemainingAmount = d.Amount.Sub(d.PaidAmount)
	d.Status = DeriveStatus(d.PaidAmount, d.RemainingAmount)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// ReverseAllocation unwinds a previously applied allocation. The paid amount
// is floored at zero so a reversal can never drive it negative.
func (d *Document) ReverseAllocation(amount decimal.Decimal) {
	d.PaidAmount = d.PaidAmount.Sub(amount)
	if d.PaidAmount.IsNegative() {
		d.PaidAmount = decimal.Zero
	}
	d.RemainingAmount = d.Amount.Sub(d.PaidAmount)
	d.Status = DeriveStatus(d.PaidAmount, d.RemainingAmount)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// Reprice changes the document amount and rederives the remaining amount and
// status against the already-paid portion. Callers are responsible for
// resolving any conflict with existing allocations before repricing.
func (d *Document) Reprice(newAmount decimal.Decimal) error {
	if newAmount.IsNegative() {
		return shared.NewValidationError("Document amount cannot be negative")
	}
	d.Amount = newAmount
	d.RemainingAmount = d.Amount.Sub(d.PaidAmount)
	if d.RemainingAmount.IsNegative() {
		d.RemainingAmount = decimal.Zero
	}
	d.Status = DeriveStatus(d.PaidAmount, d.RemainingAmount)
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// DirectBankPaid returns the portion of the paid amount that was settled
// directly at the bank rather than through payment allocations. It is the
// paid amount minus the allocated total, floored at zero.
func (d *Document) DirectBankPaid(allocatedTotal decimal.Decimal) decimal.Decimal {
	if d.BankAccountID == nil {
		return decimal.Zero
	}
	direct := d.PaidAmount.Sub(allocatedTotal)
	if direct.IsNegative() {
		return decimal.Zero
	}
	return direct
}

// CheckBalance verifies the per-document invariant paid + remaining = amount
func (d *Document) CheckBalance() error {
	if !d.PaidAmount.Add(d.RemainingAmount).Equal(d.Amount) {
		return shared.NewIntegrityError("Document paid and remaining amounts do not sum to its amount")
	}
	return nil
}
