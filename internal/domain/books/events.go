package books

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// Event types for the books context
const (
	EventTypeDocumentCreated    = "books.document.created"
	EventTypeDocumentRepriced   = "books.document.repriced"
	EventTypeDocumentDeleted    = "books.document.deleted"
	EventTypePaymentCreated     = "books.payment.created"
	EventTypePaymentDeleted     = "books.payment.deleted"
	EventTypeAllocationReversed = "books.allocation.reversed"
)

// DocumentCreatedEvent is raised when a document is recorded
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	Kind           DocumentKind    `json:"kind"`
	DocumentNumber string          `json:"document_number"`
	Amount         decimal.Decimal `json:"amount"`
	Status         DocumentStatus  `json:"status"`
}

// NewDocumentCreatedEvent creates a new document created event
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, "Document", d.ID, d.CompanyID),
		Kind:            d.Kind,
		DocumentNumber:  d.DocumentNumber,
		Amount:          d.Amount,
		Status:          d.Status,
	}
}

// DocumentRepricedEvent is raised when a document's amount changes
type DocumentRepricedEvent struct {
	shared.BaseDomainEvent
	Kind      DocumentKind    `json:"kind"`
	OldAmount decimal.Decimal `json:"old_amount"`
	NewAmount decimal.Decimal `json:"new_amount"`
}

// NewDocumentRepricedEvent creates a new document repriced event
func NewDocumentRepricedEvent(d *Document, oldAmount decimal.Decimal) *DocumentRepricedEvent {
	return &DocumentRepricedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentRepriced, "Document", d.ID, d.CompanyID),
		Kind:            d.Kind,
		OldAmount:       oldAmount,
		NewAmount:       d.Amount,
	}
}

// DocumentDeletedEvent is raised when a document is soft-deleted
type DocumentDeletedEvent struct {
	shared.BaseDomainEvent
	Kind      DocumentKind `json:"kind"`
	DeletedBy uuid.UUID    `json:"deleted_by"`
}

// NewDocumentDeletedEvent creates a new document deleted event
func NewDocumentDeletedEvent(d *Document, deletedBy uuid.UUID) *DocumentDeletedEvent {
	return &DocumentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeleted, "Document", d.ID, d.CompanyID),
		Kind:            d.Kind,
		DeletedBy:       deletedBy,
	}
}

// PaymentCreatedEvent is raised when a payment is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	Type          PaymentType     `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewPaymentCreatedEvent creates a new payment created event
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, "Payment", p.ID, p.CompanyID),
		PaymentNumber:   p.PaymentNumber,
		Type:            p.Type,
		Amount:          p.Amount,
	}
}

// AllocationReversedEvent is raised when a payment allocation is unwound
type AllocationReversedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	DocumentKind   DocumentKind    `json:"document_kind"`
	DocumentID     uuid.UUID       `json:"document_id"`
	ReversedAmount decimal.Decimal `json:"reversed_amount"`
}

// NewAllocationReversedEvent creates a new allocation reversed event
func NewAllocationReversedEvent(companyID uuid.UUID, a *PaymentAllocation) *AllocationReversedEvent {
	return &AllocationReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationReversed, "PaymentAllocation", a.ID, companyID),
		PaymentID:       a.PaymentID,
		DocumentKind:    a.DocumentKind,
		DocumentID:      a.DocumentID,
		ReversedAmount:  a.PaidAmount,
	}
}
