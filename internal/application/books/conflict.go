package books

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smallbooks/backend/internal/domain/books"
)

// AllocationSummary describes one existing allocation in a conflict payload
type AllocationSummary struct {
	AllocationID  uuid.UUID         `json:"allocation_id"`
	PaymentID     uuid.UUID         `json:"payment_id"`
	PaymentNumber string            `json:"payment_number"`
	PaymentType   books.PaymentType `json:"payment_type"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
}

// ConflictError reports that a requested amount change is incompatible with
// the payments already allocated against the document. It is an expected
// outcome of update, not a failure: the caller re-prompts the user with the
// summary and retries with an adjustment choice.
type ConflictError struct {
	DocumentID      uuid.UUID           `json:"document_id"`
	DocumentKind    books.DocumentKind  `json:"document_kind"`
	CurrentAmount   decimal.Decimal     `json:"current_amount"`
	RequestedAmount decimal.Decimal     `json:"requested_amount"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount"`
	AllocatedTotal  decimal.Decimal     `json:"allocated_total"`
	Allocations     []AllocationSummary `json:"allocations"`
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"document %s/%s has %d payment allocation(s) totalling %s; amount change from %s to %s requires an adjustment choice",
		e.DocumentKind, e.DocumentID, len(e.Allocations), e.AllocatedTotal, e.CurrentAmount, e.RequestedAmount,
	)
}

// AsConflict extracts a ConflictError from an error chain
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
