package books

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// AdjustmentChoice selects how existing allocations are reconciled with a
// changed document amount
type AdjustmentChoice string

const (
	// AdjustmentScaleAllocations rescales every allocation proportionally to
	// the new amount and moves the owning payments and their bank/contact
	// balances by exactly the changed portion
	AdjustmentScaleAllocations AdjustmentChoice = "SCALE_ALLOCATIONS"
	// AdjustmentKeepPaid keeps the paid amount as-is and only recomputes the
	// remaining amount against the new document amount
	AdjustmentKeepPaid AdjustmentChoice = "KEEP_PAID"
)

// IsValid checks if the adjustment choice is valid
func (c AdjustmentChoice) IsValid() bool {
	return c == AdjustmentScaleAllocations || c == AdjustmentKeepPaid
}

// AdjustmentResult is the only channel reporting what the adjustment did
type AdjustmentResult struct {
	PaymentAdjustmentMade bool                      `json:"payment_adjustment_made"`
	Allocations           []books.PaymentAllocation `json:"allocations"`
	Status                books.DocumentStatus      `json:"status"`
}

// scale factors are applied at the storage precision of 4 decimal places
const amountScale = 4

// adjustAllocationsForAmountChange reconciles the document's existing
// allocations with a new amount under the caller's chosen policy, moving the
// owning payments and their ledger legs by exactly the changed portion. The
// document itself is repriced but not saved; the caller persists it.
func adjustAllocationsForAmountChange(
	ctx context.Context,
	uow books.UnitOfWork,
	companyID uuid.UUID,
	doc *books.Document,
	newAmount decimal.Decimal,
	choice AdjustmentChoice,
	actingUserID uuid.UUID,
) (*AdjustmentResult, error) {
	allocations, err := uow.Allocations().FindByDocument(ctx, companyID, doc.Kind, doc.ID)
	if err != nil {
		return nil, err
	}

	if choice == AdjustmentKeepPaid {
		if newAmount.LessThan(doc.PaidAmount) {
			return nil, shared.NewValidationError("New amount is below the paid amount; the allocations must be scaled instead")
		}
		if err := doc.Reprice(newAmount); err != nil {
			return nil, err
		}
		return &AdjustmentResult{
			PaymentAdjustmentMade: false,
			Allocations:           allocations,
			Status:                doc.Status,
		}, nil
	}

	oldAmount := doc.Amount
	if oldAmount.IsZero() {
		return nil, shared.NewValidationError("Cannot scale allocations of a zero-amount document")
	}
	factor := newAmount.Div(oldAmount)

	// rescale each allocation, carrying the rounding remainder on the last
	// one so the rescaled sum is exact
	oldTotal := decimal.Zero
	for _, a := range allocations {
		oldTotal = oldTotal.Add(a.PaidAmount)
	}
	targetTotal := oldTotal.Mul(factor).Round(amountScale)

	newPaid := make([]decimal.Decimal, len(allocations))
	assigned := decimal.Zero
	for i := range allocations {
		if i == len(allocations)-1 {
			newPaid[i] = targetTotal.Sub(assigned)
		} else {
			newPaid[i] = allocations[i].PaidAmount.Mul(factor).Round(amountScale)
		}
		if newPaid[i].IsNegative() {
			newPaid[i] = decimal.Zero
		}
		assigned = assigned.Add(newPaid[i])
	}

	// per-payment amount deltas implied by the rescaled allocations
	paymentDeltas := make(map[uuid.UUID]decimal.Decimal)
	survivors := make([]books.PaymentAllocation, 0, len(allocations))
	for i := range allocations {
		a := &allocations[i]
		delta := newPaid[i].Sub(a.PaidAmount)
		paymentDeltas[a.PaymentID] = paymentDeltas[a.PaymentID].Add(delta)

		if newPaid[i].IsZero() {
			if err := uow.Allocations().Delete(ctx, a.ID); err != nil {
				return nil, err
			}
			continue
		}
		a.PaidAmount = newPaid[i]
		if err := uow.Allocations().Save(ctx, a); err != nil {
			return nil, err
		}
		survivors = append(survivors, *a)
	}

	for paymentID, delta := range paymentDeltas {
		if delta.IsZero() {
			continue
		}
		payment, err := uow.Payments().FindByIDForUpdate(ctx, companyID, paymentID)
		if err != nil {
			return nil, err
		}
		if payment == nil {
			return nil, shared.NewIntegrityError("Allocation references a payment that cannot be loaded")
		}

		if payment.HasBankLeg() {
			bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *payment.BankAccountID)
			if err != nil {
				return nil, err
			}
			if bank == nil {
				return nil, shared.NewIntegrityError("Payment references a bank account that cannot be loaded")
			}
			bank.ApplyDelta(books.SignedDelta(payment.Type, books.LegBank, delta))
			if err := uow.BankAccounts().Save(ctx, bank); err != nil {
				return nil, err
			}
		}

		contact, err := uow.Contacts().FindByIDForUpdate(ctx, companyID, payment.ContactID)
		if err != nil {
			return nil, err
		}
		if contact == nil {
			return nil, shared.NewIntegrityError("Payment references a contact that cannot be loaded")
		}
		contact.ApplyDelta(books.SignedDelta(payment.Type, books.LegContact, delta))
		if err := uow.Contacts().Save(ctx, contact); err != nil {
			return nil, err
		}

		payment.AdjustAmount(delta)
		if payment.Amount.IsZero() {
			if err := uow.Payments().SoftDelete(ctx, payment, actingUserID); err != nil {
				return nil, err
			}
		} else if err := uow.Payments().Save(ctx, payment); err != nil {
			return nil, err
		}
	}

	// move the document's paid amount by the total allocation change, then
	// rederive remaining and status against the new amount
	totalDelta := targetTotal.Sub(oldTotal)
	if totalDelta.IsNegative() {
		doc.ReverseAllocation(totalDelta.Neg())
	}
	if err := doc.Reprice(newAmount); err != nil {
		return nil, err
	}
	if totalDelta.IsPositive() {
		if err := doc.ApplyAllocation(totalDelta); err != nil {
			return nil, err
		}
	}

	return &AdjustmentResult{
		PaymentAdjustmentMade: true,
		Allocations:           survivors,
		Status:                doc.Status,
	}, nil
}
