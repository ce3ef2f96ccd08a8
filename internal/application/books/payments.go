package books

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/smallbooks/backend/internal/domain/shared/valueobject"
	"github.com/smallbooks/backend/internal/infrastructure/telemetry"
)

// PaymentAllocationRequest names one document a new payment settles
type PaymentAllocationRequest struct {
	DocumentKind string          `json:"document_kind" binding:"required"`
	DocumentID   uuid.UUID       `json:"document_id" binding:"required"`
	PaidAmount   decimal.Decimal `json:"paid_amount" binding:"required"`
}

// CreatePaymentRequest represents a request to record a payment, standalone
// or with its initial document allocations
type CreatePaymentRequest struct {
	PaymentNumber string                     `json:"payment_number" binding:"required"`
	ContactID     uuid.UUID                  `json:"contact_id" binding:"required"`
	BankAccountID *uuid.UUID                 `json:"bank_account_id"`
	Amount        decimal.Decimal            `json:"amount" binding:"required"`
	Type          string                     `json:"type" binding:"required"`
	PaidAt        time.Time                  `json:"paid_at"`
	Remark        string                     `json:"remark"`
	Allocations   []PaymentAllocationRequest `json:"allocations"`
}

// AllocationResponse represents an allocation in API responses
type AllocationResponse struct {
	ID           uuid.UUID       `json:"id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	DocumentKind string          `json:"document_kind"`
	DocumentID   uuid.UUID       `json:"document_id"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID            `json:"id"`
	CompanyID     uuid.UUID            `json:"company_id"`
	PaymentNumber string               `json:"payment_number"`
	ContactID     uuid.UUID            `json:"contact_id"`
	BankAccountID *uuid.UUID           `json:"bank_account_id,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	Type          string               `json:"type"`
	PaidAt        time.Time            `json:"paid_at"`
	Remark        string               `json:"remark,omitempty"`
	Allocations   []AllocationResponse `json:"allocations,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Version       int                  `json:"version"`
}

// CreatePayment records a payment, moves its bank and contact legs by the
// signed delta, and applies each requested allocation to its document, all
// in one unit of work. Allocation amounts must sum to the payment amount.
func (e *Engine) CreatePayment(ctx context.Context, companyID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "books", "create_payment")
	defer span.End()

	paymentType := books.PaymentType(strings.ToUpper(req.Type))
	if !paymentType.IsValid() {
		err := shared.NewValidationError("Payment type must be payment or receipt")
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentType, paymentType.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if len(req.Allocations) > 0 {
		sum := decimal.Zero
		for _, a := range req.Allocations {
			sum = sum.Add(a.PaidAmount)
		}
		if !sum.Equal(req.Amount) {
			err := shared.NewValidationError("Allocation amounts must sum to the payment amount")
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	var resp *PaymentResponse
	err := e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		payment, err := books.NewPayment(
			companyID,
			req.PaymentNumber,
			req.ContactID,
			req.BankAccountID,
			valueobject.NewMoneyUSD(req.Amount),
			paymentType,
			req.PaidAt,
		)
		if err != nil {
			return err
		}
		payment.Remark = req.Remark

		if payment.HasBankLeg() {
			bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *payment.BankAccountID)
			if err != nil {
				return err
			}
			if bank == nil {
				return shared.NewNotFoundError("Bank account not found")
			}
			bank.ApplyDelta(books.SignedDelta(payment.Type, books.LegBank, payment.Amount))
			if err := uow.BankAccounts().Save(ctx, bank); err != nil {
				return err
			}
		}

		contact, err := uow.Contacts().FindByIDForUpdate(ctx, companyID, payment.ContactID)
		if err != nil {
			return err
		}
		if contact == nil {
			return shared.NewNotFoundError("Contact not found")
		}
		contact.ApplyDelta(books.SignedDelta(payment.Type, books.LegContact, payment.Amount))
		if err := uow.Contacts().Save(ctx, contact); err != nil {
			return err
		}

		if err := uow.Payments().Save(ctx, payment); err != nil {
			return err
		}

		allocations := make([]books.PaymentAllocation, 0, len(req.Allocations))
		for _, ar := range req.Allocations {
			kind, err := books.ParseDocumentKind(ar.DocumentKind)
			if err != nil {
				return err
			}
			doc, err := uow.Documents().FindByIDForUpdate(ctx, companyID, kind, ar.DocumentID)
			if err != nil {
				return err
			}
			if doc == nil {
				return shared.NewNotFoundError("Document not found")
			}
			if err := doc.ApplyAllocation(ar.PaidAmount); err != nil {
				return err
			}
			if err := uow.Documents().Save(ctx, doc); err != nil {
				return err
			}

			alloc, err := books.NewPaymentAllocation(
				companyID,
				payment.ID,
				kind,
				ar.DocumentID,
				valueobject.NewMoneyUSD(ar.PaidAmount),
			)
			if err != nil {
				return err
			}
			if err := uow.Allocations().Save(ctx, alloc); err != nil {
				return err
			}
			allocations = append(allocations, *alloc)
		}

		resp = toPaymentResponse(payment, allocations)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// GetPayment fetches a payment with its allocations
func (e *Engine) GetPayment(ctx context.Context, companyID, id uuid.UUID) (*PaymentResponse, error) {
	var resp *PaymentResponse
	err := e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		payment, err := uow.Payments().FindByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewNotFoundError("Payment not found")
		}
		allocations, err := uow.Allocations().FindByPayment(ctx, companyID, payment.ID)
		if err != nil {
			return err
		}
		resp = toPaymentResponse(payment, allocations)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListPayments lists payments for a company
func (e *Engine) ListPayments(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]PaymentResponse, int64, error) {
	var responses []PaymentResponse
	var total int64
	err := e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		payments, n, err := uow.Payments().FindByCompany(ctx, companyID, filter)
		if err != nil {
			return err
		}
		responses = make([]PaymentResponse, len(payments))
		for i := range payments {
			responses[i] = *toPaymentResponse(&payments[i], nil)
		}
		total = n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// DeletePayment mirror-reverses every effect the payment caused (each
// allocated document's paid amount, the bank leg and the contact leg) and
// then soft-deletes the payment.
func (e *Engine) DeletePayment(ctx context.Context, companyID, id uuid.UUID, deletedBy uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "books", "delete_payment")
	defer span.End()

	err := e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		payment, err := uow.Payments().FindByIDForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewNotFoundError("Payment not found")
		}

		if payment.HasBankLeg() {
			bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *payment.BankAccountID)
			if err != nil {
				return err
			}
			if bank == nil {
				return shared.NewIntegrityError("Payment references a bank account that cannot be loaded")
			}
			bank.ApplyDelta(books.SignedDelta(payment.Type, books.LegBank, payment.Amount).Neg())
			if err := uow.BankAccounts().Save(ctx, bank); err != nil {
				return err
			}
		}

		contact, err := uow.Contacts().FindByIDForUpdate(ctx, companyID, payment.ContactID)
		if err != nil {
			return err
		}
		if contact == nil {
			return shared.NewIntegrityError("Payment references a contact that cannot be loaded")
		}
		contact.ApplyDelta(books.SignedDelta(payment.Type, books.LegContact, payment.Amount).Neg())
		if err := uow.Contacts().Save(ctx, contact); err != nil {
			return err
		}

		allocations, err := uow.Allocations().FindByPayment(ctx, companyID, payment.ID)
		if err != nil {
			return err
		}
		for _, a := range allocations {
			doc, err := uow.Documents().FindByIDForUpdate(ctx, companyID, a.DocumentKind, a.DocumentID)
			if err != nil {
				return err
			}
			if doc == nil {
				return shared.NewIntegrityError("Allocation references a document that cannot be loaded")
			}
			doc.ReverseAllocation(a.PaidAmount)
			if err := uow.Documents().Save(ctx, doc); err != nil {
				return err
			}
			if err := uow.Allocations().Delete(ctx, a.ID); err != nil {
				return err
			}
		}

		return uow.Payments().SoftDelete(ctx, payment, deletedBy)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

func toPaymentResponse(p *books.Payment, allocations []books.PaymentAllocation) *PaymentResponse {
	resp := &PaymentResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		PaymentNumber: p.PaymentNumber,
		ContactID:     p.ContactID,
		BankAccountID: p.BankAccountID,
		Amount:        p.Amount,
		Type:          p.Type.String(),
		PaidAt:        p.PaidAt,
		Remark:        p.Remark,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
	for _, a := range allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			ID:           a.ID,
			PaymentID:    a.PaymentID,
			DocumentKind: a.DocumentKind.String(),
			DocumentID:   a.DocumentID,
			PaidAmount:   a.PaidAmount,
		})
	}
	return resp
}
