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

// Engine is the reconciliation engine: the one component allowed to move
// document paid/remaining state, bank balances, contact balances and payment
// allocations, always inside a single unit of work.
type Engine struct {
	tx books.TransactionManager
}

// NewEngine creates a new reconciliation engine
func NewEngine(tx books.TransactionManager) *Engine {
	return &Engine{tx: tx}
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID              uuid.UUID       `json:"id"`
	CompanyID       uuid.UUID       `json:"company_id"`
	Kind            string          `json:"kind"`
	DocumentNumber  string          `json:"document_number"`
	BankAccountID   *uuid.UUID      `json:"bank_account_id,omitempty"`
	ContactID       *uuid.UUID      `json:"contact_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	IssuedAt        time.Time       `json:"issued_at"`
	Remark          string          `json:"remark,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// UpdateDocumentResponse carries the updated document together with the
// structured outcome of any allocation adjustment
type UpdateDocumentResponse struct {
	Document   DocumentResponse  `json:"document"`
	Adjustment *AdjustmentResult `json:"adjustment,omitempty"`
}

// CreateDocumentRequest represents a request to create a document
type CreateDocumentRequest struct {
	Kind           string          `json:"kind" binding:"required"`
	DocumentNumber string          `json:"document_number" binding:"required"`
	BankAccountID  *uuid.UUID      `json:"bank_account_id"`
	ContactID      *uuid.UUID      `json:"contact_id"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status" binding:"required"`
	IssuedAt       time.Time       `json:"issued_at"`
	Remark         string          `json:"remark"`
}

// UpdateDocumentRequest represents a patch to a document. Fields left nil
// keep their current values.
type UpdateDocumentRequest struct {
	Amount           *decimal.Decimal `json:"amount"`
	Status           *string          `json:"status"`
	IssuedAt         *time.Time       `json:"issued_at"`
	Remark           *string          `json:"remark"`
	AdjustmentChoice *string          `json:"adjustment_choice"`
}

// CreateDocument records a new document and, when it is settled through a
// bank account at creation, applies the bank delta in the same unit of work.
func (e *Engine) CreateDocument(ctx context.Context, companyID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "books", "create_document")
	defer span.End()

	kind, err := books.ParseDocumentKind(req.Kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentKind, kind.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var resp *DocumentResponse
	err = e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		if req.BankAccountID != nil {
			exists, err := uow.BankAccounts().ExistsForCompany(ctx, companyID, *req.BankAccountID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.NewNotFoundError("Bank account not found")
			}
		}
		if req.ContactID != nil {
			exists, err := uow.Contacts().ExistsForCompany(ctx, companyID, *req.ContactID)
			if err != nil {
				return err
			}
			if !exists {
				return shared.NewNotFoundError("Contact not found")
			}
		}

		doc, err := books.NewDocument(
			companyID,
			kind,
			req.DocumentNumber,
			req.BankAccountID,
			req.ContactID,
			valueobject.NewMoneyUSD(req.Amount),
			books.DocumentStatus(strings.ToUpper(req.Status)),
			req.IssuedAt,
		)
		if err != nil {
			return err
		}
		doc.Remark = req.Remark

		if doc.BankAccountID != nil && doc.PaidAmount.IsPositive() {
			bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *doc.BankAccountID)
			if err != nil {
				return err
			}
			if bank == nil {
				return shared.NewNotFoundError("Bank account not found")
			}
			bank.ApplyDelta(kind.BankDelta(doc.PaidAmount))
			if err := uow.BankAccounts().Save(ctx, bank); err != nil {
				return err
			}
		}

		if err := uow.Documents().Save(ctx, doc); err != nil {
			return err
		}
		resp = toDocumentResponse(doc)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// GetDocument fetches a document by kind and id
func (e *Engine) GetDocument(ctx context.Context, companyID uuid.UUID, kind string, id uuid.UUID) (*DocumentResponse, error) {
	k, err := books.ParseDocumentKind(kind)
	if err != nil {
		return nil, err
	}
	var resp *DocumentResponse
	err = e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		doc, err := uow.Documents().FindByID(ctx, companyID, k, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return shared.NewNotFoundError("Document not found")
		}
		resp = toDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListDocuments lists documents of one kind for a company
func (e *Engine) ListDocuments(ctx context.Context, companyID uuid.UUID, kind string, filter shared.Filter) ([]DocumentResponse, int64, error) {
	k, err := books.ParseDocumentKind(kind)
	if err != nil {
		return nil, 0, err
	}
	var responses []DocumentResponse
	var total int64
	err = e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		docs, n, err := uow.Documents().FindByCompany(ctx, companyID, k, filter)
		if err != nil {
			return err
		}
		responses = make([]DocumentResponse, len(docs))
		for i := range docs {
			responses[i] = *toDocumentResponse(&docs[i])
		}
		total = n
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// UpdateDocument applies a patch to a document. An amount change while
// payment allocations exist is gated: without an adjustment choice the whole
// unit of work aborts with a ConflictError carrying the allocation summary,
// leaving every row untouched.
func (e *Engine) UpdateDocument(ctx context.Context, companyID uuid.UUID, kind string, id uuid.UUID, actingUserID uuid.UUID, req UpdateDocumentRequest) (*UpdateDocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "books", "update_document")
	defer span.End()

	k, err := books.ParseDocumentKind(kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentKind, k.String())

	var resp *UpdateDocumentResponse
	err = e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		doc, err := uow.Documents().FindByIDForUpdate(ctx, companyID, k, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return shared.NewNotFoundError("Document not found")
		}

		finalAmount := doc.Amount
		if req.Amount != nil {
			if req.Amount.IsNegative() {
				return shared.NewValidationError("Document amount cannot be negative")
			}
			finalAmount = *req.Amount
		}

		allocations, err := uow.Allocations().FindByDocument(ctx, companyID, k, doc.ID)
		if err != nil {
			return err
		}

		var adjustment *AdjustmentResult
		if len(allocations) == 0 {
			if err := e.updateWithoutAllocations(ctx, uow, companyID, doc, finalAmount, req.Status); err != nil {
				return err
			}
		} else if !finalAmount.Equal(doc.Amount) {
			if req.AdjustmentChoice == nil {
				return e.conflict(ctx, uow, companyID, doc, finalAmount, allocations)
			}
			choice := AdjustmentChoice(strings.ToUpper(*req.AdjustmentChoice))
			if !choice.IsValid() {
				return shared.NewValidationError("Adjustment choice must be SCALE_ALLOCATIONS or KEEP_PAID")
			}
			adjustment, err = adjustAllocationsForAmountChange(ctx, uow, companyID, doc, finalAmount, choice, actingUserID)
			if err != nil {
				return err
			}
		}
		// with allocations and an unchanged amount the paid/remaining split is
		// already authoritative; only the descriptive fields move

		if req.IssuedAt != nil {
			doc.IssuedAt = *req.IssuedAt
		}
		if req.Remark != nil {
			doc.Remark = *req.Remark
		}
		doc.UpdatedAt = time.Now()

		if err := uow.Documents().Save(ctx, doc); err != nil {
			return err
		}
		resp = &UpdateDocumentResponse{Document: *toDocumentResponse(doc), Adjustment: adjustment}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// updateWithoutAllocations recomputes the paid/remaining split purely from
// the requested status, reversing the old direct bank effect and applying the
// new one so the bank balance stays an exact function of the document state.
func (e *Engine) updateWithoutAllocations(
	ctx context.Context,
	uow books.UnitOfWork,
	companyID uuid.UUID,
	doc *books.Document,
	finalAmount decimal.Decimal,
	statusPatch *string,
) error {
	status := doc.Status
	if statusPatch != nil {
		status = books.DocumentStatus(strings.ToUpper(*statusPatch))
		if !status.IsValid() {
			return shared.NewValidationError("Document status must be pending or paid")
		}
	}
	if doc.BankAccountID != nil && doc.ContactID == nil && status != books.DocumentStatusPaid {
		return shared.NewValidationError("A bank-only document is settled immediately and must be paid")
	}
	if doc.BankAccountID == nil && status == books.DocumentStatusPaid {
		return shared.NewValidationError("A document without a bank account cannot be marked paid directly")
	}

	oldDirect := doc.DirectBankPaid(decimal.Zero)
	newPaid := decimal.Zero
	if status == books.DocumentStatusPaid {
		newPaid = finalAmount
	}

	if doc.BankAccountID != nil && (oldDirect.IsPositive() || newPaid.IsPositive()) {
		bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *doc.BankAccountID)
		if err != nil {
			return err
		}
		if bank == nil {
			return shared.NewIntegrityError("Document references a bank account that cannot be loaded")
		}
		// reverse the old direct effect, then apply the new one
		bank.ApplyDelta(doc.Kind.BankDelta(oldDirect).Neg())
		bank.ApplyDelta(doc.Kind.BankDelta(newPaid))
		if err := uow.BankAccounts().Save(ctx, bank); err != nil {
			return err
		}
	}

	doc.PaidAmount = newPaid
	if err := doc.Reprice(finalAmount); err != nil {
		return err
	}
	return nil
}

// conflict assembles the allocation summary and returns it as a ConflictError
func (e *Engine) conflict(
	ctx context.Context,
	uow books.UnitOfWork,
	companyID uuid.UUID,
	doc *books.Document,
	requestedAmount decimal.Decimal,
	allocations []books.PaymentAllocation,
) error {
	summary := make([]AllocationSummary, 0, len(allocations))
	allocated := decimal.Zero
	for _, a := range allocations {
		allocated = allocated.Add(a.PaidAmount)
		payment, err := uow.Payments().FindByID(ctx, companyID, a.PaymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewIntegrityError("Allocation references a payment that cannot be loaded")
		}
		summary = append(summary, AllocationSummary{
			AllocationID:  a.ID,
			PaymentID:     payment.ID,
			PaymentNumber: payment.PaymentNumber,
			PaymentType:   payment.Type,
			PaidAmount:    a.PaidAmount,
		})
	}
	return &ConflictError{
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind,
		CurrentAmount:   doc.Amount,
		RequestedAmount: requestedAmount,
		PaidAmount:      doc.PaidAmount,
		RemainingAmount: doc.RemainingAmount,
		AllocatedTotal:  allocated,
		Allocations:     summary,
	}
}

// DeleteDocument soft-deletes a document after exactly undoing every ledger
// side effect its lifetime caused: the direct bank delta if it was bank-paid,
// and every payment allocation settled against it.
func (e *Engine) DeleteDocument(ctx context.Context, companyID uuid.UUID, kind string, id uuid.UUID, deletedBy uuid.UUID) (*DocumentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "books", "delete_document")
	defer span.End()

	k, err := books.ParseDocumentKind(kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDocumentKind, k.String())

	var resp *DocumentResponse
	err = e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		doc, err := uow.Documents().FindByIDForUpdate(ctx, companyID, k, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return shared.NewNotFoundError("Document not found")
		}

		allocations, err := uow.Allocations().FindByDocument(ctx, companyID, k, doc.ID)
		if err != nil {
			return err
		}
		allocated := decimal.Zero
		for _, a := range allocations {
			allocated = allocated.Add(a.PaidAmount)
		}

		// only the portion that was actually settled at the bank directly is
		// reversed here; the allocated portion is reversed through the
		// payments below, never both
		direct := doc.DirectBankPaid(allocated)
		if direct.IsPositive() {
			bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *doc.BankAccountID)
			if err != nil {
				return err
			}
			if bank == nil {
				return shared.NewIntegrityError("Document references a bank account that cannot be loaded")
			}
			bank.ApplyDelta(doc.Kind.BankDelta(direct).Neg())
			if err := uow.BankAccounts().Save(ctx, bank); err != nil {
				return err
			}
		}

		if err := reverseAllocations(ctx, uow, companyID, allocations, deletedBy); err != nil {
			return err
		}

		if err := uow.Documents().SoftDelete(ctx, doc, deletedBy); err != nil {
			return err
		}
		doc.AddDomainEvent(books.NewDocumentDeletedEvent(doc, deletedBy))
		resp = toDocumentResponse(doc)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// ReverseAllocationsForDocument unwinds every payment allocation referencing
// the document inside one unit of work, without touching the document row.
// DeleteDocument uses the same routine internally.
func (e *Engine) ReverseAllocationsForDocument(ctx context.Context, companyID uuid.UUID, kind string, id uuid.UUID, actingUserID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "books", "reverse_allocations")
	defer span.End()

	k, err := books.ParseDocumentKind(kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	err = e.tx.Do(ctx, func(ctx context.Context, uow books.UnitOfWork) error {
		allocations, err := uow.Allocations().FindByDocument(ctx, companyID, k, id)
		if err != nil {
			return err
		}
		return reverseAllocations(ctx, uow, companyID, allocations, actingUserID)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// reverseAllocations undoes each allocation's share of its owning payment:
// the bank and contact legs are reversed scaled to the allocation amount,
// the payment is reduced (or retired when this was its only allocation), and
// the allocation row is removed. A missing bank, contact or payment row is a
// fatal integrity error; a skipped reversal is silent ledger drift, which is
// strictly worse than failing the operation.
func reverseAllocations(
	ctx context.Context,
	uow books.UnitOfWork,
	companyID uuid.UUID,
	allocations []books.PaymentAllocation,
	actingUserID uuid.UUID,
) error {
	for _, a := range allocations {
		payment, err := uow.Payments().FindByIDForUpdate(ctx, companyID, a.PaymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewIntegrityError("Allocation references a payment that cannot be loaded")
		}
		siblings, err := uow.Allocations().FindByPayment(ctx, companyID, payment.ID)
		if err != nil {
			return err
		}

		if payment.HasBankLeg() {
			bank, err := uow.BankAccounts().FindByIDForUpdate(ctx, companyID, *payment.BankAccountID)
			if err != nil {
				return err
			}
			if bank == nil {
				return shared.NewIntegrityError("Payment references a bank account that cannot be loaded")
			}
			bank.ApplyDelta(books.SignedDelta(payment.Type, books.LegBank, a.PaidAmount).Neg())
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
		contact.ApplyDelta(books.SignedDelta(payment.Type, books.LegContact, a.PaidAmount).Neg())
		if err := uow.Contacts().Save(ctx, contact); err != nil {
			return err
		}

		if len(siblings) <= 1 {
			// this was the payment's only allocation; retire the payment
			if err := uow.Payments().SoftDelete(ctx, payment, actingUserID); err != nil {
				return err
			}
		} else {
			payment.Reduce(a.PaidAmount)
			if err := uow.Payments().Save(ctx, payment); err != nil {
				return err
			}
		}

		if err := uow.Allocations().Delete(ctx, a.ID); err != nil {
			return err
		}
	}
	return nil
}

func toDocumentResponse(d *books.Document) *DocumentResponse {
	return &DocumentResponse{
		ID:              d.ID,
		CompanyID:       d.CompanyID,
		Kind:            d.Kind.String(),
		DocumentNumber:  d.DocumentNumber,
		BankAccountID:   d.BankAccountID,
		ContactID:       d.ContactID,
		Amount:          d.Amount,
		PaidAmount:      d.PaidAmount,
		RemainingAmount: d.RemainingAmount,
		Status:          d.Status.String(),
		IssuedAt:        d.IssuedAt,
		Remark:          d.Remark,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		Version:         d.Version,
	}
}
