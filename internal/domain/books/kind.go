package books

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
)

// DocumentKind is the closed set of priced business events the engine
// reconciles. All per-kind behavior is driven by one mapping table rather
// than per-kind code paths.
type DocumentKind string

const (
	KindSale     DocumentKind = "SALE"
	KindPurchase DocumentKind = "PURCHASE"
	KindExpense  DocumentKind = "EXPENSE"
	KindIncome   DocumentKind = "INCOME"
)

type kindSpec struct {
	label  string
	cashIn bool // true when a bank-paid document of this kind moves cash into the bank
}

var kindSpecs = map[DocumentKind]kindSpec{
	KindSale:     {label: "sale", cashIn: true},
	KindPurchase: {label: "purchase", cashIn: false},
	KindExpense:  {label: "expense", cashIn: false},
	KindIncome:   {label: "income", cashIn: true},
}

// IsValid checks if the kind is a valid DocumentKind
func (k DocumentKind) IsValid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// String returns the string representation of the kind
func (k DocumentKind) String() string {
	return string(k)
}

// Label returns the lowercase human label for the kind
func (k DocumentKind) Label() string {
	return kindSpecs[k].label
}

// BankDelta returns the signed bank-balance movement caused by paying the
// given amount of a document of this kind directly through a bank account.
// Sales and income move cash in; purchases and expenses move cash out.
func (k DocumentKind) BankDelta(amount decimal.Decimal) decimal.Decimal {
	if kindSpecs[k].cashIn {
		return amount
	}
	return amount.Neg()
}

// ParseDocumentKind parses a kind from its string form (case-insensitive)
func ParseDocumentKind(s string) (DocumentKind, error) {
	k := DocumentKind(strings.ToUpper(s))
	if !k.IsValid() {
		return "", shared.NewValidationError("Document kind must be one of sale, purchase, expense, income")
	}
	return k, nil
}
