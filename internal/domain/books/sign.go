package books

import "github.com/shopspring/decimal"

// Leg identifies which ledger a balance delta applies to
type Leg string

const (
	LegBank    Leg = "BANK"
	LegContact Leg = "CONTACT"
)

// SignedDelta returns the signed balance movement applied to a ledger leg
// when a payment of the given type and amount is recorded:
//
//	PAYMENT (money out): bank −amount, contact +amount
//	RECEIPT (money in):  bank +amount, contact −amount
//
// Every apply site adds this value and every reverse site subtracts it, so
// the sign convention lives in exactly one place.
func SignedDelta(paymentType PaymentType, leg Leg, amount decimal.Decimal) decimal.Decimal {
	out := paymentType == PaymentTypePayment
	if leg == LegBank {
		if out {
			return amount.Neg()
		}
		return amount
	}
	if out {
		return amount
	}
	return amount.Neg()
}
