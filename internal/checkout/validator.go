package checkout

import (
	"errors"
	"fmt"

	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/sales"
)

// ErrEmptyCart rejects checkout on a register with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// ErrUnknownPayment rejects a payment method outside the accepted set.
var ErrUnknownPayment = errors.New("unknown payment method")

// ErrInvalidTender rejects a cash tender of zero or less.
var ErrInvalidTender = errors.New("tendered amount must be greater than zero")

// ErrMissingUser rejects checkout without an authenticated operator.
var ErrMissingUser = errors.New("operator identity required")

// ErrBusy rejects a checkout while another attempt is in flight for the
// same register.
var ErrBusy = errors.New("checkout already in progress")

// InsufficientPaymentError reports a cash tender below the total.
type InsufficientPaymentError struct {
	Shortfall pricing.Money
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment, short by %s", pricing.Format(e.Shortfall))
}

// SubmissionError wraps a failure from the sale-creation collaborator. The
// cart is preserved when this is returned so the cashier can retry the
// identical transaction.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "sale submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Validate runs the checkout gate rules in fixed order and stops at the
// first failure: empty cart, then payment method, then a positive cash
// tender, then cash sufficiency. Non-cash tenders are normalized to the
// exact total before this runs, so the last two rules apply to cash only.
func Validate(lines []pricing.Line, paymentType string, tendered, total pricing.Money) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if !validPayment(paymentType) {
		return ErrUnknownPayment
	}
	if paymentType == "cash" {
		if tendered <= 0 {
			return ErrInvalidTender
		}
		if tendered < total {
			return &InsufficientPaymentError{Shortfall: total - tendered}
		}
	}
	return nil
}

func validPayment(paymentType string) bool {
	for _, pt := range sales.PaymentTypes {
		if pt == paymentType {
			return true
		}
	}
	return false
}
