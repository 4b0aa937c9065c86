package checkout

import (
	"testing"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

func someLines() []pricing.Line {
	return []pricing.Line{{ProductID: "p-1", Name: "Rice 5kg", UnitPrice: 28000, Qty: 1}}
}

func TestValidatePasses(t *testing.T) {
	if err := Validate(someLines(), "cash", 30000, 28000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(someLines(), "cash", 28000, 28000); err != nil {
		t.Fatalf("exact tender should pass: %v", err)
	}
}

func TestValidateRuleOrder(t *testing.T) {
	// an empty cart wins over every later rule
	if err := Validate(nil, "cheque", 0, 28000); err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	// payment method is checked before the tendered amount
	if err := Validate(someLines(), "cheque", 0, 28000); err != ErrUnknownPayment {
		t.Fatalf("expected ErrUnknownPayment, got %v", err)
	}
	// a non-positive cash tender is checked before sufficiency
	if err := Validate(someLines(), "cash", 0, 28000); err != ErrInvalidTender {
		t.Fatalf("expected ErrInvalidTender, got %v", err)
	}
}

func TestValidateCashTenderMustBePositive(t *testing.T) {
	if err := Validate(someLines(), "cash", -100, 28000); err != ErrInvalidTender {
		t.Fatalf("expected ErrInvalidTender for negative tender, got %v", err)
	}
	// even a zero-total cart must not accept a zero cash tender
	free := []pricing.Line{{ProductID: "p-2", Name: "Loyalty Freebie", UnitPrice: 0, Qty: 1}}
	if err := Validate(free, "cash", 0, 0); err != ErrInvalidTender {
		t.Fatalf("expected ErrInvalidTender against zero total, got %v", err)
	}
}

func TestValidateShortfall(t *testing.T) {
	err := Validate(someLines(), "cash", 27999, 28000)
	short, ok := err.(*InsufficientPaymentError)
	if !ok {
		t.Fatalf("expected InsufficientPaymentError, got %v", err)
	}
	if short.Shortfall != 1 {
		t.Fatalf("expected shortfall of 1, got %d", short.Shortfall)
	}
	if short.Error() == "" {
		t.Fatal("expected a message")
	}
}

func TestValidateAcceptsAllPaymentTypes(t *testing.T) {
	for _, pt := range []string{"cash", "gcash", "card"} {
		if err := Validate(someLines(), pt, 28000, 28000); err != nil {
			t.Fatalf("payment %s: %v", pt, err)
		}
	}
}
