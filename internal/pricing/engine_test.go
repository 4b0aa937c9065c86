package pricing

import "testing"

func TestSubtotalSumsLines(t *testing.T) {
	lines := []Line{
		{ProductID: "a", UnitPrice: 10000, Qty: 2},
		{ProductID: "b", UnitPrice: 4950, Qty: 3},
	}
	if got := Subtotal(lines); got != 34850 {
		t.Fatalf("expected subtotal 34850, got %d", got)
	}
}

func TestSubtotalSkipsNonPositiveQty(t *testing.T) {
	lines := []Line{
		{ProductID: "a", UnitPrice: 10000, Qty: 0},
		{ProductID: "b", UnitPrice: 5000, Qty: 1},
	}
	if got := Subtotal(lines); got != 5000 {
		t.Fatalf("expected subtotal 5000, got %d", got)
	}
}

func TestDiscountBranches(t *testing.T) {
	rates := Rates{TaxBps: 1200, PWDBps: 2000, SeniorBps: 1500}
	if got := Discount(20000, Selection{}, rates); got != 0 {
		t.Fatalf("expected no discount, got %d", got)
	}
	if got := Discount(20000, Selection{PWD: true}, rates); got != 4000 {
		t.Fatalf("expected pwd discount 4000, got %d", got)
	}
	if got := Discount(20000, Selection{Senior: true}, rates); got != 3000 {
		t.Fatalf("expected senior discount 3000, got %d", got)
	}
}

func TestTaxOnDiscountedBase(t *testing.T) {
	if got := Tax(20000, 4000, 1200); got != 1920 {
		t.Fatalf("expected tax 1920, got %d", got)
	}
	if got := Tax(1000, 2000, 1200); got != 0 {
		t.Fatalf("expected zero tax on negative base, got %d", got)
	}
}

func TestApplyBpsRoundsHalfUp(t *testing.T) {
	// 125 * 12% = 15.00 exactly; 129 * 12% = 15.48 -> 15; 121 * 12% = 14.52 -> 15.
	if got := applyBps(129, 1200); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
	if got := applyBps(121, 1200); got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
	// exact half rounds up: 375 * 2% = 7.5 -> 8
	if got := applyBps(375, 200); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
}

func TestComputeNoDiscount(t *testing.T) {
	// cart [{100.00 x2}], tax 12%: subtotal 200.00, tax 24.00, total 224.00
	lines := []Line{{ProductID: "a", UnitPrice: 10000, Qty: 2}}
	res := Compute(lines, Selection{}, Rates{TaxBps: 1200, PWDBps: 2000, SeniorBps: 2000})
	if res.Subtotal != 20000 || res.Discount != 0 || res.Tax != 2400 || res.Total != 22400 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestComputePWDDiscount(t *testing.T) {
	// same cart, pwd 20%: discount 40.00, taxable 160.00, tax 19.20, total 179.20
	lines := []Line{{ProductID: "a", UnitPrice: 10000, Qty: 2}}
	res := Compute(lines, Selection{PWD: true}, Rates{TaxBps: 1200, PWDBps: 2000, SeniorBps: 2000})
	if res.Discount != 4000 {
		t.Fatalf("expected discount 4000, got %d", res.Discount)
	}
	if res.Tax != 1920 {
		t.Fatalf("expected tax 1920, got %d", res.Tax)
	}
	if res.Total != 17920 {
		t.Fatalf("expected total 17920, got %d", res.Total)
	}
}

func TestComputeIdempotent(t *testing.T) {
	lines := []Line{
		{ProductID: "a", UnitPrice: 9999, Qty: 3},
		{ProductID: "b", UnitPrice: 12345, Qty: 1},
	}
	sel := Selection{Senior: true}
	rates := Rates{TaxBps: 1200, PWDBps: 2000, SeniorBps: 2000}
	first := Compute(lines, sel, rates)
	second := Compute(lines, sel, rates)
	if first != second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestChangeMayBeNegative(t *testing.T) {
	if got := Change(22400, 20000); got != -2400 {
		t.Fatalf("expected change -2400, got %d", got)
	}
	if got := Change(17920, 17920); got != 0 {
		t.Fatalf("expected zero change, got %d", got)
	}
}

func TestFromFloatBoundary(t *testing.T) {
	// total-0.001 rounds back to the total; total-0.01 lands one centavo short
	if got := FromFloat(224.00 - 0.001); got != 22400 {
		t.Fatalf("expected 22400, got %d", got)
	}
	if got := FromFloat(224.00 - 0.01); got != 22399 {
		t.Fatalf("expected 22399, got %d", got)
	}
	if got := FromFloat(0.005); got != 1 {
		t.Fatalf("expected half-up to 1, got %d", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(22400); got != "224.00" {
		t.Fatalf("expected 224.00, got %s", got)
	}
	if got := Format(-205); got != "-2.05" {
		t.Fatalf("expected -2.05, got %s", got)
	}
	if got := Format(9); got != "0.09" {
		t.Fatalf("expected 0.09, got %s", got)
	}
}
