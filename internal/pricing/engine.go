package pricing

// Line describes one product line on the active register transaction.
// UnitPrice is snapshot at the time the product was added, not live-repriced.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Qty       int    `json:"qty"`
}

// Rates holds the tax and discount configuration in basis points.
type Rates struct {
	TaxBps    int `json:"taxBps"`
	PWDBps    int `json:"pwdBps"`
	SeniorBps int `json:"seniorBps"`
}

// Result aggregates the computed figures for one transaction.
type Result struct {
	Subtotal Money `json:"subtotal"`
	Discount Money `json:"discount"`
	Tax      Money `json:"tax"`
	Total    Money `json:"total"`
	Change   Money `json:"change"`
}

// Subtotal sums unit price times quantity over all lines. Integer
// arithmetic, so the result is exact.
func Subtotal(lines []Line) Money {
	var subtotal Money
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		subtotal += Money(ln.Qty) * ln.UnitPrice
	}
	return subtotal
}

// Discount applies the selected discount class to the subtotal. At most one
// class can be active; the other contributes exactly zero.
func Discount(subtotal Money, sel Selection, rates Rates) Money {
	switch {
	case sel.PWD:
		return applyBps(subtotal, rates.PWDBps)
	case sel.Senior:
		return applyBps(subtotal, rates.SeniorBps)
	default:
		return 0
	}
}

// Tax is computed on the post-discount base. PWD/Senior sales are taxed on
// the discounted base, not VAT-exempt; see DESIGN.md before changing this.
func Tax(subtotal, discount Money, taxBps int) Money {
	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}
	return applyBps(taxable, taxBps)
}

// Total combines the discounted base with the tax amount.
func Total(subtotal, discount, tax Money) Money {
	return (subtotal - discount) + tax
}

// Change returns tendered minus total. May be negative; rejecting negative
// change before completing a sale is the validator's job, not ours.
func Change(total, tendered Money) Money {
	return tendered - total
}

// Compute derives all figures for the given cart, discount selection, and
// rate snapshot. Pure and side-effect free; identical inputs always yield
// identical output. Change is left at zero since no tender is known yet.
func Compute(lines []Line, sel Selection, rates Rates) Result {
	subtotal := Subtotal(lines)
	discount := Discount(subtotal, sel, rates)
	tax := Tax(subtotal, discount, rates.TaxBps)
	return Result{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    Total(subtotal, discount, tax),
	}
}

// applyBps multiplies an amount by a basis-point rate, rounding half up.
func applyBps(amount Money, bps int) Money {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*Money(bps) + 5000) / 10000
}
