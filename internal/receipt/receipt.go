package receipt

import (
	"time"

	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/sales"
)

// Line is one printed receipt row.
type Line struct {
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unitPrice"`
	Amount    string `json:"amount"`
}

// Receipt is the printable rendering of a sale. All money figures are
// pre-formatted strings so the printing client does no arithmetic.
type Receipt struct {
	StoreName    string    `json:"storeName"`
	CurrencyCode string    `json:"currencyCode"`
	ReceiptNo    string    `json:"receiptNo"`
	IssuedAt     time.Time `json:"issuedAt"`
	CustomerName string    `json:"customerName,omitempty"`
	DiscountType string    `json:"discountType,omitempty"`
	PaymentType  string    `json:"paymentType"`
	Lines        []Line    `json:"lines"`
	Subtotal     string    `json:"subtotal"`
	Discount     string    `json:"discount,omitempty"`
	Tax          string    `json:"tax"`
	Total        string    `json:"total"`
	Tendered     string    `json:"tendered"`
	Change       string    `json:"change"`
	Voided       bool      `json:"voided,omitempty"`
	Refunded     bool      `json:"refunded,omitempty"`
}

// Build assembles a receipt from a persisted sale. Pure; safe to call as
// many times as the printer needs.
func Build(sale sales.Sale, storeName, currencyCode string) Receipt {
	lines := make([]Line, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, Line{
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: pricing.Format(item.UnitPrice),
			Amount:    pricing.Format(pricing.Money(item.Qty) * item.UnitPrice),
		})
	}
	rcpt := Receipt{
		StoreName:    storeName,
		CurrencyCode: currencyCode,
		ReceiptNo:    sale.ReceiptNo,
		IssuedAt:     sale.CreatedAt,
		CustomerName: sale.CustomerName,
		DiscountType: sale.DiscountType,
		PaymentType:  sale.PaymentType,
		Lines:        lines,
		Subtotal:     pricing.Format(sale.Subtotal),
		Tax:          pricing.Format(sale.TaxAmount),
		Total:        pricing.Format(sale.TotalAmount),
		Tendered:     pricing.Format(sale.AmountTendered),
		Change:       pricing.Format(sale.ChangeDue),
		Voided:       sale.Status == sales.StatusVoided,
		Refunded:     sale.Status == sales.StatusRefunded,
	}
	if sale.DiscountAmount > 0 {
		rcpt.Discount = pricing.Format(sale.DiscountAmount)
	}
	return rcpt
}
