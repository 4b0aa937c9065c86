package sales

import (
	"time"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Status is the lifecycle state of a persisted sale.
type Status string

const (
	// StatusCompleted is the state every sale is created in.
	StatusCompleted Status = "completed"
	// StatusVoided marks a completed sale cancelled by an admin.
	StatusVoided Status = "voided"
	// StatusRefunded marks a completed sale refunded to the customer.
	StatusRefunded Status = "refunded"
)

// PaymentTypes lists the accepted payment methods.
var PaymentTypes = []string{"cash", "gcash", "card"}

// Item is one line of a persisted sale, snapshot from the register cart.
type Item struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Qty       int           `json:"qty"`
}

// Sale is the persisted record of a completed transaction.
type Sale struct {
	ID              string        `json:"id"`
	ReceiptNo       string        `json:"receiptNo"`
	OperatorID      string        `json:"operatorId"`
	CustomerName    string        `json:"customerName,omitempty"`
	PaymentType     string        `json:"paymentType"`
	DiscountType    string        `json:"discountType,omitempty"`
	Subtotal        pricing.Money `json:"subtotal"`
	DiscountAmount  pricing.Money `json:"discountAmount"`
	TaxAmount       pricing.Money `json:"taxAmount"`
	TotalAmount     pricing.Money `json:"totalAmount"`
	AmountTendered  pricing.Money `json:"amountTendered"`
	ChangeDue       pricing.Money `json:"changeDue"`
	Status          Status        `json:"status"`
	StatusReason    string        `json:"statusReason,omitempty"`
	StatusChangedBy string        `json:"statusChangedBy,omitempty"`
	StatusChangedAt *time.Time    `json:"statusChangedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	Items           []Item        `json:"items,omitempty"`
}

// CreateParams is the payload the checkout orchestrator hands to Create.
type CreateParams struct {
	OperatorID     string
	CustomerName   string
	PaymentType    string
	DiscountType   string
	Subtotal       pricing.Money
	DiscountAmount pricing.Money
	TaxAmount      pricing.Money
	TotalAmount    pricing.Money
	AmountTendered pricing.Money
	ChangeDue      pricing.Money
	Items          []Item
}

// ListFilter narrows List results.
type ListFilter struct {
	From    *time.Time
	To      *time.Time
	Status  Status
	Page    int
	PerPage int
}
