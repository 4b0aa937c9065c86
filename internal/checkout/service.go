package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/cart"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/sales"
)

// RateSource supplies the current tax and discount rates.
type RateSource interface {
	Rates(ctx context.Context) (pricing.Rates, error)
}

// SaleCreator persists a completed sale.
type SaleCreator interface {
	Create(ctx context.Context, params sales.CreateParams) (sales.Sale, error)
}

// Input is the tender the cashier submits to complete the transaction.
type Input struct {
	CustomerName   string
	PaymentType    string
	AmountTendered float64
}

// Service orchestrates checkout: it recomputes the figures from the stored
// cart, gates the attempt through the validator, persists the sale, and
// resets the register. The client never supplies totals; whatever its panel
// showed, the numbers on the sale come from a fresh Compute here.
type Service struct {
	Carts    *cart.Service
	Settings RateSource
	Sales    SaleCreator
	Logger   zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Attempt runs one checkout for the register. Only one attempt per register
// may be in flight; a concurrent call gets ErrBusy instead of queueing. On
// any failure the cart is left exactly as it was.
func (s *Service) Attempt(ctx context.Context, operatorID, registerID string, input Input) (sales.Sale, error) {
	if s == nil || s.Carts == nil || s.Settings == nil || s.Sales == nil {
		return sales.Sale{}, errors.New("checkout service not configured")
	}
	if operatorID == "" {
		return sales.Sale{}, ErrMissingUser
	}
	if !s.acquire(registerID) {
		return sales.Sale{}, ErrBusy
	}
	defer s.release(registerID)

	c, err := s.Carts.Get(ctx, registerID)
	if err != nil {
		return sales.Sale{}, fmt.Errorf("load cart: %w", err)
	}
	rates, err := s.Settings.Rates(ctx)
	if err != nil {
		return sales.Sale{}, fmt.Errorf("load rates: %w", err)
	}

	result := pricing.Compute(c.Lines, c.Discount, rates)
	tendered := pricing.FromFloat(input.AmountTendered)
	if input.PaymentType != "cash" && validPayment(input.PaymentType) {
		// digital tenders settle the exact amount; no change is possible
		tendered = result.Total
	}

	if err := Validate(c.Lines, input.PaymentType, tendered, result.Total); err != nil {
		s.countAttempt("rejected", input.PaymentType)
		return sales.Sale{}, err
	}

	customer := input.CustomerName
	if customer == "" {
		customer = c.CustomerName
	}
	params := sales.CreateParams{
		OperatorID:     operatorID,
		CustomerName:   customer,
		PaymentType:    input.PaymentType,
		DiscountType:   c.Discount.Label(),
		Subtotal:       result.Subtotal,
		DiscountAmount: result.Discount,
		TaxAmount:      result.Tax,
		TotalAmount:    result.Total,
		AmountTendered: tendered,
		ChangeDue:      pricing.Change(result.Total, tendered),
		Items:          itemsFromLines(c.Lines),
	}

	sale, err := s.Sales.Create(ctx, params)
	if err != nil {
		s.countAttempt("failed", input.PaymentType)
		s.Logger.Error().Err(err).Str("register_id", registerID).Msg("sale submission failed, cart preserved")
		return sales.Sale{}, &SubmissionError{Err: err}
	}

	// the sale is durable at this point; a failed reset must not undo it
	if err := s.Carts.ClearSale(ctx, registerID); err != nil {
		s.Logger.Warn().Err(err).Str("register_id", registerID).Msg("register reset failed after sale")
	}

	s.countAttempt("completed", input.PaymentType)
	if obs.CheckoutAmount != nil {
		obs.CheckoutAmount.Observe(float64(sale.TotalAmount))
	}
	s.Logger.Info().
		Str("register_id", registerID).
		Str("sale_id", sale.ID).
		Str("receipt_no", sale.ReceiptNo).
		Int64("total", sale.TotalAmount).
		Msg("checkout completed")
	return sale, nil
}

// Preview recomputes the live figures for the register without touching
// anything, for the panel the cashier watches while scanning.
func (s *Service) Preview(ctx context.Context, registerID string) (cart.Cart, pricing.Result, error) {
	if s == nil || s.Carts == nil || s.Settings == nil {
		return cart.Cart{}, pricing.Result{}, errors.New("checkout service not configured")
	}
	c, err := s.Carts.Get(ctx, registerID)
	if err != nil {
		return cart.Cart{}, pricing.Result{}, err
	}
	rates, err := s.Settings.Rates(ctx)
	if err != nil {
		return cart.Cart{}, pricing.Result{}, err
	}
	return c, pricing.Compute(c.Lines, c.Discount, rates), nil
}

func (s *Service) acquire(registerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight == nil {
		s.inFlight = make(map[string]struct{})
	}
	if _, busy := s.inFlight[registerID]; busy {
		return false
	}
	s.inFlight[registerID] = struct{}{}
	return true
}

func (s *Service) release(registerID string) {
	s.mu.Lock()
	delete(s.inFlight, registerID)
	s.mu.Unlock()
}

func (s *Service) countAttempt(result, paymentType string) {
	if obs.CheckoutTotal == nil {
		return
	}
	if !validPayment(paymentType) {
		paymentType = "unknown"
	}
	obs.CheckoutTotal.WithLabelValues(result, paymentType).Inc()
}

func itemsFromLines(lines []pricing.Line) []sales.Item {
	items := make([]sales.Item, 0, len(lines))
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		items = append(items, sales.Item{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			UnitPrice: ln.UnitPrice,
			Qty:       ln.Qty,
		})
	}
	return items
}
