package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/cart"
	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/sales"
)

type stubCatalog map[string]catalog.Product

func (s stubCatalog) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := s[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type fakeRates struct{ rates pricing.Rates }

func (f fakeRates) Rates(context.Context) (pricing.Rates, error) { return f.rates, nil }

type fakeSales struct {
	calls int
	fail  error
	last  sales.CreateParams
}

func (f *fakeSales) Create(_ context.Context, params sales.CreateParams) (sales.Sale, error) {
	f.calls++
	f.last = params
	if f.fail != nil {
		return sales.Sale{}, f.fail
	}
	return sales.Sale{
		ID:             "sale-1",
		ReceiptNo:      "R-20260831-AAAAAA",
		OperatorID:     params.OperatorID,
		CustomerName:   params.CustomerName,
		PaymentType:    params.PaymentType,
		DiscountType:   params.DiscountType,
		Subtotal:       params.Subtotal,
		DiscountAmount: params.DiscountAmount,
		TaxAmount:      params.TaxAmount,
		TotalAmount:    params.TotalAmount,
		AmountTendered: params.AmountTendered,
		ChangeDue:      params.ChangeDue,
		Status:         sales.StatusCompleted,
		Items:          params.Items,
	}, nil
}

func newTestService(t *testing.T) (*Service, *cart.Service, *fakeSales) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	carts := &cart.Service{
		R: client,
		Catalog: stubCatalog{
			"p-coffee": {ID: "p-coffee", Name: "Coffee Beans 500g", UnitPrice: 7500, Active: true},
			"p-milk":   {ID: "p-milk", Name: "Fresh Milk 1L", UnitPrice: 5000, Active: true},
		},
		TTL: time.Hour,
	}
	creator := &fakeSales{}
	svc := &Service{
		Carts:    carts,
		Settings: fakeRates{rates: pricing.Rates{TaxBps: 1200, PWDBps: 2000, SeniorBps: 2000}},
		Sales:    creator,
	}
	return svc, carts, creator
}

func seedCart(t *testing.T, carts *cart.Service) {
	t.Helper()
	ctx := context.Background()
	_, err := carts.AddItem(ctx, "reg-1", "p-coffee", 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "reg-1", "p-milk", 1)
	require.NoError(t, err)
}

func TestAttemptCashSuccess(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)
	ctx := context.Background()

	sale, err := svc.Attempt(ctx, "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 250.00,
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(20000), sale.Subtotal)
	require.Equal(t, pricing.Money(0), sale.DiscountAmount)
	require.Equal(t, pricing.Money(2400), sale.TaxAmount)
	require.Equal(t, pricing.Money(22400), sale.TotalAmount)
	require.Equal(t, pricing.Money(25000), sale.AmountTendered)
	require.Equal(t, pricing.Money(2600), sale.ChangeDue)
	require.Equal(t, 1, creator.calls)

	c, err := carts.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Empty(t, c.Lines)
}

func TestAttemptPWDDiscount(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)
	ctx := context.Background()
	_, err := carts.ToggleDiscount(ctx, "reg-1", pricing.KindPWD)
	require.NoError(t, err)

	sale, err := svc.Attempt(ctx, "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 179.20,
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(4000), sale.DiscountAmount)
	require.Equal(t, pricing.Money(1920), sale.TaxAmount)
	require.Equal(t, pricing.Money(17920), sale.TotalAmount)
	require.Equal(t, pricing.Money(0), sale.ChangeDue)
	require.Equal(t, "PWD", creator.last.DiscountType)

	// the discount selection survives the register reset
	c, err := carts.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Empty(t, c.Lines)
	require.True(t, c.Discount.PWD)
}

func TestAttemptNonCashForcedToTotal(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)

	sale, err := svc.Attempt(context.Background(), "op-1", "reg-1", Input{
		PaymentType:    "gcash",
		AmountTendered: 1.00,
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(22400), sale.AmountTendered)
	require.Equal(t, pricing.Money(0), sale.ChangeDue)
	require.Equal(t, "gcash", creator.last.PaymentType)
}

func TestAttemptEmptyCart(t *testing.T) {
	svc, _, creator := newTestService(t)

	_, err := svc.Attempt(context.Background(), "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 100,
	})
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Zero(t, creator.calls)
}

func TestAttemptUnknownPayment(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)

	_, err := svc.Attempt(context.Background(), "op-1", "reg-1", Input{
		PaymentType:    "cheque",
		AmountTendered: 500,
	})
	require.ErrorIs(t, err, ErrUnknownPayment)
	require.Zero(t, creator.calls)
}

func TestAttemptCashZeroTender(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)
	ctx := context.Background()

	_, err := svc.Attempt(ctx, "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 0,
	})
	require.ErrorIs(t, err, ErrInvalidTender)
	require.Zero(t, creator.calls)

	c, err := carts.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
}

func TestAttemptInsufficientPayment(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)
	ctx := context.Background()

	// one centavo short of the 22400 total
	_, err := svc.Attempt(ctx, "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 223.99,
	})
	var short *InsufficientPaymentError
	require.ErrorAs(t, err, &short)
	require.Equal(t, pricing.Money(1), short.Shortfall)
	require.Zero(t, creator.calls)

	// a rejected attempt leaves the cart untouched
	c, err := carts.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
}

func TestAttemptExactTenderWithinRounding(t *testing.T) {
	svc, carts, _ := newTestService(t)
	seedCart(t, carts)

	// 223.9999... style float noise must still round to the exact total
	sale, err := svc.Attempt(context.Background(), "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 224.00 - 0.001,
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Money(22400), sale.AmountTendered)
	require.Equal(t, pricing.Money(0), sale.ChangeDue)
}

func TestAttemptMissingUser(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)

	_, err := svc.Attempt(context.Background(), "", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 500,
	})
	require.ErrorIs(t, err, ErrMissingUser)
	require.Zero(t, creator.calls)
}

func TestAttemptSubmissionFailurePreservesCart(t *testing.T) {
	svc, carts, creator := newTestService(t)
	seedCart(t, carts)
	ctx := context.Background()
	creator.fail = errors.New("database unavailable")

	_, err := svc.Attempt(ctx, "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 500,
	})
	var sub *SubmissionError
	require.ErrorAs(t, err, &sub)
	require.ErrorIs(t, err, creator.fail)
	require.Contains(t, sub.Error(), "database unavailable")
	require.Equal(t, 1, creator.calls)

	c, err := carts.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 2)
}

func TestAttemptSingleInFlightPerRegister(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.True(t, svc.acquire("reg-1"))
	_, err := svc.Attempt(context.Background(), "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 100,
	})
	require.ErrorIs(t, err, ErrBusy)

	svc.release("reg-1")
	_, err = svc.Attempt(context.Background(), "op-1", "reg-1", Input{
		PaymentType:    "cash",
		AmountTendered: 100,
	})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPreviewComputesLiveTotals(t *testing.T) {
	svc, carts, _ := newTestService(t)
	seedCart(t, carts)
	ctx := context.Background()
	_, err := carts.ToggleDiscount(ctx, "reg-1", pricing.KindSenior)
	require.NoError(t, err)

	c, result, err := svc.Preview(ctx, "reg-1")
	require.NoError(t, err)
	require.Equal(t, "Senior Citizen", c.Discount.Label())
	require.Equal(t, pricing.Money(20000), result.Subtotal)
	require.Equal(t, pricing.Money(4000), result.Discount)
	require.Equal(t, pricing.Money(17920), result.Total)
}
