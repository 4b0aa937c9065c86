package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

type stubCatalog map[string]catalog.Product

func (s stubCatalog) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	p, ok := s[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := &Service{
		R: client,
		Catalog: stubCatalog{
			"p-1": {ID: "p-1", Name: "Rice 5kg", UnitPrice: 28000, Active: true},
			"p-2": {ID: "p-2", Name: "Cooking Oil 1L", UnitPrice: 9500, Active: true},
		},
		TTL: time.Hour,
	}
	return svc, mr
}

func TestGetReturnsEmptyCartWhenMissing(t *testing.T) {
	svc, _ := newTestService(t)
	c, err := svc.Get(context.Background(), "reg-9")
	require.NoError(t, err)
	require.Equal(t, "reg-9", c.RegisterID)
	require.Empty(t, c.Lines)
	require.False(t, c.Discount.Active())
}

func TestGetRequiresRegisterID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "reg-1", "p-1", 2)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, pricing.Money(28000), c.Lines[0].UnitPrice)
	require.Equal(t, "Rice 5kg", c.Lines[0].Name)
	require.Equal(t, 2, c.Lines[0].Qty)
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "reg-1", "p-1", 1)
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, "reg-1", "p-1", 3)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, 4, c.Lines[0].Qty)
}

func TestAddItemRejectsNonPositiveQty(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), "reg-1", "p-1", 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), "reg-1", "p-404", 1)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateQtyZeroRemovesLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "reg-1", "p-1", 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "reg-1", "p-2", 1)
	require.NoError(t, err)

	c, err := svc.UpdateQty(ctx, "reg-1", "p-1", 0)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	require.Equal(t, "p-2", c.Lines[0].ProductID)
}

func TestUpdateQtyUnknownLine(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateQty(context.Background(), "reg-1", "p-1", 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestToggleDiscountExclusive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.ToggleDiscount(ctx, "reg-1", pricing.KindPWD)
	require.NoError(t, err)
	require.True(t, c.Discount.PWD)

	c, err = svc.ToggleDiscount(ctx, "reg-1", pricing.KindSenior)
	require.NoError(t, err)
	require.False(t, c.Discount.PWD)
	require.True(t, c.Discount.Senior)

	c, err = svc.ToggleDiscount(ctx, "reg-1", pricing.KindSenior)
	require.NoError(t, err)
	require.False(t, c.Discount.Active())
}

func TestToggleDiscountUnknownKind(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ToggleDiscount(context.Background(), "reg-1", "employee")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestClearSaleKeepsDiscountSelection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "reg-1", "p-1", 1)
	require.NoError(t, err)
	_, err = svc.SetCustomer(ctx, "reg-1", "Juan Dela Cruz")
	require.NoError(t, err)
	_, err = svc.ToggleDiscount(ctx, "reg-1", pricing.KindSenior)
	require.NoError(t, err)

	require.NoError(t, svc.ClearSale(ctx, "reg-1"))

	c, err := svc.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Empty(t, c.Lines)
	require.Empty(t, c.CustomerName)
	require.True(t, c.Discount.Senior)
}

func TestAbandonDropsEverything(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "reg-1", "p-1", 1)
	require.NoError(t, err)
	_, err = svc.ToggleDiscount(ctx, "reg-1", pricing.KindPWD)
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, "reg-1"))
	require.False(t, mr.Exists("cart:reg-1"))

	c, err := svc.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.False(t, c.Discount.Active())
}

func TestCorruptCartStartsFresh(t *testing.T) {
	svc, mr := newTestService(t)
	require.NoError(t, mr.Set("cart:reg-1", "{not json"))

	c, err := svc.Get(context.Background(), "reg-1")
	require.NoError(t, err)
	require.Empty(t, c.Lines)
}

func TestCartExpiresWithTTL(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "reg-1", "p-1", 1)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	c, err := svc.Get(ctx, "reg-1")
	require.NoError(t, err)
	require.Empty(t, c.Lines)
}
