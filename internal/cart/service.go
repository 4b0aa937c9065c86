package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ErrNotFound indicates the referenced cart line could not be located.
var ErrNotFound = errors.New("cart line not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Cart is the in-progress transaction for one register. It lives in Redis
// with a TTL that is refreshed on every mutation; an untouched cart simply
// expires. The discount selection survives ClearSale on purpose, so the
// cashier's last-used discount class carries into the next transaction.
type Cart struct {
	RegisterID   string            `json:"registerId"`
	Lines        []pricing.Line    `json:"lines"`
	Discount     pricing.Selection `json:"discount"`
	CustomerName string            `json:"customerName,omitempty"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// ProductSource is the catalog access the cart needs when adding a line.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

// Service encapsulates register cart operations.
type Service struct {
	R       *redis.Client
	Catalog ProductSource
	TTL     time.Duration
	Now     func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(registerID string) string {
	return "cart:" + registerID
}

// Get loads the register's cart, returning an empty cart when none exists.
func (s *Service) Get(ctx context.Context, registerID string) (Cart, error) {
	if s == nil || s.R == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	registerID = strings.TrimSpace(registerID)
	if registerID == "" {
		return Cart{}, fmt.Errorf("register id required: %w", ErrInvalidInput)
	}
	data, err := s.R.Get(ctx, cartKey(registerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{RegisterID: registerID}, nil
		}
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		// a corrupt cart is unrecoverable; start the register fresh
		return Cart{RegisterID: registerID}, nil
	}
	c.RegisterID = registerID
	return c, nil
}

// AddItem appends a product line or increments an existing one. The unit
// price and name are snapshot from the catalog at add time and never
// re-fetched, so a mid-transaction price change does not affect this cart.
func (s *Service) AddItem(ctx context.Context, registerID, productID string, qty int) (Cart, error) {
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	if s == nil || s.Catalog == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Get(ctx, registerID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Qty += qty
			return c, s.save(ctx, &c)
		}
	}
	product, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	c.Lines = append(c.Lines, pricing.Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Qty:       qty,
	})
	return c, s.save(ctx, &c)
}

// UpdateQty sets the quantity for an existing line. A quantity of zero or
// below removes the line; a line is never stored with qty 0.
func (s *Service) UpdateQty(ctx context.Context, registerID, productID string, qty int) (Cart, error) {
	c, err := s.Get(ctx, registerID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if qty <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Qty = qty
		}
		return c, s.save(ctx, &c)
	}
	return Cart{}, ErrNotFound
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, registerID, productID string) (Cart, error) {
	return s.UpdateQty(ctx, registerID, productID, 0)
}

// ToggleDiscount flips the requested discount class, enforcing mutual
// exclusivity through the pricing selection itself.
func (s *Service) ToggleDiscount(ctx context.Context, registerID string, kind pricing.Kind) (Cart, error) {
	if !kind.Valid() {
		return Cart{}, fmt.Errorf("unknown discount kind %q: %w", kind, ErrInvalidInput)
	}
	c, err := s.Get(ctx, registerID)
	if err != nil {
		return Cart{}, err
	}
	c.Discount = c.Discount.Toggle(kind)
	return c, s.save(ctx, &c)
}

// SetCustomer records the optional customer name for the receipt.
func (s *Service) SetCustomer(ctx context.Context, registerID, name string) (Cart, error) {
	c, err := s.Get(ctx, registerID)
	if err != nil {
		return Cart{}, err
	}
	c.CustomerName = strings.TrimSpace(name)
	return c, s.save(ctx, &c)
}

// ClearSale resets the register after a completed sale: lines and customer
// name are dropped, the discount selection stays as last used.
func (s *Service) ClearSale(ctx context.Context, registerID string) error {
	c, err := s.Get(ctx, registerID)
	if err != nil {
		return err
	}
	c.Lines = nil
	c.CustomerName = ""
	return s.save(ctx, &c)
}

// Abandon discards the register cart entirely, selection included.
func (s *Service) Abandon(ctx context.Context, registerID string) error {
	if s == nil || s.R == nil {
		return errors.New("cart service not configured")
	}
	return s.R.Del(ctx, cartKey(strings.TrimSpace(registerID))).Err()
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.now()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, cartKey(c.RegisterID), data, s.ttl()).Err()
}
