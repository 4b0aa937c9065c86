package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ErrNotFound indicates the requested product could not be located.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entry. UnitPrice is in centavos. Stock is advisory
// for the register UI; the pricing core never enforces it.
type Product struct {
	ID        string        `json:"id"`
	Barcode   string        `json:"barcode"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Stock     int32         `json:"stock"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Input captures payload for creating or updating a product.
type Input struct {
	Barcode   string  `json:"barcode"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Stock     int32   `json:"stock"`
	Active    *bool   `json:"active"`
}

// Service provides catalog access backed by Postgres.
type Service struct {
	Pool *pgxpool.Pool
}

const productColumns = `id, barcode, name, unit_price, stock, active, created_at, updated_at`

// GetProduct fetches a single active product by identifier.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND active`, id)
	return scanProduct(row)
}

// GetByBarcode resolves the register scan path.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, ErrNotFound
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND active`, barcode)
	return scanProduct(row)
}

// List returns products matching an optional search term, paginated.
func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]Product, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("catalog service not configured")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	pattern := "%" + strings.TrimSpace(search) + "%"
	rows, err := s.Pool.Query(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE active AND (name ILIKE $1 OR barcode ILIKE $1)
		 ORDER BY name LIMIT $2 OFFSET $3`,
		pattern, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.Pool.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE active AND (name ILIKE $1 OR barcode ILIKE $1)`,
		pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create inserts a new product.
func (s *Service) Create(ctx context.Context, input Input) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if strings.TrimSpace(input.Name) == "" {
		return Product{}, common.NewAppError("VALIDATION_ERROR", "name is required", 400, nil)
	}
	if input.UnitPrice < 0 {
		return Product{}, common.NewAppError("VALIDATION_ERROR", "unitPrice must be non-negative", 400, nil)
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	id := uuid.NewString()
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO products (id, barcode, name, unit_price, stock, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+productColumns,
		id, strings.TrimSpace(input.Barcode), strings.TrimSpace(input.Name),
		pricing.FromFloat(input.UnitPrice), input.Stock, active)
	return scanProduct(row)
}

// Update patches name, barcode, price, stock, or active state.
func (s *Service) Update(ctx context.Context, id string, input Input) (Product, error) {
	if s == nil || s.Pool == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	existing, err := s.GetProductAny(ctx, id)
	if err != nil {
		return Product{}, err
	}
	name := existing.Name
	if strings.TrimSpace(input.Name) != "" {
		name = strings.TrimSpace(input.Name)
	}
	barcode := existing.Barcode
	if strings.TrimSpace(input.Barcode) != "" {
		barcode = strings.TrimSpace(input.Barcode)
	}
	price := existing.UnitPrice
	if input.UnitPrice > 0 {
		price = pricing.FromFloat(input.UnitPrice)
	}
	stock := existing.Stock
	if input.Stock != 0 {
		stock = input.Stock
	}
	active := existing.Active
	if input.Active != nil {
		active = *input.Active
	}
	row := s.Pool.QueryRow(ctx,
		`UPDATE products SET barcode = $2, name = $3, unit_price = $4, stock = $5, active = $6, updated_at = now()
		 WHERE id = $1 RETURNING `+productColumns,
		id, barcode, name, price, stock, active)
	return scanProduct(row)
}

// GetProductAny fetches a product regardless of active state, for admin edits.
func (s *Service) GetProductAny(ctx context.Context, id string) (Product, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.UnitPrice, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
