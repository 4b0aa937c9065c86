package inventory

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
)

// Movement is one stock change, either from a sale lifecycle event or a
// manual admin adjustment.
type Movement struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	SaleID    string    `json:"saleId,omitempty"`
	QtyDelta  int       `json:"qtyDelta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service reads the movement ledger and applies manual stock adjustments.
// Sale-driven movements are written by the sales service in its own
// transaction; this service never touches those paths.
type Service struct {
	Pool *pgxpool.Pool
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns movements, newest first, optionally filtered by product.
func (s *Service) List(ctx context.Context, productID string, page, perPage int) ([]Movement, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("inventory service not configured")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	where := ""
	args := []any{}
	if productID = strings.TrimSpace(productID); productID != "" {
		where = "WHERE product_id = $1"
		args = append(args, productID)
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, product_id, sale_id, qty_delta, reason, created_at FROM inventory_movements `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2),
		append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var movements []Movement
	for rows.Next() {
		var (
			m      Movement
			saleID *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &saleID, &m.QtyDelta, &m.Reason, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		if saleID != nil {
			m.SaleID = *saleID
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM inventory_movements `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// Adjust applies a manual stock correction: the product stock and the
// movement row commit together or not at all.
func (s *Service) Adjust(ctx context.Context, productID string, delta int, reason string) (Movement, error) {
	if s == nil || s.Pool == nil {
		return Movement{}, errors.New("inventory service not configured")
	}
	if delta == 0 {
		return Movement{}, common.NewAppError("VALIDATION_ERROR", "qtyDelta must be non-zero", 400, nil)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual_adjust"
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Movement{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`, productID, delta)
	if err != nil {
		return Movement{}, err
	}
	if tag.RowsAffected() == 0 {
		return Movement{}, common.NewAppError("NOT_FOUND", "product not found", 404, nil)
	}

	m := Movement{
		ID:        uuid.NewString(),
		ProductID: productID,
		QtyDelta:  delta,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO inventory_movements (id, product_id, sale_id, qty_delta, reason, created_at)
		 VALUES ($1, $2, NULL, $3, $4, $5)`,
		m.ID, m.ProductID, m.QtyDelta, m.Reason, m.CreatedAt); err != nil {
		return Movement{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Movement{}, err
	}
	return m, nil
}
