package sales

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
)

// ErrNotFound indicates the requested sale could not be located.
var ErrNotFound = errors.New("sale not found")

const pgUniqueViolation = "23505"

// Service persists sales and owns their status transitions. Stock
// decrements and inventory movements ride in the same transaction as the
// sale record, so a failed insert leaves inventory untouched.
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

const saleColumns = `id, receipt_no, operator_id, customer_name, payment_type, discount_type,
	subtotal, discount_amount, tax_amount, total_amount, amount_tendered, change_due,
	status, status_reason, status_changed_by, status_changed_at, created_at`

// Create persists a sale with its items, decrements stock, and logs
// inventory movements, all in one transaction. A receipt number collision
// is retried once with a fresh suffix.
func (s *Service) Create(ctx context.Context, params CreateParams) (Sale, error) {
	if s == nil || s.Pool == nil {
		return Sale{}, errors.New("sales service not configured")
	}
	if params.OperatorID == "" {
		return Sale{}, common.NewAppError("MISSING_USER", "operator identity required", 401, nil)
	}
	if len(params.Items) == 0 {
		return Sale{}, common.NewAppError("EMPTY_CART", "sale has no items", 400, nil)
	}

	sale, err := s.createOnce(ctx, params, s.receiptNo())
	if err != nil && isUniqueViolation(err) {
		sale, err = s.createOnce(ctx, params, s.receiptNo())
	}
	return sale, err
}

func (s *Service) createOnce(ctx context.Context, params CreateParams, receiptNo string) (Sale, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Sale{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	id := uuid.NewString()
	now := s.now()
	customer := strings.TrimSpace(params.CustomerName)
	row := tx.QueryRow(ctx,
		`INSERT INTO sales (id, receipt_no, operator_id, customer_name, payment_type, discount_type,
			subtotal, discount_amount, tax_amount, total_amount, amount_tendered, change_due, status, created_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+saleColumns,
		id, receiptNo, params.OperatorID, customer, params.PaymentType, params.DiscountType,
		params.Subtotal, params.DiscountAmount, params.TaxAmount, params.TotalAmount,
		params.AmountTendered, params.ChangeDue, string(StatusCompleted), now)
	sale, err := scanSale(row)
	if err != nil {
		return Sale{}, err
	}

	for _, item := range params.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO sale_items (id, sale_id, product_id, name, unit_price, qty)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), id, item.ProductID, item.Name, item.UnitPrice, item.Qty); err != nil {
			return Sale{}, err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			item.ProductID, item.Qty); err != nil {
			return Sale{}, err
		}
		if err := insertMovement(ctx, tx, item.ProductID, id, -item.Qty, "sale", now); err != nil {
			return Sale{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	sale.Items = params.Items
	return sale, nil
}

// Get loads one sale with its items.
func (s *Service) Get(ctx context.Context, id string) (Sale, error) {
	if s == nil || s.Pool == nil {
		return Sale{}, errors.New("sales service not configured")
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		return Sale{}, err
	}
	items, err := s.loadItems(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

// List returns sales matching the filter, newest first, without items.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, int64, error) {
	if s == nil || s.Pool == nil {
		return nil, 0, errors.New("sales service not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	where, args := filterClause(filter)
	rows, err := s.Pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2),
		append(args, perPage, (page-1)*perPage)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var result []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM sales `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// Void cancels a completed sale and restocks its items.
func (s *Service) Void(ctx context.Context, id, adminID, reason string) (Sale, error) {
	return s.transition(ctx, id, adminID, reason, StatusVoided, "void_restock")
}

// Refund marks a completed sale refunded and restocks its items.
func (s *Service) Refund(ctx context.Context, id, adminID, reason string) (Sale, error) {
	return s.transition(ctx, id, adminID, reason, StatusRefunded, "refund_restock")
}

// transition is the single path for completed -> voided|refunded. Any other
// starting status is a conflict: voided and refunded are terminal.
func (s *Service) transition(ctx context.Context, id, adminID, reason string, to Status, movementReason string) (Sale, error) {
	if s == nil || s.Pool == nil {
		return Sale{}, errors.New("sales service not configured")
	}
	if strings.TrimSpace(reason) == "" {
		return Sale{}, common.NewAppError("VALIDATION_ERROR", "reason is required", 400, nil)
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Sale{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM sales WHERE id = $1 FOR UPDATE`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, err
	}
	if Status(status) != StatusCompleted {
		return Sale{}, common.NewAppError("CONFLICT",
			fmt.Sprintf("sale is %s and cannot be %s", status, to), 409, nil)
	}

	now := s.now()
	row := tx.QueryRow(ctx,
		`UPDATE sales SET status = $2, status_reason = $3, status_changed_by = $4, status_changed_at = $5
		 WHERE id = $1 RETURNING `+saleColumns,
		id, string(to), strings.TrimSpace(reason), adminID, now)
	sale, err := scanSale(row)
	if err != nil {
		return Sale{}, err
	}

	items, err := loadItemsTx(ctx, tx, id)
	if err != nil {
		return Sale{}, err
	}
	for _, item := range items {
		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
			item.ProductID, item.Qty); err != nil {
			return Sale{}, err
		}
		if err := insertMovement(ctx, tx, item.ProductID, id, item.Qty, movementReason, now); err != nil {
			return Sale{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, err
	}
	if obs.SaleStatusTotal != nil {
		obs.SaleStatusTotal.WithLabelValues(string(to)).Inc()
	}
	sale.Items = items
	return sale, nil
}

func (s *Service) loadItems(ctx context.Context, saleID string) ([]Item, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT product_id, name, unit_price, qty FROM sale_items WHERE sale_id = $1 ORDER BY name`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func loadItemsTx(ctx context.Context, tx pgx.Tx, saleID string) ([]Item, error) {
	rows, err := tx.Query(ctx,
		`SELECT product_id, name, unit_price, qty FROM sale_items WHERE sale_id = $1 ORDER BY name`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Qty); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertMovement(ctx context.Context, tx pgx.Tx, productID, saleID string, delta int, reason string, at time.Time) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO inventory_movements (id, product_id, sale_id, qty_delta, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), productID, saleID, delta, reason, at)
	return err
}

// receiptNo builds a date-prefixed receipt number with a random suffix.
func (s *Service) receiptNo() string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("R-%s-%s", s.now().Format("20060102"), strings.ToUpper(hex.EncodeToString(suffix)))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func filterClause(filter ListFilter) (string, []any) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanSale(row pgx.Row) (Sale, error) {
	var (
		sale         Sale
		customer     *string
		discountType *string
		reason       *string
		changedBy    *string
		changedAt    *time.Time
	)
	err := row.Scan(&sale.ID, &sale.ReceiptNo, &sale.OperatorID, &customer, &sale.PaymentType, &discountType,
		&sale.Subtotal, &sale.DiscountAmount, &sale.TaxAmount, &sale.TotalAmount,
		&sale.AmountTendered, &sale.ChangeDue, &sale.Status, &reason, &changedBy, &changedAt, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrNotFound
		}
		return Sale{}, fmt.Errorf("scan sale: %w", err)
	}
	if customer != nil {
		sale.CustomerName = *customer
	}
	if discountType != nil {
		sale.DiscountType = *discountType
	}
	if reason != nil {
		sale.StatusReason = *reason
	}
	if changedBy != nil {
		sale.StatusChangedBy = *changedBy
	}
	sale.StatusChangedAt = changedAt
	return sale, nil
}
