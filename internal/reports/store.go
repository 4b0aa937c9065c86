package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed report source.
type Store struct {
	Pool *pgxpool.Pool
}

// SalesRange aggregates completed sales per day in [from, to).
func (st *Store) SalesRange(ctx context.Context, from, to time.Time) ([]DailySummary, error) {
	if st == nil || st.Pool == nil {
		return nil, errors.New("reports store not configured")
	}
	rows, err := st.Pool.Query(ctx,
		`SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
			count(*),
			coalesce(sum(subtotal), 0),
			coalesce(sum(discount_amount), 0),
			coalesce(sum(tax_amount), 0),
			coalesce(sum(total_amount), 0)
		 FROM sales
		 WHERE status = 'completed' AND created_at >= $1 AND created_at < $2
		 GROUP BY 1 ORDER BY 1`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailySummary
	for rows.Next() {
		var d DailySummary
		if err := rows.Scan(&d.Day, &d.SalesCount, &d.GrossAmount, &d.DiscountAmount, &d.TaxAmount, &d.NetAmount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopProducts ranks items on completed sales since the given time.
func (st *Store) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error) {
	if st == nil || st.Pool == nil {
		return nil, errors.New("reports store not configured")
	}
	rows, err := st.Pool.Query(ctx,
		`SELECT i.product_id, max(i.name),
			coalesce(sum(i.qty), 0),
			coalesce(sum(i.qty * i.unit_price), 0)
		 FROM sale_items i
		 JOIN sales s ON s.id = i.sale_id
		 WHERE s.status = 'completed' AND s.created_at >= $1
		 GROUP BY i.product_id
		 ORDER BY sum(i.qty) DESC
		 LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TopProduct
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.QtySold, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
