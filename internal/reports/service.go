package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// DailySummary aggregates completed sales for one calendar day.
type DailySummary struct {
	Day            string        `json:"day"`
	SalesCount     int64         `json:"salesCount"`
	GrossAmount    pricing.Money `json:"grossAmount"`
	DiscountAmount pricing.Money `json:"discountAmount"`
	TaxAmount      pricing.Money `json:"taxAmount"`
	NetAmount      pricing.Money `json:"netAmount"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductID string        `json:"productId"`
	Name      string        `json:"name"`
	QtySold   int64         `json:"qtySold"`
	Revenue   pricing.Money `json:"revenue"`
}

// Source defines the database access required for report operations.
type Source interface {
	SalesRange(ctx context.Context, from, to time.Time) ([]DailySummary, error)
	TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error)
}

// Service provides cached access to sales aggregates. Voided and refunded
// sales are excluded by the underlying queries.
type Service struct {
	Src          Source
	R            *redis.Client
	TTL          time.Duration
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts))
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// SalesRange returns daily summaries between from inclusive and to exclusive.
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) ([]DailySummary, error) {
	if s == nil || s.Src == nil {
		return nil, fmt.Errorf("reports service not configured")
	}
	key := cacheKey("rp", "sales", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if rows, ok := fromCache[[]DailySummary](ctx, s, key); ok {
		return rows, nil
	}
	rows, err := s.Src.SalesRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

// TopProducts returns the best sellers by quantity over the trailing range.
func (s *Service) TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error) {
	if s == nil || s.Src == nil {
		return nil, fmt.Errorf("reports service not configured")
	}
	if days <= 0 {
		days = s.DefaultRange
	}
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 10
	}
	key := cacheKey("rp", "top", days, limit)
	if rows, ok := fromCache[[]TopProduct](ctx, s, key); ok {
		return rows, nil
	}
	rows, err := s.Src.TopProducts(ctx, s.now().AddDate(0, 0, -days), limit)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows)
	return rows, nil
}

func fromCache[T any](ctx context.Context, s *Service, key string) (T, bool) {
	var zero T
	if s.R == nil || s.TTL <= 0 {
		return zero, false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, false
	}
	return out, true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
