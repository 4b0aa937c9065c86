package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

const cacheKey = "settings:v1"

// Settings is the single-row store configuration: identity printed on
// receipts plus the rate snapshot the pricing engine runs on.
type Settings struct {
	StoreName    string    `json:"storeName"`
	CurrencyCode string    `json:"currencyCode"`
	TaxBps       int       `json:"taxBps"`
	PWDBps       int       `json:"pwdBps"`
	SeniorBps    int       `json:"seniorBps"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input carries an admin settings update. Nil fields are left unchanged.
type Input struct {
	StoreName    *string `json:"storeName"`
	CurrencyCode *string `json:"currencyCode"`
	TaxBps       *int    `json:"taxBps"`
	PWDBps       *int    `json:"pwdBps"`
	SeniorBps    *int    `json:"seniorBps"`
}

// Service reads and writes store settings. Reads go through a short Redis
// cache that fails open: a cache outage slows settings reads down, it never
// breaks checkout.
type Service struct {
	Pool     *pgxpool.Pool
	R        *redis.Client
	Defaults Settings
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Get returns the current settings, falling back to the configured defaults
// when the row has never been written.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	if s == nil || s.Pool == nil {
		return Settings{}, errors.New("settings service not configured")
	}
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}
	var out Settings
	err := s.Pool.QueryRow(ctx,
		`SELECT store_name, currency_code, tax_bps, pwd_bps, senior_bps, updated_at FROM settings WHERE id = 1`).
		Scan(&out.StoreName, &out.CurrencyCode, &out.TaxBps, &out.PWDBps, &out.SeniorBps, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.Defaults, nil
		}
		return Settings{}, err
	}
	s.toCache(ctx, out)
	return out, nil
}

// Rates derives the pricing rate snapshot checkout computes with.
func (s *Service) Rates(ctx context.Context) (pricing.Rates, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return pricing.Rates{}, err
	}
	return pricing.Rates{
		TaxBps:    current.TaxBps,
		PWDBps:    current.PWDBps,
		SeniorBps: current.SeniorBps,
	}, nil
}

// Update applies a partial settings change and invalidates the cache.
func (s *Service) Update(ctx context.Context, input Input) (Settings, error) {
	if s == nil || s.Pool == nil {
		return Settings{}, errors.New("settings service not configured")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	if input.StoreName != nil {
		current.StoreName = *input.StoreName
	}
	if input.CurrencyCode != nil {
		current.CurrencyCode = *input.CurrencyCode
	}
	if input.TaxBps != nil {
		current.TaxBps = *input.TaxBps
	}
	if input.PWDBps != nil {
		current.PWDBps = *input.PWDBps
	}
	if input.SeniorBps != nil {
		current.SeniorBps = *input.SeniorBps
	}
	if err := validateBps(current); err != nil {
		return Settings{}, err
	}

	row := s.Pool.QueryRow(ctx,
		`INSERT INTO settings (id, store_name, currency_code, tax_bps, pwd_bps, senior_bps, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, now())
		 ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			currency_code = EXCLUDED.currency_code,
			tax_bps = EXCLUDED.tax_bps,
			pwd_bps = EXCLUDED.pwd_bps,
			senior_bps = EXCLUDED.senior_bps,
			updated_at = now()
		 RETURNING store_name, currency_code, tax_bps, pwd_bps, senior_bps, updated_at`,
		current.StoreName, current.CurrencyCode, current.TaxBps, current.PWDBps, current.SeniorBps)
	var out Settings
	if err := row.Scan(&out.StoreName, &out.CurrencyCode, &out.TaxBps, &out.PWDBps, &out.SeniorBps, &out.UpdatedAt); err != nil {
		return Settings{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

func validateBps(current Settings) error {
	for _, bps := range []int{current.TaxBps, current.PWDBps, current.SeniorBps} {
		if bps < 0 || bps > 10000 {
			return common.NewAppError("VALIDATION_ERROR", "rates must be between 0 and 10000 basis points", 400, nil)
		}
	}
	return nil
}

func (s *Service) fromCache(ctx context.Context) (Settings, bool) {
	if s.R == nil {
		return Settings{}, false
	}
	data, err := s.R.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.Logger.Debug().Err(err).Msg("settings cache read failed")
		}
		return Settings{}, false
	}
	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, false
	}
	return out, true
}

func (s *Service) toCache(ctx context.Context, value Settings) {
	if s.R == nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.R.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		s.Logger.Debug().Err(err).Msg("settings cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.R == nil {
		return
	}
	if err := s.R.Del(ctx, cacheKey).Err(); err != nil {
		s.Logger.Warn().Err(err).Msg("settings cache invalidation failed")
	}
}
