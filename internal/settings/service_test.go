package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newCachedService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{R: client, CacheTTL: time.Minute}, mr
}

func TestCacheRoundTrip(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	want := Settings{StoreName: "Kasir POS", CurrencyCode: "PHP", TaxBps: 1200, PWDBps: 2000, SeniorBps: 2000}

	svc.toCache(ctx, want)
	got, ok := svc.fromCache(ctx)
	require.True(t, ok)
	require.Equal(t, want, got)

	svc.invalidate(ctx)
	_, ok = svc.fromCache(ctx)
	require.False(t, ok)
}

func TestCacheExpires(t *testing.T) {
	svc, mr := newCachedService(t)
	ctx := context.Background()

	svc.toCache(ctx, Settings{StoreName: "Kasir POS"})
	mr.FastForward(2 * time.Minute)

	_, ok := svc.fromCache(ctx)
	require.False(t, ok)
}

func TestCorruptCacheMisses(t *testing.T) {
	svc, mr := newCachedService(t)
	require.NoError(t, mr.Set(cacheKey, "{oops"))

	_, ok := svc.fromCache(context.Background())
	require.False(t, ok)
}

func TestValidateBpsBounds(t *testing.T) {
	require.NoError(t, validateBps(Settings{TaxBps: 0, PWDBps: 10000, SeniorBps: 2000}))
	require.Error(t, validateBps(Settings{TaxBps: -1}))
	require.Error(t, validateBps(Settings{SeniorBps: 10001}))
}
