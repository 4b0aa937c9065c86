package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:51234"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.44:9000"
	require.Equal(t, "192.0.2.44", ClientIP(r))
}

func TestParsePaginationDefaultsAndClamp(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/sales", nil)
	page, perPage := ParsePagination(r, 20)
	require.Equal(t, 1, page)
	require.Equal(t, 20, perPage)

	r = httptest.NewRequest(http.MethodGet, "/sales?page=3&limit=50", nil)
	page, perPage = ParsePagination(r, 20)
	require.Equal(t, 3, page)
	require.Equal(t, 50, perPage)

	r = httptest.NewRequest(http.MethodGet, "/sales?limit=100000", nil)
	_, perPage = ParsePagination(r, 20)
	require.Equal(t, maxPerPage, perPage)
}
