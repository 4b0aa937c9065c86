package sales

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReceiptNoFormat(t *testing.T) {
	svc := &Service{Now: func() time.Time {
		return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	}}
	got := svc.receiptNo()
	require.True(t, strings.HasPrefix(got, "R-20260831-"), "unexpected receipt number %q", got)
	require.Len(t, got, len("R-20260831-")+6)

	// suffixes are random, two calls should not collide
	require.NotEqual(t, got, svc.receiptNo())
}

func TestFilterClause(t *testing.T) {
	where, args := filterClause(ListFilter{})
	require.Empty(t, where)
	require.Empty(t, args)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	where, args = filterClause(ListFilter{From: &from, To: &to, Status: StatusCompleted})
	require.Equal(t, "WHERE created_at >= $1 AND created_at < $2 AND status = $3", where)
	require.Equal(t, []any{from, to, "completed"}, args)

	where, args = filterClause(ListFilter{Status: StatusVoided})
	require.Equal(t, "WHERE status = $1", where)
	require.Equal(t, []any{"voided"}, args)
}
