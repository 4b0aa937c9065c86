package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/common"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorBody {
	t.Helper()
	var body struct {
		Error common.ErrorBody `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestWriteErrorValidationCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART"},
		{ErrUnknownPayment, http.StatusBadRequest, "INVALID_PAYMENT"},
		{ErrInvalidTender, http.StatusBadRequest, "INVALID_TENDER"},
		{ErrMissingUser, http.StatusUnauthorized, "MISSING_USER"},
		{ErrBusy, http.StatusConflict, "CHECKOUT_IN_PROGRESS"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code, tc.code)
		require.Equal(t, tc.code, decodeError(t, rec).Code)
	}
}

func TestWriteErrorShortfallDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &InsufficientPaymentError{Shortfall: 2400})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "INSUFFICIENT_PAYMENT", body.Code)
	details, ok := body.Details.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "24.00", details["shortfallDisplay"])
}

func TestWriteErrorSubmissionUnreachable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &SubmissionError{Err: errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "SUBMISSION_FAILED", body.Code)
	require.Contains(t, body.Message, "sale service unreachable")
	require.Contains(t, body.Message, "connection refused")
}

func TestWriteErrorSubmissionRejected(t *testing.T) {
	// a PgError means the database answered and refused the sale
	rec := httptest.NewRecorder()
	writeError(rec, &SubmissionError{Err: &pgconn.PgError{Code: "23505", Message: "duplicate key value"}})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeError(t, rec)
	require.Equal(t, "SUBMISSION_FAILED", body.Code)
	require.Contains(t, body.Message, "sale service rejected the request")

	// so does a domain rejection carried as an AppError
	rec = httptest.NewRecorder()
	writeError(rec, &SubmissionError{Err: common.NewAppError("CONFLICT", "sale is not open", http.StatusConflict, nil)})
	require.Contains(t, decodeError(t, rec).Message, "sale service rejected the request")
}
