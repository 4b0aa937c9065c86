package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

var validate = validator.New()

// Handler exposes the checkout HTTP endpoints for a register.
type Handler struct {
	Svc *Service
}

type checkoutRequest struct {
	CustomerName   string  `json:"customerName"`
	PaymentType    string  `json:"paymentType" validate:"required"`
	AmountTendered float64 `json:"amountTendered" validate:"gte=0"`
}

// Submit serves POST /registers/{registerID}/checkout.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	operatorID, ok := common.OperatorID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "MISSING_USER", "authentication required", nil)
		return
	}
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid checkout payload", err.Error())
		return
	}

	sale, err := h.Svc.Attempt(r.Context(), operatorID, chi.URLParam(r, "registerID"), Input{
		CustomerName:   req.CustomerName,
		PaymentType:    req.PaymentType,
		AmountTendered: req.AmountTendered,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": sale})
}

// Preview serves GET /registers/{registerID}/checkout, the live totals the
// register panel polls while the cashier scans.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	c, result, err := h.Svc.Preview(r.Context(), chi.URLParam(r, "registerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"cart":          c,
		"pricing":       result,
		"discountLabel": c.Discount.Label(),
	}})
}

func writeError(w http.ResponseWriter, err error) {
	var short *InsufficientPaymentError
	var sub *SubmissionError
	switch {
	case errors.Is(err, ErrEmptyCart):
		common.JSONError(w, http.StatusBadRequest, "EMPTY_CART", "cart is empty", nil)
	case errors.Is(err, ErrUnknownPayment):
		common.JSONError(w, http.StatusBadRequest, "INVALID_PAYMENT", "unknown payment method", nil)
	case errors.Is(err, ErrInvalidTender):
		common.JSONError(w, http.StatusBadRequest, "INVALID_TENDER", "tendered amount must be greater than zero", nil)
	case errors.As(err, &short):
		common.JSONError(w, http.StatusBadRequest, "INSUFFICIENT_PAYMENT", "amount tendered is below the total", map[string]any{
			"shortfall":        short.Shortfall,
			"shortfallDisplay": pricing.Format(short.Shortfall),
		})
	case errors.Is(err, ErrMissingUser):
		common.JSONError(w, http.StatusUnauthorized, "MISSING_USER", "authentication required", nil)
	case errors.Is(err, ErrBusy):
		common.JSONError(w, http.StatusConflict, "CHECKOUT_IN_PROGRESS", "another checkout is in progress for this register", nil)
	case errors.As(err, &sub):
		common.JSONError(w, http.StatusBadGateway, "SUBMISSION_FAILED", submissionMessage(sub), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}

// submissionMessage carries the collaborator's own message through to the
// operator, prefixed so a dead connection reads differently from a sale the
// backend refused. A Postgres error or a domain rejection means the server
// answered; anything else is treated as unreachable.
func submissionMessage(sub *SubmissionError) string {
	var appErr *common.AppError
	var pgErr *pgconn.PgError
	if errors.As(sub.Err, &appErr) || errors.As(sub.Err, &pgErr) {
		return "sale service rejected the request: " + sub.Err.Error()
	}
	return "sale service unreachable: " + sub.Err.Error()
}
