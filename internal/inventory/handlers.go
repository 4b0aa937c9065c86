package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler exposes the inventory HTTP endpoints.
type Handler struct {
	Svc *Service
}

// List serves GET /inventory/movements.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "inventory service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	movements, total, err := h.Svc.List(r.Context(), r.URL.Query().Get("productId"), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       movements,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

type adjustRequest struct {
	ProductID string `json:"productId"`
	QtyDelta  int    `json:"qtyDelta"`
	Reason    string `json:"reason"`
}

// Adjust serves POST /inventory/adjust (admin).
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "inventory service not configured", nil)
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	movement, err := h.Svc.Adjust(r.Context(), req.ProductID, req.QtyDelta, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": movement})
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
}
