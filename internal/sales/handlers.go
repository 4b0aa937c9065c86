package sales

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler exposes the sales HTTP endpoints.
type Handler struct {
	Svc *Service
	// DefaultPerPage is the page size used when the client sends none.
	DefaultPerPage int
}

func (h *Handler) defaultPerPage() int {
	if h.DefaultPerPage > 0 {
		return h.DefaultPerPage
	}
	return 20
}

// List serves GET /sales with date range, status, and pagination filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sales service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.defaultPerPage())
	filter := ListFilter{Page: page, PerPage: perPage}
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid from timestamp", nil)
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid to timestamp", nil)
			return
		}
		filter.To = &t
	}
	if v := q.Get("status"); v != "" {
		filter.Status = Status(v)
	}
	list, total, err := h.Svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       list,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get serves GET /sales/{id} with the sale's items.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sales service not configured", nil)
		return
	}
	sale, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sale})
}

type statusRequest struct {
	Reason string `json:"reason"`
}

// Void serves POST /sales/{id}/void (admin).
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.voidFn)
}

// Refund serves POST /sales/{id}/refund (admin).
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.refundFn)
}

func (h *Handler) voidFn(r *http.Request, id, adminID, reason string) (Sale, error) {
	return h.Svc.Void(r.Context(), id, adminID, reason)
}

func (h *Handler) refundFn(r *http.Request, id, adminID, reason string) (Sale, error) {
	return h.Svc.Refund(r.Context(), id, adminID, reason)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, fn func(*http.Request, string, string, string) (Sale, error)) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sales service not configured", nil)
		return
	}
	adminID, ok := common.OperatorID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	sale, err := fn(r, chi.URLParam(r, "id"), adminID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sale})
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "sale not found", nil)
		return
	}
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
