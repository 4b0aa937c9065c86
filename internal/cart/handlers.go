package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Handler exposes the register cart HTTP endpoints.
type Handler struct {
	Svc *Service
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type qtyRequest struct {
	Qty int `json:"qty"`
}

type discountRequest struct {
	Kind string `json:"kind"`
}

type customerRequest struct {
	Name string `json:"name"`
}

// Get serves GET /registers/{registerID}/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "registerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, c)
}

// AddItem serves POST /registers/{registerID}/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "registerID"), req.ProductID, req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	countMutation("add_item")
	respond(w, c)
}

// UpdateQty serves PATCH /registers/{registerID}/cart/items/{productID}.
func (h *Handler) UpdateQty(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req qtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.UpdateQty(r.Context(), chi.URLParam(r, "registerID"), chi.URLParam(r, "productID"), req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	countMutation("update_qty")
	respond(w, c)
}

// RemoveItem serves DELETE /registers/{registerID}/cart/items/{productID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "registerID"), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, err)
		return
	}
	countMutation("remove_item")
	respond(w, c)
}

// ToggleDiscount serves POST /registers/{registerID}/cart/discount.
func (h *Handler) ToggleDiscount(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.ToggleDiscount(r.Context(), chi.URLParam(r, "registerID"), pricing.Kind(req.Kind))
	if err != nil {
		writeError(w, err)
		return
	}
	countMutation("toggle_discount")
	respond(w, c)
}

// SetCustomer serves PUT /registers/{registerID}/cart/customer.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	c, err := h.Svc.SetCustomer(r.Context(), chi.URLParam(r, "registerID"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, c)
}

// Abandon serves DELETE /registers/{registerID}/cart.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	if err := h.Svc.Abandon(r.Context(), chi.URLParam(r, "registerID")); err != nil {
		writeError(w, err)
		return
	}
	countMutation("abandon")
	w.WriteHeader(http.StatusNoContent)
}

func respond(w http.ResponseWriter, c Cart) {
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"cart":          c,
		"discountLabel": c.Discount.Label(),
	}})
}

func countMutation(op string) {
	if obs.CartMutationTotal != nil {
		obs.CartMutationTotal.WithLabelValues(op).Inc()
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
	case errors.Is(err, catalog.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
