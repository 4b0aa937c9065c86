package receipt

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/sales"
	"github.com/noah-isme/backend-kasir/internal/settings"
)

// SaleSource loads the sale backing a receipt.
type SaleSource interface {
	Get(ctx context.Context, id string) (sales.Sale, error)
}

// StoreSource supplies the store identity printed on receipts.
type StoreSource interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// Handler exposes the receipt endpoint.
type Handler struct {
	Sales SaleSource
	Store StoreSource
}

// Get serves GET /sales/{id}/receipt.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Sales == nil || h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "receipt handler not configured", nil)
		return
	}
	sale, err := h.Sales.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "sale not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	store, err := h.Store.Get(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Build(sale, store.StoreName, store.CurrencyCode)})
}
