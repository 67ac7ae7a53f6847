package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pantrypal/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

func NewProductHandler(products *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{products: products, logger: logger}
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePage(w, r)
	if !ok {
		return
	}
	page, err := h.products.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
