package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/service"
)

type PantryHandler struct {
	pantries *service.PantryService
	products *service.PantryProductService
	logger   *slog.Logger
}

func NewPantryHandler(pantries *service.PantryService, products *service.PantryProductService, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{pantries: pantries, products: products, logger: logger}
}

type pantryRequest struct {
	GroupID int64  `json:"group_id"`
	Name    string `json:"name"`
}

type reserveRequest struct {
	Reserved int `json:"reserved"`
}

func (h *PantryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pantryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pantry, err := h.pantries.Create(r.Context(), caller(r), req.GroupID, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, pantry)
}

func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	pantries, err := h.pantries.GetForUserGroups(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pantries)
}

func (h *PantryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pantry, err := h.pantries.Get(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pantry)
}

func (h *PantryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req pantryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pantry, err := h.pantries.Update(r.Context(), caller(r), id, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pantry)
}

func (h *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.pantries.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PantryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := parsePage(w, r)
	if !ok {
		return
	}
	page, err := h.products.List(r.Context(), caller(r), id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PantryHandler) AddProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var items []model.PantryProduct
	if !decodeJSON(w, r, &items) {
		return
	}
	if len(items) == 0 {
		writeMessage(w, http.StatusBadRequest, "List of products cannot be empty")
		return
	}
	out, err := h.products.Add(r.Context(), caller(r), id, items)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *PantryHandler) UpdateProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var items []model.PantryProduct
	if !decodeJSON(w, r, &items) {
		return
	}
	if len(items) == 0 {
		writeMessage(w, http.StatusBadRequest, "List of products cannot be empty")
		return
	}
	out, err := h.products.Update(r.Context(), caller(r), id, items)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PantryHandler) DeleteProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var ids []int64
	if !decodeJSON(w, r, &ids) || !positiveIDs(w, ids, "product ids") {
		return
	}
	if err := h.products.Delete(r.Context(), caller(r), id, ids); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReserveProduct answers 200 with a null body when the line cannot cover
// the requested change.
func (h *PantryHandler) ReserveProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}
	var req reserveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	line, err := h.products.Reserve(r.Context(), caller(r), id, lineID, req.Reserved)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}
