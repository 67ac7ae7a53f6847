package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/service"
)

type ShoppingListHandler struct {
	lists    *service.ShoppingListService
	products *service.ShoppingListProductService
	logger   *slog.Logger
}

func NewShoppingListHandler(lists *service.ShoppingListService, products *service.ShoppingListProductService, logger *slog.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{lists: lists, products: products, logger: logger}
}

type shoppingListRequest struct {
	GroupID int64  `json:"group_id"`
	Name    string `json:"name"`
}

func (h *ShoppingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shoppingListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	list, err := h.lists.Create(r.Context(), caller(r), req.GroupID, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListForUser(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ShoppingListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.lists.Get(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ShoppingListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req shoppingListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	list, err := h.lists.Update(r.Context(), caller(r), id, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ShoppingListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.lists.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingListHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
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

func (h *ShoppingListHandler) AddProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var items []model.ShoppingListProduct
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

func (h *ShoppingListHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var item model.ShoppingListProduct
	if !decodeJSON(w, r, &item) {
		return
	}
	line, err := h.products.Update(r.Context(), caller(r), id, item)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *ShoppingListHandler) RemoveProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var ids []int64
	if !decodeJSON(w, r, &ids) || !positiveIDs(w, ids, "product ids") {
		return
	}
	if err := h.products.Remove(r.Context(), caller(r), id, ids); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ShoppingListHandler) TogglePurchased(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var ids []int64
	if !decodeJSON(w, r, &ids) || !positiveIDs(w, ids, "product ids") {
		return
	}
	lines, err := h.products.TogglePurchased(r.Context(), caller(r), id, ids)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *ShoppingListHandler) TransferToPantry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	moved, err := h.products.TransferToPantry(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

func (h *ShoppingListHandler) AddRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipeID, ok := pathID(w, r, "recipe_id")
	if !ok {
		return
	}
	lines, err := h.products.AddRecipeIngredients(r.Context(), caller(r), id, recipeID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, lines)
}
