package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dukerupert/pantrypal/internal/imagecodec"
	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/service"
)

type RecipeHandler struct {
	recipes *service.RecipeService
	logger  *slog.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, logger: logger}
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Recipe
	if !decodeJSON(w, r, &req) {
		return
	}
	recipe, err := h.recipes.Create(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePage(w, r)
	if !ok {
		return
	}
	page, err := h.recipes.List(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Mine lists the caller's own recipes.
func (h *RecipeHandler) Mine(w http.ResponseWriter, r *http.Request) {
	req, ok := parsePage(w, r)
	if !ok {
		return
	}
	page, err := h.recipes.ListForUser(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.Recipe
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = id
	recipe, err := h.recipes.Update(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.recipes.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetImage stores the raw request body as the recipe image. An empty body
// removes it.
func (h *RecipeHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, imagecodec.MaxImageSize+1))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if err := h.recipes.SetImage(r.Context(), caller(r), id, raw); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	img, contentType, err := h.recipes.Image(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(img)
}
