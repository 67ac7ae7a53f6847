package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/pantrypal/internal/service"
)

type MealHandler struct {
	meals  *service.MealService
	logger *slog.Logger
}

func NewMealHandler(meals *service.MealService, logger *slog.Logger) *MealHandler {
	return &MealHandler{meals: meals, logger: logger}
}

// parseFlexibleTime accepts RFC 3339, a local date-time without zone, or a
// bare date. Zone-less values are read as UTC.
func parseFlexibleTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func (h *MealHandler) Add(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reserve, err := strconv.ParseBool(q.Get("reserve"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "reserve must be true or false")
		return
	}
	var listID *int64
	if v := q.Get("list_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeMessage(w, http.StatusBadRequest, "List id must be greater than 0")
			return
		}
		listID = &id
	}

	var req service.MealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.meals.Add(r.Context(), caller(r), req, reserve, listID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	after, err := parseFlexibleTime(q.Get("after"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid after date")
		return
	}
	before, err := parseFlexibleTime(q.Get("before"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid before date")
		return
	}
	meals, err := h.meals.List(r.Context(), caller(r), after, before)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meals)
}

func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.MealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	meal, err := h.meals.Update(r.Context(), caller(r), id, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.meals.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
