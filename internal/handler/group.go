package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/pantrypal/internal/model"
	"github.com/dukerupert/pantrypal/internal/service"
)

type GroupHandler struct {
	groups *service.GroupService
	logger *slog.Logger
}

func NewGroupHandler(groups *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

type groupRequest struct {
	Name string `json:"name"`
}

type addUserRequest struct {
	Email string `json:"email"`
}

type authoritiesRequest struct {
	UserID       int64              `json:"user_id"`
	Capabilities []model.Capability `json:"capabilities"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	group, err := h.groups.Create(r.Context(), caller(r), req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListForUser(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if groups == nil {
		groups = []model.Group{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.groups.Get(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	group, err := h.groups.Update(r.Context(), caller(r), id, req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.groups.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req addUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	member, err := h.groups.AddUser(r.Context(), caller(r), id, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *GroupHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	if err := h.groups.RemoveUser(r.Context(), caller(r), id, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroupHandler) AssignAuthorities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req authoritiesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	granted, err := h.groups.AssignAuthorities(r.Context(), caller(r), id, req.UserID, req.Capabilities)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, granted)
}

func (h *GroupHandler) RemoveAuthorities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req authoritiesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.groups.RemoveAuthorities(r.Context(), caller(r), id, req.UserID, req.Capabilities); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
