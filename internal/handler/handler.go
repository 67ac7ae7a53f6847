package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/pantrypal/internal/apperr"
	"github.com/dukerupert/pantrypal/internal/auth"
	"github.com/dukerupert/pantrypal/internal/model"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError answers with the status and message carried by err. Anything
// that is not a domain error is logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeMessage(w, status, apperr.Message(err))
}

func parsePathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// pathID reads a positive id path parameter, answering 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := parsePathID(r, name)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

// decodeJSON reads the request body into v, answering 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// parsePage reads page, sort, direction and filter from the query string.
// Pages are numbered from 1 over HTTP.
func parsePage(w http.ResponseWriter, r *http.Request) (model.PageRequest, bool) {
	q := r.URL.Query()
	req := model.PageRequest{
		SortColumn:    q.Get("sort"),
		SortDirection: q.Get("direction"),
		Filter:        q.Get("filter"),
	}
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "Page nr must be greater than 0")
			return req, false
		}
		req.Page = n - 1
	}
	return req, true
}

// caller returns the authenticated email. RequireAuth guarantees one on
// every route that reaches a handler here.
func caller(r *http.Request) string {
	return auth.Email(r.Context())
}

func positiveIDs(w http.ResponseWriter, ids []int64, what string) bool {
	if len(ids) == 0 {
		writeMessage(w, http.StatusBadRequest, "List of "+what+" cannot be empty")
		return false
	}
	for _, id := range ids {
		if id <= 0 {
			writeMessage(w, http.StatusBadRequest, "Product id must be greater than 0")
			return false
		}
	}
	return true
}
