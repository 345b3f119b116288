package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/folio/internal/ctxkeys"
	"github.com/templui/folio/internal/service"
	"github.com/templui/folio/internal/validation"
)

// maxJSONBody caps request bodies that are decoded as JSON.
const maxJSONBody = 1 << 20

// result is the envelope every API response is wrapped in.
type result struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, result{Success: true, Data: data})
}

func respondCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, result{Success: true, Data: data})
}

func respondFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, result{Error: message})
}

// respondError maps a service outcome onto a status code and envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := validation.AsError(err); ok {
		writeJSON(w, http.StatusBadRequest, result{Error: ve.Error(), Issues: ve.Issues})
		return
	}

	message, ok := service.Message(err)
	if !ok {
		slog.Error("unclassified error", "error", err, "path", ctxkeys.URLPath(r.Context()))
		respondFailure(w, http.StatusInternalServerError, "something went wrong, please try again")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusForbidden
		if ctxkeys.User(r.Context()) == nil {
			status = http.StatusUnauthorized
		}
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUpstream):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.Warn("request failed", "status", status, "path", ctxkeys.URLPath(r.Context()), "error", err)
	} else {
		slog.Info("request rejected", "status", status, "path", ctxkeys.URLPath(r.Context()), "reason", message)
	}
	respondFailure(w, status, message)
}

// decodeJSON reads the request body into v. Malformed bodies become a
// validation error on "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return validation.Single("body", "request body is required")
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return validation.Single("body", "request body is too large")
	}
	return validation.Single("body", "request body must be valid JSON")
}

// queryInt returns the integer query parameter name, or def when it is
// missing or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// confirmBody is the payload of destructive calls.
type confirmBody struct {
	Confirm string `json:"confirm"`
}

func formInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return 0
	}
	return v
}

// NotFound answers every unmatched route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondFailure(w, http.StatusNotFound, "not found")
}
