package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/lifecycle"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// serviceError maps service errors onto HTTP responses.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
	case errors.Is(err, itemstore.ErrNotFound):
		jsonError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, lifecycle.ErrAlreadyMatched):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrEmailTaken):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrInvalidCredentials):
		jsonError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
