package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/lifecycle"
)

func statusFor(err error) int {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, itemstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrAlreadyMatched), errors.Is(err, catalog.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns text safe to show on a page.
func userMessage(err error) string {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, itemstore.ErrNotFound):
		return "Item not found."
	case errors.Is(err, lifecycle.ErrAlreadyMatched):
		return "Item is already matched."
	case errors.Is(err, catalog.ErrEmailTaken):
		return "Email already registered."
	case errors.Is(err, catalog.ErrInvalidCredentials):
		return "Invalid credentials."
	default:
		return "Something went wrong, please try again."
	}
}

// fail reports an error for a page request without a form to re-render.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("page request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, userMessage(err), status)
}
