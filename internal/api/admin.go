package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AdminHandler handles moderation endpoints.
type AdminHandler struct {
	DB        *sql.DB
	Catalog   *catalog.Service
	Lifecycle *lifecycle.Controller
}

// Items handles GET /api/admin/items.
func (h *AdminHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.All(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Catalog.Stats(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Verify handles POST /api/admin/items/{id}/verify.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	result, err := h.Lifecycle.Verify(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// Reject handles POST /api/admin/items/{id}/reject.
func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.Lifecycle.Reject(r.Context(), r.PathValue("id")); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item rejected"})
}

// Contacts handles GET /api/admin/contacts.
func (h *AdminHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.Catalog.ContactMessages(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, msgs)
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}
