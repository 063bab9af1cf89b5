package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
)

// ItemsHandler handles item reporting and query endpoints.
type ItemsHandler struct {
	Catalog   *catalog.Service
	Lifecycle *lifecycle.Controller
}

// Browse handles GET /api/items.
func (h *ItemsHandler) Browse(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Browse(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Search handles GET /api/search?q=&category=&type=.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Catalog.Search(r.Context(), catalog.SearchQuery{
		Q:        q.Get("q"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Report handles POST /api/items. It accepts either a multipart form with
// an optional "image" file or a JSON body without an image.
func (h *ItemsHandler) Report(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var (
		in    catalog.ReportInput
		image io.Reader
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))
		if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid form or file too large (max 5 MB)")
			return
		}
		in = reportFromForm(r)

		file, _, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			image = file
		case errors.Is(err, http.ErrMissingFile):
		default:
			jsonError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
	} else if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in.ReportedBy = claims.Email
	item, err := h.Catalog.Report(r.Context(), in, image)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]any{
		"message": "Item reported successfully! Awaiting admin verification.",
		"item_id": item.ID,
		"item":    item,
	})
}

func reportFromForm(r *http.Request) catalog.ReportInput {
	return catalog.ReportInput{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
		Location:    r.FormValue("location"),
		Color:       r.FormValue("color"),
		Description: r.FormValue("description"),
	}
}

// Mine handles GET /api/items/mine.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	items, err := h.Catalog.Mine(r.Context(), claims.Email)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}. Unverified and matched items are only
// visible to their reporter and to admins.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if !canView(r, item) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Matches handles GET /api/items/{id}/matches.
func (h *ItemsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Catalog.Matches(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, matches)
}

// Notify handles POST /api/items/{id}/notify.
func (h *ItemsHandler) Notify(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	sent, err := h.Lifecycle.NotifyOwner(r.Context(), r.PathValue("id"), claims.Name)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if !sent {
		jsonError(w, http.StatusInternalServerError, "failed to send email")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification sent"})
}

// Stats handles GET /api/stats.
func (h *ItemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Catalog.Stats(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{
		"verified_count": stats.Active,
		"total_items":    stats.Total,
	})
}

// Contact handles POST /api/contact.
func (h *ItemsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req catalog.ContactInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.Catalog.Contact(r.Context(), req); err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Message sent! We will contact you soon."})
}

func canView(r *http.Request, item *model.Item) bool {
	if item.Public() {
		return true
	}
	claims := GetClaims(r.Context())
	return claims.IsAdmin() || (claims != nil && claims.Email == item.ReportedBy)
}

