package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

type reportPage struct {
	PageData
	Form catalog.ReportInput
}

// ReportPage handles GET /report.
func (s *Server) ReportPage(w http.ResponseWriter, r *http.Request) {
	data := &reportPage{PageData: s.page(r, "Report an item")}
	data.Form.Type = r.URL.Query().Get("type")
	s.Templates.Render(w, "report.html", data)
}

// ReportSubmit handles POST /report.
func (s *Server) ReportSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	data := &reportPage{PageData: s.page(r, "Report an item")}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		data.Error = "Invalid form or image too large (max 5 MB)."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "report.html", data)
		return
	}

	data.Form = catalog.ReportInput{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
		Location:    r.FormValue("location"),
		Color:       r.FormValue("color"),
		Description: r.FormValue("description"),
		ReportedBy:  claims.Email,
	}

	var image io.Reader
	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = file
	case errors.Is(err, http.ErrMissingFile):
	default:
		data.Error = "Invalid image upload."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "report.html", data)
		return
	}

	if _, err := s.Catalog.Report(r.Context(), data.Form, image); err != nil {
		data.Error = userMessage(err)
		s.Templates.RenderStatus(w, statusFor(err), "report.html", data)
		return
	}

	http.Redirect(w, r, "/my-items?ok="+url.QueryEscape("Item reported successfully! Awaiting admin verification."), http.StatusSeeOther)
}

// MyItemsPage handles GET /my-items.
func (s *Server) MyItemsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	items, err := s.Catalog.Mine(r.Context(), claims.Email)
	if err != nil {
		fail(w, r, err)
		return
	}

	s.Templates.Render(w, "my_items.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: s.page(r, "My items"),
		Items:    items,
	})
}

// ItemDetailPage handles GET /items/{id}. Items that are not public are
// shown only to their reporter and to admins.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	item, err := s.Catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	if !item.Public() && !claims.IsAdmin() && claims.Email != item.ReportedBy {
		http.NotFound(w, r)
		return
	}

	var matches []matching.Candidate
	if item.Status != model.ItemStatusMatched {
		matches, err = s.Catalog.Matches(r.Context(), item.ID)
		if err != nil {
			slog.Error("failed to compute matches", "item", item.ID, "error", err)
		}
	}

	var partner *model.Item
	if item.MatchedWith != "" && (claims.IsAdmin() || claims.Email == item.ReportedBy) {
		partner, err = s.Catalog.Get(r.Context(), item.MatchedWith)
		if err != nil {
			slog.Warn("matched item missing", "item", item.ID, "matched_with", item.MatchedWith, "error", err)
		}
	}

	s.Templates.Render(w, "item_detail.html", &struct {
		PageData
		Item    *model.Item
		Matches []matching.Candidate
		Partner *model.Item
		Owner   bool
	}{
		PageData: s.page(r, item.Name),
		Item:     item,
		Matches:  matches,
		Partner:  partner,
		Owner:    claims.Email == item.ReportedBy,
	})
}

// NotifySubmit handles POST /items/{id}/notify.
func (s *Server) NotifySubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	sent, err := s.Lifecycle.NotifyOwner(r.Context(), id, claims.Name)
	if err != nil {
		fail(w, r, err)
		return
	}

	back := "/items/" + url.PathEscape(r.FormValue("back"))
	if r.FormValue("back") == "" {
		back = "/items/" + url.PathEscape(id)
	}
	if !sent {
		http.Redirect(w, r, back+"?err=Failed+to+send+email.", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, back+"?ok=Notification+sent!", http.StatusSeeOther)
}
