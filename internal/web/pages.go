package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/model"
)

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Catalog.Stats(r.Context())
	if err != nil {
		slog.Error("failed to count items for home page", "error", err)
	}

	s.Templates.Render(w, "home.html", &struct {
		PageData
		Stats model.Stats
	}{
		PageData: s.page(r, "Lost & Found"),
		Stats:    stats,
	})
}

// Browse handles GET /browse. Query parameters q, category and type narrow
// the list.
func (s *Server) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := catalog.SearchQuery{
		Q:        q.Get("q"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
	}

	items, err := s.Catalog.Search(r.Context(), query)
	if err != nil {
		fail(w, r, err)
		return
	}

	s.Templates.Render(w, "browse.html", &struct {
		PageData
		Items []model.Item
		Query catalog.SearchQuery
	}{
		PageData: s.page(r, "Browse items"),
		Items:    items,
		Query:    query,
	})
}

// ContactPage handles GET /contact.
func (s *Server) ContactPage(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		Form catalog.ContactInput
	}{PageData: s.page(r, "Contact")}
	if claims := GetWebClaims(r.Context()); claims != nil {
		data.Form.Name = claims.Name
		data.Form.Email = claims.Email
	}
	s.Templates.Render(w, "contact.html", data)
}

// ContactSubmit handles POST /contact.
func (s *Server) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	in := catalog.ContactInput{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Subject: r.FormValue("subject"),
		Message: r.FormValue("message"),
	}

	if _, err := s.Catalog.Contact(r.Context(), in); err != nil {
		data := &struct {
			PageData
			Form catalog.ContactInput
		}{PageData: s.page(r, "Contact"), Form: in}
		data.Error = userMessage(err)
		s.Templates.RenderStatus(w, statusFor(err), "contact.html", data)
		return
	}

	http.Redirect(w, r, "/contact?ok=Message+sent!+We+will+contact+you+soon.", http.StatusSeeOther)
}
