package web

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/erazemk/lostfound/internal/model"
)

// AdminDashboard handles GET /admin.
func (s *Server) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Catalog.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	s.Templates.Render(w, "admin_dashboard.html", &struct {
		PageData
		Stats model.Stats
	}{
		PageData: s.page(r, "Admin dashboard"),
		Stats:    stats,
	})
}

// AdminItemsPage handles GET /admin/items.
func (s *Server) AdminItemsPage(w http.ResponseWriter, r *http.Request) {
	items, err := s.Catalog.All(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	s.Templates.Render(w, "admin_items.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: s.page(r, "Manage items"),
		Items:    items,
	})
}

// VerifySubmit handles POST /admin/items/{id}/verify.
func (s *Server) VerifySubmit(w http.ResponseWriter, r *http.Request) {
	result, err := s.Lifecycle.Verify(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Redirect(w, r, "/admin/items?err="+url.QueryEscape(userMessage(err)), http.StatusSeeOther)
		return
	}

	msg := "Item verified."
	if result.AutoMatchedWith != "" {
		msg = fmt.Sprintf("Item verified and matched (score %.2f). Both reporters were notified.", result.Score)
	}
	http.Redirect(w, r, "/admin/items?ok="+url.QueryEscape(msg), http.StatusSeeOther)
}

// RejectSubmit handles POST /admin/items/{id}/reject.
func (s *Server) RejectSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.Lifecycle.Reject(r.Context(), r.PathValue("id")); err != nil {
		http.Redirect(w, r, "/admin/items?err="+url.QueryEscape(userMessage(err)), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/items?ok=Item+rejected.", http.StatusSeeOther)
}

// AdminContactsPage handles GET /admin/contacts.
func (s *Server) AdminContactsPage(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.Catalog.ContactMessages(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	s.Templates.Render(w, "admin_contacts.html", &struct {
		PageData
		Messages []model.ContactMessage
	}{
		PageData: s.page(r, "Contact messages"),
		Messages: msgs,
	})
}
