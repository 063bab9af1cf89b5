package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
	webembed "github.com/erazemk/lostfound/web"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"title": func(s string) string { return cases.Title(language.English).String(s) },
		"statusName": func(status string) string {
			switch status {
			case model.ItemStatusPending:
				return "Pending review"
			case model.ItemStatusActive:
				return "Verified"
			case model.ItemStatusMatched:
				return "Matched"
			default:
				return status
			}
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"score": func(f float64) string { return fmt.Sprintf("%.2f%%", f) },
	}
}

var pages = []string{
	"home.html",
	"browse.html",
	"login.html",
	"register.html",
	"report.html",
	"my_items.html",
	"item_detail.html",
	"contact.html",
	"account.html",
	"admin_dashboard.html",
	"admin_items.html",
	"admin_contacts.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with an explicit status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Token   string
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Catalog   *catalog.Service
	Lifecycle *lifecycle.Controller
}

// page builds the base page data for a request, picking up flash messages
// passed through the query string after a redirect.
func (s *Server) page(r *http.Request, title string) PageData {
	q := r.URL.Query()
	return PageData{
		Title:   title,
		User:    GetWebClaims(r.Context()),
		Token:   GetWebToken(r.Context()),
		Success: q.Get("ok"),
		Error:   q.Get("err"),
	}
}
