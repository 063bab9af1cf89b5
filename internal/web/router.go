package web

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/lifecycle"
	webembed "github.com/erazemk/lostfound/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *catalog.Service, lc *lifecycle.Controller) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Catalog:   svc,
		Lifecycle: lc,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)
	optionalAuth := OptionalAuthMiddleware(jwtSecret, db)
	page := func(h http.HandlerFunc) http.Handler { return optionalAuth(h) }
	user := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(RequireAdmin(h)) }

	// Static assets and uploaded photos.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", uploadsHandler(svc.UploadsDir)))

	// Public routes.
	mux.Handle("GET /{$}", page(s.Home))
	mux.Handle("GET /browse", page(s.Browse))
	mux.Handle("GET /login", page(s.LoginPage))
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.Handle("GET /register", page(s.RegisterPage))
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)
	mux.Handle("GET /contact", page(s.ContactPage))
	mux.Handle("POST /contact", page(s.ContactSubmit))

	// Authenticated routes.
	mux.Handle("GET /report", user(s.ReportPage))
	mux.Handle("POST /report", user(s.ReportSubmit))
	mux.Handle("GET /my-items", user(s.MyItemsPage))
	mux.Handle("GET /items/{id}", user(s.ItemDetailPage))
	mux.Handle("POST /items/{id}/notify", user(s.NotifySubmit))
	mux.Handle("GET /account", user(s.AccountPage))
	mux.Handle("POST /account", user(s.AccountSubmit))

	// Admin routes.
	mux.Handle("GET /admin", admin(s.AdminDashboard))
	mux.Handle("GET /admin/items", admin(s.AdminItemsPage))
	mux.Handle("POST /admin/items/{id}/verify", admin(s.VerifySubmit))
	mux.Handle("POST /admin/items/{id}/reject", admin(s.RejectSubmit))
	mux.Handle("GET /admin/contacts", admin(s.AdminContactsPage))

	return mux, nil
}

// uploadsHandler serves stored photos without directory listings.
func uploadsHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
