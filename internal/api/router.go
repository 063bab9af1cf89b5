package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *catalog.Service, lc *lifecycle.Controller) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Catalog: svc}
	itemsHandler := &ItemsHandler{Catalog: svc, Lifecycle: lc}
	adminHandler := &AdminHandler{DB: db, Catalog: svc, Lifecycle: lc}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.Browse)
	mux.HandleFunc("GET /api/search", itemsHandler.Search)
	mux.HandleFunc("GET /api/stats", itemsHandler.Stats)
	mux.HandleFunc("POST /api/contact", itemsHandler.Contact)

	// Authenticated.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Report)))
	mux.Handle("GET /api/items/mine", authMW(http.HandlerFunc(itemsHandler.Mine)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("GET /api/items/{id}/matches", authMW(http.HandlerFunc(itemsHandler.Matches)))
	mux.Handle("POST /api/items/{id}/notify", authMW(http.HandlerFunc(itemsHandler.Notify)))

	// Admin.
	mux.Handle("GET /api/admin/items", admin(adminHandler.Items))
	mux.Handle("GET /api/admin/stats", admin(adminHandler.Stats))
	mux.Handle("POST /api/admin/items/{id}/verify", admin(adminHandler.Verify))
	mux.Handle("POST /api/admin/items/{id}/reject", admin(adminHandler.Reject))
	mux.Handle("GET /api/admin/contacts", admin(adminHandler.Contacts))
	mux.Handle("GET /api/admin/users", admin(adminHandler.Users))

	return mux
}
