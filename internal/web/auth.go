package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/catalog"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", s.page(r, "Log in"))
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	data := s.page(r, "Log in")
	if email == "" || password == "" {
		data.Error = "Email and password required."
		s.Templates.RenderStatus(w, http.StatusBadRequest, "login.html", data)
		return
	}

	user, err := s.Catalog.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, catalog.ErrInvalidCredentials) {
			slog.Error("login failed", "error", err)
		}
		data.Error = "Invalid email or password."
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user)
	if err != nil {
		data.Error = "Could not log you in, please try again."
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	slog.Info("user logged in", "user", user.Email, "role", user.Role)
	if user.Role == model.RoleAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", s.page(r, "Register"))
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	in := catalog.RegisterInput{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}

	if _, err := s.Catalog.Register(r.Context(), in); err != nil {
		data := s.page(r, "Register")
		data.Error = userMessage(err)
		s.Templates.RenderStatus(w, statusFor(err), "register.html", data)
		return
	}

	http.Redirect(w, r, "/login?ok=Registration+successful!+Please+log+in.", http.StatusSeeOther)
}

// Logout handles POST /logout. The token is revoked so a copied cookie
// stops working too.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _, err := claimsFromCookie(r, s.JWTSecret, s.DB)
	if err != nil {
		slog.Error("failed to check token revocation", "error", err)
	}
	if claims != nil {
		if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
			slog.Error("failed to revoke token", "user", claims.Email, "error", err)
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AccountPage handles GET /account.
func (s *Server) AccountPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "account.html", s.page(r, "Account"))
}

// AccountSubmit handles POST /account (password change).
func (s *Server) AccountSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	err := s.Catalog.ChangePassword(r.Context(),
		claims.UserID, r.FormValue("current_password"), r.FormValue("new_password"))
	if err != nil {
		data := s.page(r, "Account")
		if errors.Is(err, catalog.ErrInvalidCredentials) {
			data.Error = "Current password is incorrect."
		} else {
			data.Error = userMessage(err)
		}
		s.Templates.RenderStatus(w, statusFor(err), "account.html", data)
		return
	}
	http.Redirect(w, r, "/account?ok=Password+updated.", http.StatusSeeOther)
}
