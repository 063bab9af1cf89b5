package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/store"
)

type webContextKey string

const webClaimsKey webContextKey = "webclaims"
const webTokenKey webContextKey = "webtoken"

// claimsFromCookie validates the token cookie, including revocation.
// It returns nil claims when the visitor is not logged in.
func claimsFromCookie(r *http.Request, secret string, db *sql.DB) (*auth.Claims, string, error) {
	cookie, err := r.Cookie("token")
	if err != nil || cookie.Value == "" {
		return nil, "", nil
	}

	claims, err := auth.ValidateToken(secret, cookie.Value)
	if err != nil {
		return nil, "", nil
	}

	if claims.ID != "" {
		revoked, err := store.IsTokenRevoked(r.Context(), db, claims.ID)
		if err != nil {
			return nil, "", err
		}
		if revoked {
			return nil, "", nil
		}
	}
	return claims, cookie.Value, nil
}

// CookieAuthMiddleware requires a valid token cookie and adds its claims to
// the context. Visitors without one are sent to the login page.
func CookieAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, token, err := claimsFromCookie(r, secret, db)
			if err != nil {
				slog.Error("failed to check token revocation", "error", err)
			}
			if claims == nil {
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), webClaimsKey, claims)
			ctx = context.WithValue(ctx, webTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware adds claims to the context when a valid token
// cookie is present and lets everyone through.
func OptionalAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, token, err := claimsFromCookie(r, secret, db)
			if err != nil {
				slog.Error("failed to check token revocation", "error", err)
			}
			if claims == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), webClaimsKey, claims)
			ctx = context.WithValue(ctx, webTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects non-admin users. It must run after CookieAuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetWebClaims(r.Context()).IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(webClaimsKey).(*auth.Claims)
	return claims
}

// GetWebToken retrieves the raw JWT token from web context.
func GetWebToken(ctx context.Context) string {
	token, _ := ctx.Value(webTokenKey).(string)
	return token
}
