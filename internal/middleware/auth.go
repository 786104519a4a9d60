package middleware

import (
	"net/http"
	"net/url"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/service"
)

// AuthMiddleware resolves the session cookie and adds the user to context if valid
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authService.HasSessionCookie(r) {
				next.ServeHTTP(w, r)
				return
			}

			user := authService.SessionUser(r)
			if user == nil {
				// Invalid or expired token, clear cookie and continue as guest
				authService.Logout(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the user is authenticated. Guests are sent to the login
// page, which returns them to the requested path afterwards.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			from := r.URL.Path
			if r.Method != http.MethodGet {
				// Replaying a form post after login is not possible, return to the page instead
				from = r.Referer()
				if u, err := url.Parse(from); err == nil {
					from = u.Path
				}
			}
			redirect(w, r, "/login?from="+url.QueryEscape(from))
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequireGuest ensures the user is not authenticated
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user != nil {
			redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	// For HTMX requests, use HX-Redirect header to force full page redirect
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
