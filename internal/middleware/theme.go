package middleware

import (
	"net/http"

	"github.com/templui/plateshare/internal/ctxkeys"
)

const ThemeCookie = "theme"

// Theme reads the theme cookie and adds the chosen theme to the context.
// Unknown values fall back to the light theme.
func Theme(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := ctxkeys.ThemeLight
		cookie, err := r.Cookie(ThemeCookie)
		if err == nil && cookie.Value == ctxkeys.ThemeDark {
			theme = ctxkeys.ThemeDark
		}
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithTheme(r.Context(), theme)))
	})
}
