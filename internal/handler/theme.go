package handler

import (
	"net/http"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/middleware"
)

// ToggleTheme flips between the light and dark theme and returns to the
// page the toggle was pressed on.
func ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme := ctxkeys.ThemeDark
	if ctxkeys.Theme(r.Context()) == ctxkeys.ThemeDark {
		theme = ctxkeys.ThemeLight
	}

	cfg := ctxkeys.Config(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.ThemeCookie,
		Value:    theme,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   365 * 24 * 60 * 60,
	})

	http.Redirect(w, r, safeFrom(r.FormValue("next")), http.StatusSeeOther)
}
