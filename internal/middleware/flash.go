package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
)

const flashCookie = "flash"

// SetFlash stores a toast for the next page the browser loads. Used before
// redirecting after a form post.
func SetFlash(w http.ResponseWriter, r *http.Request, variant toast.Variant, message string) {
	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	value := base64.RawURLEncoding.EncodeToString([]byte(string(variant) + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// Flash moves a stored flash message into the request's toasts and clears it.
func Flash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(flashCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:   flashCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})

		raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		variant, message, ok := strings.Cut(string(raw), "|")
		if !ok || message == "" {
			next.ServeHTTP(w, r)
			return
		}

		t := toast.Toast(toast.Props{
			Title:       flashTitle(toast.Variant(variant)),
			Description: message,
			Variant:     toast.Variant(variant),
			Icon:        true,
			Dismissible: true,
		})
		next.ServeHTTP(w, r.WithContext(ui.WithToast(r.Context(), t)))
	})
}

func flashTitle(v toast.Variant) string {
	switch v {
	case toast.VariantSuccess:
		return "Success"
	case toast.VariantError:
		return "Error"
	case toast.VariantWarning:
		return "Heads up"
	}
	return ""
}
