package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/templui/plateshare/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32
	csrfMaxAge     = 7 * 24 * time.Hour
)

// MaxUploadMemory bounds the in-memory part of a multipart form. Food
// photos above it spill to temporary files.
const MaxUploadMemory = 8 << 20

// CSRFProtection implements the double-submit cookie pattern. Every request
// gets a token in its context for forms and the htmx meta tag; POST, PUT,
// PATCH and DELETE must echo it back.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfToken(w, r)
		r = r.WithContext(ctxkeys.WithCSRFToken(r.Context(), token))

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if !sameToken(token, submittedCSRFToken(r)) {
			slog.Warn("csrf validation failed", "path", r.URL.Path, "method", r.Method, "ip", getClientIP(r))
			http.Error(w, "This form has expired. Reload the page and try again.", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// submittedCSRFToken reads the htmx header, falling back to the form field.
// Multipart bodies are parsed here with the upload limit so the image file
// is still available to the handler.
func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(csrfHeader); token != "" {
		return token
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadMemory); err != nil {
			return ""
		}
		return r.FormValue(csrfFormField)
	}
	return r.PostFormValue(csrfFormField)
}

// csrfToken returns the cookie token, issuing a new cookie when it is
// missing or malformed.
func csrfToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil && len(c.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return c.Value
	}

	token := generateCSRFToken()
	cfg := ctxkeys.Config(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(csrfMaxAge.Seconds()),
	})
	return token
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenLen)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate csrf token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func sameToken(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
