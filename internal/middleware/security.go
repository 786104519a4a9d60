package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/templui/plateshare/internal/ctxkeys"
)

// SecurityHeaders sets the browser security headers for every response.
// Scripts are limited to self plus the per-request nonce. Images may come
// from any https origin because listings link to externally hosted photos.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		h.Set("Content-Security-Policy", contentSecurityPolicy(templ.GetNonce(r.Context())))
		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(nonce string) string {
	script := "'self'"
	if nonce != "" {
		script += fmt.Sprintf(" 'nonce-%s'", nonce)
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + script,
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https:",
		"font-src 'self'",
		"connect-src 'self'",
		"frame-ancestors 'none'",
		"form-action 'self' https://accounts.google.com",
		"base-uri 'self'",
	}
	return strings.Join(directives, "; ")
}
