package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

const nonceBytes = 16

// NonceMiddleware stores a fresh script nonce in the request context.
// The layout stamps it on inline scripts and SecurityHeaders allows it in
// script-src. Both read it back with templ.GetNonce.
func NonceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := make([]byte, nonceBytes)
		if _, err := rand.Read(b); err != nil {
			// Inline scripts stay blocked; the page itself still renders.
			slog.Error("failed to generate nonce", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		nonce := base64.StdEncoding.EncodeToString(b)
		next.ServeHTTP(w, r.WithContext(templ.WithNonce(r.Context(), nonce)))
	})
}
