package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/ctxkeys"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h so the first middleware sees the request first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range slices.Backward(mws) {
		h = mw(h)
	}
	return h
}

// withContext returns a middleware that derives the request context with set.
func withContext(set func(r *http.Request) context.Context) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(set(r)))
		})
	}
}

// Config exposes the sanitized configuration to views and cookie helpers.
// It has no secrets, so templates may read any field.
func Config(cfg *config.Config) Middleware {
	public := cfg.Sanitized()
	return withContext(func(r *http.Request) context.Context {
		return ctxkeys.WithConfig(r.Context(), public)
	})
}

// WithURLPath records the path so the navbar can mark the active link.
var WithURLPath = withContext(func(r *http.Request) context.Context {
	return ctxkeys.WithURLPath(r.Context(), r.URL.Path)
})
