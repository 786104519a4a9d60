// Package ctxkeys carries per-request state through the request context:
// the session user, the public config, the theme, the CSRF token and the
// current path.
package ctxkeys

import (
	"context"

	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/model"
)

type key int

const (
	userKey key = iota
	themeKey
	urlPathKey
	configKey
	csrfTokenKey
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// User returns the signed-in user, nil for guests.
func User(ctx context.Context) *model.User { return value[*model.User](ctx, userKey) }

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func URLPath(ctx context.Context) string { return value[string](ctx, urlPathKey) }

func WithURLPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, urlPathKey, path)
}

// Config returns the sanitized config, nil outside the middleware chain.
func Config(ctx context.Context) *config.Config { return value[*config.Config](ctx, configKey) }

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// Theme returns the active color theme, light when none was chosen.
func Theme(ctx context.Context) string {
	if theme := value[string](ctx, themeKey); theme != "" {
		return theme
	}
	return ThemeLight
}

func WithTheme(ctx context.Context, theme string) context.Context {
	return context.WithValue(ctx, themeKey, theme)
}

func CSRFToken(ctx context.Context) string { return value[string](ctx, csrfTokenKey) }

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey, token)
}
