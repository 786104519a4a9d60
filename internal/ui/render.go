package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes c as the response. The component is rendered into a buffer
// first so a template error still produces a clean 500.
func Render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	RenderStatus(w, r, http.StatusOK, c)
}

func RenderStatus(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	err := c.Render(r.Context(), &buf)
	if err != nil {
		slog.Error("render failed", "error", err, "path", r.URL.Path)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_, err = buf.WriteTo(w)
	if err != nil {
		slog.Error("render write failed", "error", err, "path", r.URL.Path)
	}
}

// RenderOOB writes c wrapped for an HTMX out-of-band swap into target,
// e.g. "beforeend:#toast-container".
func RenderOOB(w http.ResponseWriter, r *http.Request, c templ.Component, target string) {
	err := OOB(c, target).Render(r.Context(), w)
	if err != nil {
		slog.Error("render oob failed", "error", err, "target", target)
	}
}

// OOB wraps c for an out-of-band swap so it can follow a regular fragment.
func OOB(c templ.Component, target string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div hx-swap-oob="%s">`, templ.EscapeString(target))
		if err != nil {
			return err
		}
		err = c.Render(ctx, w)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}

type toastsKey struct{}

// WithToast queues a toast for the layout of the page rendered with ctx.
func WithToast(ctx context.Context, c templ.Component) context.Context {
	toasts := append(Toasts(ctx), c)
	return context.WithValue(ctx, toastsKey{}, toasts)
}

func Toasts(ctx context.Context) []templ.Component {
	toasts, _ := ctx.Value(toastsKey{}).([]templ.Component)
	return toasts[:len(toasts):len(toasts)]
}
