package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/middleware"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/validation"
)

const toastTarget = "beforeend:#toast-container"

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// safeFrom keeps only local paths so a from parameter cannot send the
// browser to another site.
func safeFrom(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	return from
}

// userMessage turns a service error into a sentence for a toast.
func userMessage(err error, fallback string) string {
	var verrs validation.Errors
	var cascade *service.CascadeError
	switch {
	case errors.As(err, &verrs):
		return verrs.First()
	case errors.As(err, &cascade):
		return "Request accepted, but the food could not be marked as donated. Please try again."
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrOwnRequest),
		errors.Is(err, service.ErrFoodNotAvailable),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrRequestMismatch),
		errors.Is(err, service.ErrRequestClosed),
		errors.Is(err, service.ErrUploadDisabled):
		return capitalize(err.Error()) + "."
	case errors.Is(err, api.ErrNotFound):
		return "This food no longer exists."
	case errors.Is(err, api.ErrUnavailable):
		return "The server is not reachable right now. Please try again."
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fieldErrors returns the per-field messages of err, if it carries any.
func fieldErrors(err error) validation.Errors {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

// renderWithToast renders c with an error toast in the layout. Used when a
// form is shown again with the submitted values.
func renderWithToast(w http.ResponseWriter, r *http.Request, status int, t templ.Component, c templ.Component) {
	r = r.WithContext(ui.WithToast(r.Context(), t))
	ui.RenderStatus(w, r, status, c)
}

// redirectWithFlash finishes a successful form post.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, variant toast.Variant, message string) {
	middleware.SetFlash(w, r, variant, message)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func logFailure(msg string, err error, args ...any) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return
	}
	slog.Error(msg, append([]any{"error", err}, args...)...)
}
