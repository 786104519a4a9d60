package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/ui/pages"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	authService    *service.AuthService
}

func NewProfileHandler(profileService *service.ProfileService, authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		authService:    authService,
	}
}

func (h *ProfileHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ui.Render(w, r, pages.Profile(pages.ProfileData{
		Name:     user.Name,
		PhotoURL: user.PhotoURL,
		Email:    user.Email,
	}))
}

// UpdateProfile saves the name and photo with the provider, then reissues the
// session so the navbar shows the new values.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	data := pages.ProfileData{
		Name:     r.FormValue("name"),
		PhotoURL: r.FormValue("photo_url"),
		Email:    user.Email,
	}

	updated, err := h.profileService.Update(r.Context(), user, service.ProfileForm{
		Name:     data.Name,
		PhotoURL: data.PhotoURL,
	})
	if errs := fieldErrors(err); errs != nil {
		data.Errors = errs
		renderWithToast(w, r, http.StatusUnprocessableEntity, toast.Error(errs.First()), pages.Profile(data))
		return
	}
	if errors.Is(err, service.ErrReauthRequired) {
		slog.Warn("profile update needs a new sign-in", "error", err, "user_id", user.ID)
		h.authService.Logout(w)
		redirectWithFlash(w, r, "/login?from="+url.QueryEscape("/profile"), toast.VariantWarning, "Please log in again to update your profile.")
		return
	}
	if err != nil {
		slog.Error("failed to update profile", "error", err, "user_id", user.ID)
		renderWithToast(w, r, http.StatusBadGateway, toast.Error("Failed to update profile. Please try again."), pages.Profile(data))
		return
	}

	if err := h.authService.StartSession(w, updated); err != nil {
		slog.Error("failed to refresh session", "error", err, "user_id", user.ID)
		renderWithToast(w, r, http.StatusInternalServerError, toast.Error("Profile saved, but the session could not be refreshed."), pages.Profile(data))
		return
	}

	slog.Info("profile updated", "user_id", user.ID)
	redirectWithFlash(w, r, "/profile", toast.VariantSuccess, "Profile updated.")
}
