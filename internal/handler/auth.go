package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/identity"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/ui/pages"
)

const (
	oauthStateCookie = "oauth_state"
	oauthFromCookie  = "oauth_from"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Login(h.authData(r)))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.authData(r)
	data.Email = r.FormValue("email")

	user, err := h.authService.Login(r.Context(), data.Email, r.FormValue("password"))
	if err != nil {
		h.authFailed(w, r, err, data, pages.Login)
		return
	}

	h.signedIn(w, r, user, data.From, "Welcome back, "+user.DisplayName()+"!")
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Register(h.authData(r)))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	data := h.authData(r)
	data.Name = r.FormValue("name")
	data.Email = r.FormValue("email")
	data.PhotoURL = r.FormValue("photo_url")

	user, err := h.authService.Register(r.Context(), service.RegisterForm{
		Name:     data.Name,
		Email:    data.Email,
		PhotoURL: data.PhotoURL,
		Password: r.FormValue("password"),
	})
	if err != nil {
		h.authFailed(w, r, err, data, pages.Register)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	h.signedIn(w, r, user, data.From, "Welcome to PlateShare, "+user.DisplayName()+"!")
}

func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	state := generateOAuthState()

	url, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		slog.Warn("google sign-in requested but not configured")
		data := h.authData(r)
		data.Message = "Google sign-in is not available."
		ui.RenderStatus(w, r, http.StatusNotFound, pages.Login(data))
		return
	}

	cfg := ctxkeys.Config(r.Context())
	isProduction := cfg != nil && cfg.IsProduction()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     oauthFromCookie,
		Value:    safeFrom(r.URL.Query().Get("from")),
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	from := "/"
	if cookie, err := r.Cookie(oauthFromCookie); err == nil {
		from = safeFrom(cookie.Value)
	}
	data := pages.AuthData{From: from, GoogleEnabled: h.authService.GoogleEnabled()}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != state || state == "" {
		slog.Warn("google oauth state validation failed", "error", err)
		data.Message = "Google sign-in failed. Please try again."
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Login(data))
		return
	}

	clearCookie(w, oauthStateCookie)
	clearCookie(w, oauthFromCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("google oauth callback missing code", "error", r.URL.Query().Get("error"))
		data.Message = "Google sign-in was cancelled."
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Login(data))
		return
	}

	user, err := h.authService.LoginWithGoogle(r.Context(), code)
	if err != nil {
		slog.Error("google sign-in failed", "error", err)
		data.Message = identity.Message(err)
		ui.RenderStatus(w, r, http.StatusUnauthorized, pages.Login(data))
		return
	}

	slog.Info("user logged in with google", "user_id", user.ID, "email", user.Email)
	h.signedIn(w, r, user, from, "Welcome, "+user.DisplayName()+"!")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(w)
	redirectWithFlash(w, r, "/", toast.VariantSuccess, "You have been logged out.")
}

func (h *AuthHandler) authData(r *http.Request) pages.AuthData {
	return pages.AuthData{
		From:          safeFrom(r.URL.Query().Get("from")),
		GoogleEnabled: h.authService.GoogleEnabled(),
	}
}

func (h *AuthHandler) signedIn(w http.ResponseWriter, r *http.Request, user *model.User, from, message string) {
	err := h.authService.StartSession(w, user)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		data := pages.AuthData{From: from, GoogleEnabled: h.authService.GoogleEnabled(), Message: "An error occurred. Please try again."}
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Login(data))
		return
	}
	redirectWithFlash(w, r, safeFrom(from), toast.VariantSuccess, message)
}

// authFailed shows the form again. Field problems stay next to their fields,
// provider errors become the form message.
func (h *AuthHandler) authFailed(w http.ResponseWriter, r *http.Request, err error, data pages.AuthData, view func(pages.AuthData) templ.Component) {
	if errs := fieldErrors(err); errs != nil {
		data.Errors = errs
		renderWithToast(w, r, http.StatusUnprocessableEntity, toast.Error(errs.First()), view(data))
		return
	}

	status := http.StatusUnauthorized
	var ierr *identity.Error
	if !errors.As(err, &ierr) {
		slog.Error("sign-in failed", "error", err, "email", data.Email)
		status = http.StatusBadGateway
	} else {
		slog.Warn("sign-in rejected", "reason", ierr.Reason, "email", data.Email)
	}

	data.Message = identity.Message(err)
	renderWithToast(w, r, status, toast.Error(data.Message), view(data))
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// generateOAuthState creates a random state token for the OAuth round trip.
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
