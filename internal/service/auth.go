package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/identity"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/validation"
)

const sessionCookie = "auth_token"

var ErrGoogleDisabled = errors.New("google sign-in is not configured")

// RegisterForm is the sign-up form. PhotoURL is optional.
type RegisterForm struct {
	Name     string
	Email    string
	PhotoURL string
	Password string
}

func (f *RegisterForm) validate() validation.Errors {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.PhotoURL = strings.TrimSpace(f.PhotoURL)

	errs := validation.Errors{}
	errs.Check("name", validation.ValidateName(f.Name))
	errs.Check("email", validation.ValidateEmail(f.Email))
	errs.Check("photo_url", validation.ValidateImageURL(f.PhotoURL))
	errs.Check("password", validation.ValidatePassword(f.Password))
	return errs
}

// AuthService signs users in through the identity provider and keeps the
// resolved user in a signed session cookie.
type AuthService struct {
	provider     identity.Provider
	emailService *EmailService
	google       *oauth2.Config
	jwtSecret    string
	jwtExpiry    time.Duration
	isProduction bool
	now          func() time.Time
}

func NewAuthService(provider identity.Provider, emailService *EmailService, cfg *config.Config) *AuthService {
	s := &AuthService{
		provider:     provider,
		emailService: emailService,
		jwtSecret:    cfg.JWTSecret,
		jwtExpiry:    cfg.JWTExpiry,
		isProduction: cfg.IsProduction(),
		now:          time.Now,
	}

	if cfg.GoogleEnabled() {
		s.google = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return s
}

func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	errs := validation.Errors{}
	errs.Check("email", validation.ValidateEmail(email))
	errs.Check("password", validation.Required("Password", password))
	if err := errs.Err(); err != nil {
		return nil, err
	}

	acct, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("password sign-in failed: %w", err)
	}
	return userFromAccount(acct, model.ProviderPassword), nil
}

// Register creates the account, then sets its display name and photo.
func (s *AuthService) Register(ctx context.Context, form RegisterForm) (*model.User, error) {
	if err := form.validate().Err(); err != nil {
		return nil, err
	}

	acct, err := s.provider.SignUp(ctx, form.Email, form.Password)
	if err != nil {
		return nil, fmt.Errorf("sign-up failed: %w", err)
	}

	updated, err := s.provider.UpdateProfile(ctx, acct.IDToken, form.Name, form.PhotoURL)
	if err != nil {
		slog.Warn("failed to update profile after sign-up", "error", err, "email", acct.Email)
		acct.DisplayName = form.Name
		acct.PhotoURL = form.PhotoURL
	} else {
		acct.DisplayName = updated.DisplayName
		acct.PhotoURL = updated.PhotoURL
	}

	user := userFromAccount(acct, model.ProviderPassword)

	err = s.emailService.SendWelcomeEmail(ctx, user.Email, user.DisplayName())
	if err != nil {
		slog.Error("failed to send welcome email", "error", err, "email", user.Email)
	}
	return user, nil
}

// GoogleAuthURL is the consent screen URL carrying state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

// LoginWithGoogle exchanges the OAuth code and signs in with the resulting access token.
func (s *AuthService) LoginWithGoogle(ctx context.Context, code string) (*model.User, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	acct, err := s.provider.SignInWithIdP(ctx, model.ProviderGoogle, token.AccessToken, s.google.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("google sign-in failed: %w", err)
	}
	return userFromAccount(acct, model.ProviderGoogle), nil
}

func userFromAccount(acct *identity.Account, provider string) *model.User {
	if acct.ProviderID != "" {
		provider = acct.ProviderID
	}
	return &model.User{
		ID:       acct.ID,
		Name:     acct.DisplayName,
		Email:    acct.Email,
		PhotoURL: acct.PhotoURL,
		Provider: provider,
		Token:    acct.IDToken,
	}
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"photo":    user.PhotoURL,
		"provider": user.Provider,
		"token":    user.Token,
		"exp":      now.Add(s.jwtExpiry).Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifyJWT returns the user sealed into tokenString.
func (s *AuthService) VerifyJWT(tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	user := &model.User{}
	user.ID, _ = claims["user_id"].(string)
	user.Name, _ = claims["name"].(string)
	user.Email, _ = claims["email"].(string)
	user.PhotoURL, _ = claims["photo"].(string)
	user.Provider, _ = claims["provider"].(string)
	user.Token, _ = claims["token"].(string)
	if user.ID == "" || user.Email == "" {
		return nil, fmt.Errorf("invalid token: missing user")
	}
	return user, nil
}

// StartSession sets the session cookie for user.
func (s *AuthService) StartSession(w http.ResponseWriter, user *model.User) error {
	token, err := s.GenerateJWT(user)
	if err != nil {
		return fmt.Errorf("failed to generate JWT: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  s.now().Add(s.jwtExpiry),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionUser resolves the session cookie on r. It returns nil when there is
// no valid session.
func (s *AuthService) SessionUser(r *http.Request) *model.User {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	user, err := s.VerifyJWT(cookie.Value)
	if err != nil {
		return nil
	}
	return user
}

// HasSessionCookie reports whether r carries a session cookie, valid or not.
func (s *AuthService) HasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	return err == nil && cookie.Value != ""
}

// Logout clears the session cookie.
func (s *AuthService) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
