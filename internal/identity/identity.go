// Package identity talks to the external identity provider that owns user
// accounts. The application never stores credentials itself.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already in use")
	ErrWeakPassword       = errors.New("weak password")
	ErrUserDisabled       = errors.New("user disabled")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrAuthFailed         = errors.New("authentication failed")
)

// Account is what the provider knows about a signed-in user.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
	ProviderID  string
	IDToken     string
}

type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Account, error)
	// SignInWithIdP exchanges an OAuth access token from providerID (e.g. "google.com").
	SignInWithIdP(ctx context.Context, providerID, accessToken, requestURI string) (*Account, error)
	SignUp(ctx context.Context, email, password string) (*Account, error)
	UpdateProfile(ctx context.Context, idToken, displayName, photoURL string) (*Account, error)
}

// Error carries the provider's reason code, e.g. "EMAIL_NOT_FOUND".
type Error struct {
	Reason string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return "identity: " + e.Reason + ": " + e.Detail
	}
	return "identity: " + e.Reason
}

func (e *Error) Unwrap() error {
	switch e.Reason {
	case "EMAIL_NOT_FOUND":
		return ErrUserNotFound
	case "INVALID_PASSWORD":
		return ErrWrongPassword
	case "INVALID_LOGIN_CREDENTIALS":
		return ErrInvalidCredentials
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	case "USER_DISABLED":
		return ErrUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyAttempts
	}
	return ErrAuthFailed
}

// parseReason splits "WEAK_PASSWORD : Password should be at least 6 characters".
func parseReason(message string) *Error {
	reason, detail, _ := strings.Cut(message, ":")
	return &Error{Reason: strings.TrimSpace(reason), Detail: strings.TrimSpace(detail)}
}

// Message turns a sign-in or sign-up error into a sentence for the user.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "No account found with this email."
	case errors.Is(err, ErrWrongPassword):
		return "Wrong password. Please try again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrEmailExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrWeakPassword):
		return "Password is too weak."
	case errors.Is(err, ErrUserDisabled):
		return "This account has been disabled."
	case errors.Is(err, ErrTooManyAttempts):
		return "Too many attempts. Please try again later."
	}
	return "Failed logging in. Please try again."
}
