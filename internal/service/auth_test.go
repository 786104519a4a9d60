package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/identity"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/validation"
)

func newTestAuth(t *testing.T) (*AuthService, *identity.Memory) {
	t.Helper()
	provider := identity.NewMemory()
	email := NewEmailService("", "noreply@example.com", "support@example.com", "http://plateshare.test", "PlateShare", true)
	cfg := &config.Config{AppEnv: "development", AppURL: "http://plateshare.test", JWTSecret: "test-secret", JWTExpiry: time.Hour}
	return NewAuthService(provider, email, cfg), provider
}

func TestRegisterThenLogin(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterForm{
		Name:     "Ana",
		Email:    "ana@example.com",
		PhotoURL: "https://example.com/ana.png",
		Password: "Secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "https://example.com/ana.png", user.PhotoURL)
	assert.Equal(t, model.ProviderPassword, user.Provider)

	user, err = auth.Login(ctx, "ana@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	_, err = auth.Login(ctx, "ana@example.com", "secret1")
	assert.ErrorIs(t, err, identity.ErrWrongPassword)
	assert.Equal(t, "Wrong password. Please try again.", identity.Message(err))

	_, err = auth.Login(ctx, "nobody@example.com", "Secret1")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestRegister_Validation(t *testing.T) {
	auth, _ := newTestAuth(t)

	_, err := auth.Register(context.Background(), RegisterForm{
		Email:    "not-an-email",
		PhotoURL: "javascript:alert(1)",
		Password: "secret",
	})

	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "photo_url")
	assert.Equal(t, "password must contain an uppercase letter", errs["password"])
}

func TestRegister_EmailExists(t *testing.T) {
	auth, _ := newTestAuth(t)
	form := RegisterForm{Name: "Ana", Email: "ana@example.com", Password: "Secret1"}

	_, err := auth.Register(context.Background(), form)
	require.NoError(t, err)

	_, err = auth.Register(context.Background(), form)
	assert.ErrorIs(t, err, identity.ErrEmailExists)
}

func TestSessionRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t)
	user := &model.User{ID: "u1", Name: "Ana", Email: "ana@example.com", PhotoURL: "https://example.com/a.png", Provider: model.ProviderGoogle}

	rec := httptest.NewRecorder()
	require.NoError(t, auth.StartSession(rec, user))

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	assert.Equal(t, user, auth.SessionUser(req))

	rec = httptest.NewRecorder()
	auth.Logout(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestVerifyJWT_RejectsExpiredAndForeignTokens(t *testing.T) {
	auth, _ := newTestAuth(t)
	user := &model.User{ID: "u1", Email: "ana@example.com"}

	token, err := auth.GenerateJWT(user)
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = auth.VerifyJWT(token)
	assert.Error(t, err)

	other, _ := newTestAuth(t)
	other.jwtSecret = "another-secret"
	foreign, err := other.GenerateJWT(user)
	require.NoError(t, err)

	auth.now = time.Now
	_, err = auth.VerifyJWT(foreign)
	assert.Error(t, err)
}

func TestGoogleDisabled(t *testing.T) {
	auth, _ := newTestAuth(t)
	assert.False(t, auth.GoogleEnabled())

	_, err := auth.GoogleAuthURL("state")
	assert.ErrorIs(t, err, ErrGoogleDisabled)

	_, err = auth.LoginWithGoogle(context.Background(), "code")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}
