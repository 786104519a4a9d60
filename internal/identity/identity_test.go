package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		reason string
		want   error
	}{
		{"EMAIL_NOT_FOUND", ErrUserNotFound},
		{"INVALID_PASSWORD", ErrWrongPassword},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"EMAIL_EXISTS", ErrEmailExists},
		{"WEAK_PASSWORD", ErrWeakPassword},
		{"USER_DISABLED", ErrUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", ErrTooManyAttempts},
		{"SOMETHING_NEW", ErrAuthFailed},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.ErrorIs(t, &Error{Reason: tt.reason}, tt.want)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "No account found with this email.", Message(&Error{Reason: "EMAIL_NOT_FOUND"}))
	assert.Equal(t, "Wrong password. Please try again.", Message(&Error{Reason: "INVALID_PASSWORD"}))
	assert.Equal(t, "Failed logging in. Please try again.", Message(errors.New("network down")))
	assert.Equal(t, "Failed logging in. Please try again.", Message(&Error{Reason: "OPERATION_NOT_ALLOWED"}))
}

func TestParseReason(t *testing.T) {
	e := parseReason("WEAK_PASSWORD : Password should be at least 6 characters")
	assert.Equal(t, "WEAK_PASSWORD", e.Reason)
	assert.Equal(t, "Password should be at least 6 characters", e.Detail)
}

func TestMemory_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	acct, err := m.SignUp(ctx, "ana@example.com", "Secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, acct.IDToken)

	acct, err = m.UpdateProfile(ctx, acct.IDToken, "Ana", "https://example.com/ana.png")
	require.NoError(t, err)
	assert.Equal(t, "Ana", acct.DisplayName)

	acct, err = m.SignInWithPassword(ctx, "ANA@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", acct.DisplayName)
	assert.Equal(t, "https://example.com/ana.png", acct.PhotoURL)
	assert.Equal(t, "password", acct.ProviderID)

	_, err = m.SignInWithPassword(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = m.SignInWithPassword(ctx, "bob@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = m.SignUp(ctx, "ana@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrEmailExists)

	m.Disable("ana@example.com")
	_, err = m.SignInWithPassword(ctx, "ana@example.com", "Secret1")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestMemory_SignInWithIdP(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.LinkIdP("google-token", Account{Email: "gia@example.com", DisplayName: "Gia"})

	acct, err := m.SignInWithIdP(ctx, "google.com", "google-token", "http://localhost")
	require.NoError(t, err)
	assert.Equal(t, "google.com", acct.ProviderID)
	assert.NotEmpty(t, acct.ID)

	again, err := m.SignInWithIdP(ctx, "google.com", "google-token", "http://localhost")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, again.ID)

	_, err = m.SignInWithIdP(ctx, "google.com", "unknown", "http://localhost")
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestFirebase_SignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/accounts:signInWithPassword":
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana@example.com", body["email"])
			assert.Equal(t, true, body["returnSecureToken"])
			_, _ = w.Write([]byte(`{"localId":"u1","email":"ana@example.com","idToken":"tok"}`))
		case "/accounts:lookup":
			_, _ = w.Write([]byte(`{"users":[{"localId":"u1","displayName":"Ana","photoUrl":"https://example.com/a.png"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewFirebase("test-key").WithEndpoint(srv.URL)
	acct, err := f.SignInWithPassword(context.Background(), "ana@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, &Account{
		ID:          "u1",
		Email:       "ana@example.com",
		DisplayName: "Ana",
		PhotoURL:    "https://example.com/a.png",
		ProviderID:  "password",
		IDToken:     "tok",
	}, acct)
}

func TestFirebase_ErrorReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_LOGIN_CREDENTIALS"}}`))
	}))
	t.Cleanup(srv.Close)

	f := NewFirebase("k").WithEndpoint(srv.URL)
	_, err := f.SignInWithPassword(context.Background(), "ana@example.com", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var ierr *Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", ierr.Reason)
}

func TestFirebase_SignInWithIdPSendsPostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PostBody   string `json:"postBody"`
			RequestURI string `json:"requestUri"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		form, err := url.ParseQuery(body.PostBody)
		assert.NoError(t, err)
		assert.Equal(t, "access", form.Get("access_token"))
		assert.Equal(t, "google.com", form.Get("providerId"))
		assert.Equal(t, "https://plateshare.test/auth/google/callback", body.RequestURI)

		_, _ = w.Write([]byte(`{"localId":"g1","email":"gia@example.com","displayName":"Gia","providerId":"google.com","idToken":"t"}`))
	}))
	t.Cleanup(srv.Close)

	f := NewFirebase("k").WithEndpoint(srv.URL)
	acct, err := f.SignInWithIdP(context.Background(), "google.com", "access", "https://plateshare.test/auth/google/callback")
	require.NoError(t, err)
	assert.Equal(t, "Gia", acct.DisplayName)
	assert.Equal(t, "google.com", acct.ProviderID)
}
