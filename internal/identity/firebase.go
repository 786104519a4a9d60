package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultFirebaseEndpoint = "https://identitytoolkit.googleapis.com/v1"

// Firebase is a Provider backed by the Firebase Identity Toolkit REST API.
type Firebase struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

func NewFirebase(apiKey string) *Firebase {
	return &Firebase{
		apiKey:   apiKey,
		endpoint: defaultFirebaseEndpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// WithEndpoint points the provider at another base URL (emulator, tests).
func (f *Firebase) WithEndpoint(endpoint string) *Firebase {
	f.endpoint = endpoint
	return f
}

type firebaseAccount struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	ProviderID  string `json:"providerId"`
	IDToken     string `json:"idToken"`
}

func (a *firebaseAccount) account(providerID string) *Account {
	if a.ProviderID != "" {
		providerID = a.ProviderID
	}
	return &Account{
		ID:          a.LocalID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
		ProviderID:  providerID,
		IDToken:     a.IDToken,
	}
}

type firebaseError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) call(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	u := fmt.Sprintf("%s/accounts:%s?key=%s", f.endpoint, method, url.QueryEscape(f.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		var fe firebaseError
		if json.Unmarshal(data, &fe) == nil && fe.Error.Message != "" {
			return parseReason(fe.Error.Message)
		}
		slog.Warn("unexpected identity provider response", "method", method, "status", resp.StatusCode)
		return &Error{Reason: "UNKNOWN", Detail: resp.Status}
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

// lookup fills in profile fields that sign-in responses may omit.
func (f *Firebase) lookup(ctx context.Context, acct *Account) (*Account, error) {
	var resp struct {
		Users []firebaseAccount `json:"users"`
	}
	err := f.call(ctx, "lookup", map[string]string{"idToken": acct.IDToken}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &Error{Reason: "USER_NOT_FOUND"}
	}

	u := resp.Users[0]
	if u.DisplayName != "" {
		acct.DisplayName = u.DisplayName
	}
	if u.PhotoURL != "" {
		acct.PhotoURL = u.PhotoURL
	}
	return acct, nil
}

func (f *Firebase) SignInWithPassword(ctx context.Context, email, password string) (*Account, error) {
	var resp firebaseAccount
	err := f.call(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return f.lookup(ctx, resp.account("password"))
}

func (f *Firebase) SignInWithIdP(ctx context.Context, providerID, accessToken, requestURI string) (*Account, error) {
	postBody := url.Values{}
	postBody.Set("access_token", accessToken)
	postBody.Set("providerId", providerID)

	var resp firebaseAccount
	err := f.call(ctx, "signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.account(providerID), nil
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) (*Account, error) {
	var resp firebaseAccount
	err := f.call(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.account("password"), nil
}

func (f *Firebase) UpdateProfile(ctx context.Context, idToken, displayName, photoURL string) (*Account, error) {
	body := map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": true,
	}
	if photoURL != "" {
		body["photoUrl"] = photoURL
	}

	var resp firebaseAccount
	err := f.call(ctx, "update", body, &resp)
	if err != nil {
		return nil, err
	}
	acct := resp.account("password")
	if acct.IDToken == "" {
		acct.IDToken = idToken
	}
	return acct, nil
}
