package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memoryAccount struct {
	Account
	passwordHash []byte
	disabled     bool
}

// Memory is an in-process Provider for development and tests.
// Accounts are lost on restart.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount // by lowercased email
	tokens   map[string]string         // id token -> email
	idp      map[string]Account        // access token -> linked account
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*memoryAccount),
		tokens:   make(map[string]string),
		idp:      make(map[string]Account),
	}
}

// LinkIdP makes accessToken sign in as acct through SignInWithIdP.
func (m *Memory) LinkIdP(accessToken string, acct Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idp[accessToken] = acct
}

// Disable blocks further sign-ins for email.
func (m *Memory) Disable(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[strings.ToLower(email)]; ok {
		a.disabled = true
	}
}

func (m *Memory) issue(a *memoryAccount) *Account {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	token := hex.EncodeToString(b)
	m.tokens[token] = strings.ToLower(a.Email)

	acct := a.Account
	acct.IDToken = token
	return &acct
}

func (m *Memory) SignInWithPassword(_ context.Context, email, password string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || a.passwordHash == nil {
		return nil, &Error{Reason: "EMAIL_NOT_FOUND"}
	}
	if bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return nil, &Error{Reason: "INVALID_PASSWORD"}
	}
	if a.disabled {
		return nil, &Error{Reason: "USER_DISABLED"}
	}
	return m.issue(a), nil
}

func (m *Memory) SignInWithIdP(_ context.Context, providerID, accessToken, _ string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	linked, ok := m.idp[accessToken]
	if !ok {
		return nil, &Error{Reason: "INVALID_IDP_RESPONSE"}
	}

	key := strings.ToLower(linked.Email)
	a, exists := m.accounts[key]
	if !exists {
		linked.ID = uuid.NewString()
		linked.ProviderID = providerID
		a = &memoryAccount{Account: linked}
		m.accounts[key] = a
	}
	if a.disabled {
		return nil, &Error{Reason: "USER_DISABLED"}
	}
	return m.issue(a), nil
}

func (m *Memory) SignUp(_ context.Context, email, password string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.TrimSpace(email)
	key := strings.ToLower(email)
	if _, exists := m.accounts[key]; exists {
		return nil, &Error{Reason: "EMAIL_EXISTS"}
	}
	if len(password) < 6 {
		return nil, &Error{Reason: "WEAK_PASSWORD", Detail: "Password should be at least 6 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &memoryAccount{
		Account: Account{
			ID:         uuid.NewString(),
			Email:      email,
			ProviderID: "password",
		},
		passwordHash: hash,
	}
	m.accounts[key] = a
	return m.issue(a), nil
}

func (m *Memory) UpdateProfile(_ context.Context, idToken, displayName, photoURL string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.tokens[idToken]
	if !ok {
		return nil, &Error{Reason: "INVALID_ID_TOKEN"}
	}
	a := m.accounts[email]
	a.DisplayName = displayName
	if photoURL != "" {
		a.PhotoURL = photoURL
	}

	acct := a.Account
	acct.IDToken = idToken
	return &acct, nil
}
