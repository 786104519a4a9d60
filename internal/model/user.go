package model

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// User is the resolved session identity. It is owned by the identity provider
// and never written by this application.
type User struct {
	ID       string
	Name     string
	Email    string
	PhotoURL string
	Provider string
	// Token is the provider's ID token, needed to change the profile.
	Token string
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
