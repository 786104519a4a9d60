package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/templui/plateshare/internal/identity"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/validation"
)

// ErrReauthRequired means the session no longer carries a usable provider
// token and the user has to sign in again.
var ErrReauthRequired = errors.New("please log in again to update your profile")

// ProfileForm is the editable part of the profile. An empty PhotoURL keeps
// the current photo.
type ProfileForm struct {
	Name     string
	PhotoURL string
}

func (f *ProfileForm) validate() validation.Errors {
	f.Name = strings.TrimSpace(f.Name)
	f.PhotoURL = strings.TrimSpace(f.PhotoURL)

	errs := validation.Errors{}
	errs.Check("name", validation.ValidateName(f.Name))
	errs.Check("photo_url", validation.ValidateImageURL(f.PhotoURL))
	return errs
}

// ProfileService changes the display name and photo held by the identity
// provider.
type ProfileService struct {
	provider identity.Provider
}

func NewProfileService(provider identity.Provider) *ProfileService {
	return &ProfileService{provider: provider}
}

// Update returns a copy of user with the provider's updated profile.
func (s *ProfileService) Update(ctx context.Context, user *model.User, form ProfileForm) (*model.User, error) {
	if err := form.validate().Err(); err != nil {
		return nil, err
	}
	if user.Token == "" {
		return nil, ErrReauthRequired
	}

	acct, err := s.provider.UpdateProfile(ctx, user.Token, form.Name, form.PhotoURL)
	if err != nil {
		var ierr *identity.Error
		if errors.As(err, &ierr) {
			return nil, fmt.Errorf("%w: %s", ErrReauthRequired, ierr.Reason)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	updated := *user
	updated.Name = acct.DisplayName
	updated.PhotoURL = acct.PhotoURL
	if acct.IDToken != "" {
		updated.Token = acct.IDToken
	}
	return &updated, nil
}
