package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/query"
)

var (
	ErrUnauthenticated  = errors.New("please sign in first")
	ErrNotOwner         = errors.New("only the donor can manage this food")
	ErrOwnRequest       = errors.New("you cannot request your own food")
	ErrFoodNotAvailable = errors.New("this food has already been donated")
	ErrRequestNotFound  = errors.New("request not found")
	ErrRequestMismatch  = errors.New("request does not belong to this food")
	ErrRequestClosed    = errors.New("request has already been decided")
	ErrUploadDisabled   = errors.New("image upload is not enabled, use an image URL")
)

// CascadeError reports an accept whose second step (marking the food as
// donated) failed. RequestAccepted tells the caller the request itself is
// accepted; accepting again completes the cascade.
type CascadeError struct {
	RequestAccepted bool
	Err             error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("request accepted but food could not be marked as donated: %v", e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// Backend is the REST backend as used by the services. *api.Client implements it.
type Backend interface {
	Foods(ctx context.Context) ([]model.FoodListing, error)
	Food(ctx context.Context, id string) (*model.FoodListing, error)
	CreateFood(ctx context.Context, in api.FoodInput) (*model.FoodListing, error)
	UpdateFood(ctx context.Context, id string, patch api.FoodPatch) (*model.FoodListing, error)
	DeleteFood(ctx context.Context, id string) error
	Requests(ctx context.Context) ([]model.FoodRequest, error)
	CreateRequest(ctx context.Context, in api.RequestInput) (*model.FoodRequest, error)
	UpdateRequestStatus(ctx context.Context, id, status string) error
}

var _ Backend = (*api.Client)(nil)

// Query keys shared by readers and the mutations that invalidate them.
var keyFoods = query.Key{"foods"}

func keyFood(id string) query.Key {
	return query.Key{"food", id}
}

func keyFoodRequests(foodID string) query.Key {
	return query.Key{"foodRequests", foodID}
}

func keyMyFoods(email string) query.Key {
	return query.Key{"myFoods", strings.ToLower(email)}
}

func keyMyRequests(email string) query.Key {
	return query.Key{"myRequests", strings.ToLower(email)}
}
