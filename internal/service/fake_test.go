package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/query"
)

// fakeBackend keeps foods and requests in memory.
type fakeBackend struct {
	mu       sync.Mutex
	foods    []model.FoodListing
	requests []model.FoodRequest
	nextID   int

	foodsCalls          int
	requestStatusCalls  int
	updateFoodCalls     int
	failUpdateFood      int
	failUpdateFoodError error
}

func (b *fakeBackend) id() string {
	b.nextID++
	return fmt.Sprintf("id-%d", b.nextID)
}

func (b *fakeBackend) Foods(context.Context) ([]model.FoodListing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.foodsCalls++
	return slices.Clone(b.foods), nil
}

func (b *fakeBackend) Food(_ context.Context, id string) (*model.FoodListing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.foods {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, &api.StatusError{Op: "get food", StatusCode: http.StatusNotFound}
}

func (b *fakeBackend) CreateFood(_ context.Context, in api.FoodInput) (*model.FoodListing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := model.FoodListing{
		ID:          b.id(),
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		Location:    in.Location,
		Image:       in.Image,
		Donor:       in.Donor,
		DonorEmail:  in.DonorEmail,
		DonorPhoto:  in.DonorPhoto,
		Status:      in.Status,
		ExpireDate:  in.ExpireDate,
	}
	b.foods = append(b.foods, f)
	return &f, nil
}

func (b *fakeBackend) UpdateFood(_ context.Context, id string, patch api.FoodPatch) (*model.FoodListing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateFoodCalls++
	if b.failUpdateFood > 0 {
		b.failUpdateFood--
		if b.failUpdateFoodError != nil {
			return nil, b.failUpdateFoodError
		}
		return nil, &api.StatusError{Op: "update food", StatusCode: http.StatusServiceUnavailable}
	}

	for i := range b.foods {
		f := &b.foods[i]
		if f.ID != id {
			continue
		}
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&f.Name, patch.Name)
		set(&f.Description, patch.Description)
		set(&f.Quantity, patch.Quantity)
		set(&f.Location, patch.Location)
		set(&f.Image, patch.Image)
		set(&f.Status, patch.Status)
		set(&f.ExpireDate, patch.ExpireDate)
		out := *f
		return &out, nil
	}
	return nil, &api.StatusError{Op: "update food", StatusCode: http.StatusNotFound}
}

func (b *fakeBackend) DeleteFood(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.foods = slices.DeleteFunc(b.foods, func(f model.FoodListing) bool { return f.ID == id })
	return nil
}

func (b *fakeBackend) Requests(context.Context) ([]model.FoodRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests), nil
}

func (b *fakeBackend) CreateRequest(_ context.Context, in api.RequestInput) (*model.FoodRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := model.FoodRequest{
		ID:        b.id(),
		FoodID:    in.FoodID,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
		UserPhoto: in.UserPhoto,
		Contact:   in.Contact,
		Location:  in.Location,
		Reason:    in.Reason,
		Status:    model.RequestStatusPending,
	}
	b.requests = append(b.requests, r)
	return &r, nil
}

func (b *fakeBackend) UpdateRequestStatus(_ context.Context, id, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requestStatusCalls++
	for i := range b.requests {
		if b.requests[i].ID == id {
			b.requests[i].Status = status
			return nil
		}
	}
	return &api.StatusError{Op: "update request", StatusCode: http.StatusNotFound}
}

func (b *fakeBackend) food(id string) model.FoodListing {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, f := range b.foods {
		if f.ID == id {
			return f
		}
	}
	return model.FoodListing{}
}

func (b *fakeBackend) request(id string) model.FoodRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r.ID == id {
			return r
		}
	}
	return model.FoodRequest{}
}

var (
	donor     = &model.User{ID: "u-donor", Name: "Dana", Email: "dana@example.com", PhotoURL: "https://example.com/dana.png"}
	requester = &model.User{ID: "u-req", Name: "Riya", Email: "riya@example.com"}
)

type testServices struct {
	backend  *fakeBackend
	foods    *FoodService
	requests *RequestService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	backend := &fakeBackend{
		foods: []model.FoodListing{
			{ID: "f1", Name: "Pizza", Quantity: "Serves 5", Location: "Dhaka", Donor: "Dana", DonorEmail: "dana@example.com", Status: model.FoodStatusAvailable},
			{ID: "f2", Name: "Bread", Quantity: "Serves 2", Location: "Dhaka", Donor: "Dana", DonorEmail: "dana@example.com", Status: model.FoodStatusDonated},
			{ID: "f3", Name: "Rice", Quantity: "10 plates", Location: "Dhaka", Donor: "Omar", DonorEmail: "omar@example.com", Status: model.FoodStatusAvailable},
		},
		requests: []model.FoodRequest{
			{ID: "r1", FoodID: "f1", UserName: "Riya", UserEmail: "riya@example.com", Contact: "01712345678", Status: model.RequestStatusPending},
			{ID: "r2", FoodID: "f1", UserName: "Sam", UserEmail: "sam@example.com", Contact: "01712345679", Status: model.RequestStatusPending},
			{ID: "r3", FoodID: "f3", UserName: "Riya", UserEmail: "riya@example.com", Contact: "01712345678", Status: model.RequestStatusPending},
		},
	}

	cache := query.New(query.WithStaleTime(time.Minute), query.WithGCTime(0))
	t.Cleanup(cache.Close)

	email := NewEmailService("", "noreply@example.com", "support@example.com", "http://plateshare.test", "PlateShare", true)
	foods := NewFoodService(backend, cache, nil, 12)
	foods.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }

	requests := NewRequestService(backend, cache, foods, email)
	requests.retry = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	return &testServices{backend: backend, foods: foods, requests: requests}
}
