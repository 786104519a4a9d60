package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/query"
	"github.com/templui/plateshare/internal/validation"
)

const donateRetries = 3

// RequestForm is filled in by someone asking for a food.
type RequestForm struct {
	Location string
	Reason   string
	Contact  string
}

func (f *RequestForm) validate() validation.Errors {
	f.Location = strings.TrimSpace(f.Location)
	f.Reason = strings.TrimSpace(f.Reason)
	f.Contact = strings.TrimSpace(f.Contact)

	errs := validation.Errors{}
	errs.Check("location", validation.Required("Pickup location", f.Location))
	errs.Check("reason", validation.Required("Reason", f.Reason))
	errs.Check("contact", validation.ValidatePhone(f.Contact))
	return errs
}

// Detail is everything the food detail page shows to one viewer.
type Detail struct {
	Food *model.FoodListing
	// IsOwner shows the request management panel.
	IsOwner bool
	// CanRequest shows the Request action.
	CanRequest bool
	// AlreadyRequested is set when the viewer has a pending request for this food.
	AlreadyRequested bool
	// Requests is only filled for the owner.
	Requests       []model.FoodRequest
	RequestsFailed bool
	Related        []model.FoodListing
}

type RequestService struct {
	backend Backend
	cache   *query.Cache
	foods   *FoodService
	email   *EmailService
	retry   func() backoff.BackOff
}

func NewRequestService(backend Backend, cache *query.Cache, foods *FoodService, email *EmailService) *RequestService {
	return &RequestService{
		backend: backend,
		cache:   cache,
		foods:   foods,
		email:   email,
		retry: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(200*time.Millisecond),
				backoff.WithMaxInterval(2*time.Second),
				backoff.WithMaxElapsedTime(10*time.Second),
			)
		},
	}
}

// ForFood returns the requests made for one food, in collection order.
func (s *RequestService) ForFood(ctx context.Context, foodID string) ([]model.FoodRequest, error) {
	return query.Fetch(ctx, s.cache, keyFoodRequests(foodID), func(ctx context.Context) ([]model.FoodRequest, error) {
		all, err := s.backend.Requests(ctx)
		if err != nil {
			return nil, err
		}
		out := []model.FoodRequest{}
		for _, r := range all {
			if r.FoodID == foodID {
				out = append(out, r)
			}
		}
		return out, nil
	})
}

// Mine returns the requests user made, each with its food. A food that
// cannot be loaded is left nil.
func (s *RequestService) Mine(ctx context.Context, user *model.User) ([]model.RequestWithFood, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return query.Fetch(ctx, s.cache, keyMyRequests(user.Email), func(ctx context.Context) ([]model.RequestWithFood, error) {
		all, err := s.backend.Requests(ctx)
		if err != nil {
			return nil, err
		}

		out := []model.RequestWithFood{}
		for i := range all {
			if !strings.EqualFold(all[i].UserEmail, user.Email) {
				continue
			}
			food, err := s.foods.Food(ctx, all[i].FoodID)
			if err != nil {
				slog.Warn("failed to load food for request", "error", err, "request_id", all[i].ID, "food_id", all[i].FoodID)
				food = nil
			}
			out = append(out, model.RequestWithFood{Request: &all[i], Food: food})
		}
		return out, nil
	})
}

// Create submits a pending request from user for a food they do not own.
func (s *RequestService) Create(ctx context.Context, user *model.User, foodID string, form RequestForm) (*model.FoodRequest, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	food, err := s.backend.Food(ctx, foodID)
	if err != nil {
		return nil, fmt.Errorf("failed to load food: %w", err)
	}
	if food.IsOwnedBy(user.Email) {
		return nil, ErrOwnRequest
	}
	if !food.IsAvailable() {
		return nil, ErrFoodNotAvailable
	}

	if err := form.validate().Err(); err != nil {
		return nil, err
	}

	req, err := s.backend.CreateRequest(ctx, api.RequestInput{
		FoodID:    food.ID,
		UserName:  user.DisplayName(),
		UserEmail: user.Email,
		UserPhoto: user.PhotoURL,
		Contact:   form.Contact,
		Location:  form.Location,
		Reason:    form.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", err)
	}

	s.cache.Invalidate(keyFoodRequests(food.ID))
	s.cache.Invalidate(keyMyRequests(user.Email))

	slog.Info("food requested", "food_id", food.ID, "request_id", req.ID, "requester", user.Email)

	err = s.email.SendNewRequestEmail(ctx, food, req)
	if err != nil {
		slog.Error("failed to send new request email", "error", err, "food_id", food.ID, "to", food.DonorEmail)
	}
	return req, nil
}

// Accept marks a request as accepted and its food as donated. It can be
// called again after a partial failure: an accepted request skips the
// first step and a donated food skips the second.
func (s *RequestService) Accept(ctx context.Context, user *model.User, foodID, requestID string) error {
	food, req, err := s.decidable(ctx, user, foodID, requestID)
	if err != nil {
		return err
	}

	if req.Status == model.RequestStatusRejected {
		return ErrRequestClosed
	}
	if req.IsPending() && !food.IsAvailable() {
		return ErrFoodNotAvailable
	}

	defer s.invalidateDecision(foodID, user.Email)

	accepted := false
	if req.IsPending() {
		err = s.backend.UpdateRequestStatus(ctx, req.ID, model.RequestStatusAccepted)
		if err != nil {
			return fmt.Errorf("failed to accept request: %w", err)
		}
		accepted = true
	}

	if food.IsAvailable() {
		err = s.markDonated(ctx, foodID)
		if err != nil {
			slog.Error("accept cascade incomplete", "error", err, "food_id", foodID, "request_id", req.ID)
			return &CascadeError{RequestAccepted: true, Err: err}
		}
	}

	slog.Info("request accepted", "food_id", foodID, "request_id", req.ID)

	if accepted {
		req.Status = model.RequestStatusAccepted
		err = s.email.SendDecisionEmail(ctx, food, req)
		if err != nil {
			slog.Error("failed to send decision email", "error", err, "request_id", req.ID, "to", req.UserEmail)
		}
	}
	return nil
}

// Reject marks a pending request as rejected. The food is not touched.
func (s *RequestService) Reject(ctx context.Context, user *model.User, foodID, requestID string) error {
	food, req, err := s.decidable(ctx, user, foodID, requestID)
	if err != nil {
		return err
	}

	if req.Status == model.RequestStatusRejected {
		return nil
	}
	if req.IsTerminal() {
		return ErrRequestClosed
	}

	err = s.backend.UpdateRequestStatus(ctx, req.ID, model.RequestStatusRejected)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}

	s.cache.Invalidate(keyFoodRequests(foodID))
	s.cache.Invalidate(keyMyRequests(req.UserEmail))

	slog.Info("request rejected", "food_id", foodID, "request_id", req.ID)

	req.Status = model.RequestStatusRejected
	err = s.email.SendDecisionEmail(ctx, food, req)
	if err != nil {
		slog.Error("failed to send decision email", "error", err, "request_id", req.ID, "to", req.UserEmail)
	}
	return nil
}

// decidable loads fresh state from the backend and checks that user owns the
// food and that the request belongs to it.
func (s *RequestService) decidable(ctx context.Context, user *model.User, foodID, requestID string) (*model.FoodListing, *model.FoodRequest, error) {
	if user == nil {
		return nil, nil, ErrUnauthenticated
	}

	food, err := s.backend.Food(ctx, foodID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load food: %w", err)
	}
	if !food.IsOwnedBy(user.Email) {
		return nil, nil, ErrNotOwner
	}

	all, err := s.backend.Requests(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load requests: %w", err)
	}
	for i := range all {
		if all[i].ID != requestID {
			continue
		}
		if all[i].FoodID != foodID {
			return nil, nil, ErrRequestMismatch
		}
		return food, &all[i], nil
	}
	return nil, nil, ErrRequestNotFound
}

// markDonated retries transient failures. Client errors are not retried.
func (s *RequestService) markDonated(ctx context.Context, foodID string) error {
	donated := model.FoodStatusDonated
	op := func() error {
		_, err := s.backend.UpdateFood(ctx, foodID, api.FoodPatch{Status: &donated})
		var se *api.StatusError
		if errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.retry(), donateRetries), ctx)
	return backoff.Retry(op, b)
}

func (s *RequestService) invalidateDecision(foodID, donorEmail string) {
	s.cache.Invalidate(keyFoodRequests(foodID))
	s.cache.Invalidate(keyFood(foodID))
	s.cache.Invalidate(keyFoods)
	s.cache.Invalidate(keyMyFoods(donorEmail))
	s.cache.Invalidate(query.Key{"myRequests"})
}

// DetailView assembles the detail page for viewer. Only a failure to load
// the food itself is returned as an error.
func (s *RequestService) DetailView(ctx context.Context, viewer *model.User, foodID string) (*Detail, error) {
	food, err := s.foods.Food(ctx, foodID)
	if err != nil {
		return nil, err
	}

	d := &Detail{Food: food}
	if viewer != nil {
		d.IsOwner = food.IsOwnedBy(viewer.Email)
		d.CanRequest = !d.IsOwner && food.IsAvailable()
	}

	if viewer != nil {
		requests, err := s.ForFood(ctx, foodID)
		if err != nil {
			slog.Warn("failed to load requests", "error", err, "food_id", foodID)
			d.RequestsFailed = d.IsOwner
		}
		for _, r := range requests {
			if !d.IsOwner && r.IsPending() && strings.EqualFold(r.UserEmail, viewer.Email) {
				d.AlreadyRequested = true
			}
		}
		if d.IsOwner {
			d.Requests = requests
		}
	}

	d.Related, err = s.foods.Related(ctx, food)
	if err != nil {
		slog.Warn("failed to load related foods", "error", err, "food_id", foodID)
	}
	return d, nil
}
