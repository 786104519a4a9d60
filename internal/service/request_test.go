package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/validation"
)

var validRequest = RequestForm{Location: "Mirpur 10", Reason: "Family dinner", Contact: "+880 1712-345678"}

func TestCreateRequest(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	before, err := s.requests.ForFood(ctx, "f3")
	require.NoError(t, err)
	require.Len(t, before, 1)

	req, err := s.requests.Create(ctx, donor, "f3", validRequest)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, req.Status)
	assert.Equal(t, "Dana", req.UserName)
	assert.Equal(t, "dana@example.com", req.UserEmail)

	after, err := s.requests.ForFood(ctx, "f3")
	require.NoError(t, err)
	assert.Len(t, after, 2, "request list is refetched after submit")
}

func TestCreateRequest_Rules(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.requests.Create(ctx, nil, "f1", validRequest)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.requests.Create(ctx, donor, "f1", validRequest)
	assert.ErrorIs(t, err, ErrOwnRequest)

	_, err = s.requests.Create(ctx, requester, "f2", validRequest)
	assert.ErrorIs(t, err, ErrFoodNotAvailable)

	_, err = s.requests.Create(ctx, requester, "missing", validRequest)
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = s.requests.Create(ctx, requester, "f3", RequestForm{Contact: "call me"})
	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "location")
	assert.Contains(t, errs, "reason")
	assert.Contains(t, errs, "contact")
}

func TestAccept(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	// Warm the caches the accept must invalidate.
	_, err := s.foods.Food(ctx, "f1")
	require.NoError(t, err)
	_, err = s.requests.ForFood(ctx, "f1")
	require.NoError(t, err)

	require.NoError(t, s.requests.Accept(ctx, donor, "f1", "r1"))

	assert.Equal(t, model.RequestStatusAccepted, s.backend.request("r1").Status)
	assert.Equal(t, model.FoodStatusDonated, s.backend.food("f1").Status)
	assert.Equal(t, model.RequestStatusPending, s.backend.request("r2").Status)

	food, err := s.foods.Food(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, model.FoodStatusDonated, food.Status)

	requests, err := s.requests.ForFood(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusAccepted, requests[0].Status)
}

func TestReject_LeavesFoodUntouched(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, s.requests.Reject(ctx, donor, "f1", "r1"))

	assert.Equal(t, model.RequestStatusRejected, s.backend.request("r1").Status)
	assert.Equal(t, model.FoodStatusAvailable, s.backend.food("f1").Status)
	assert.Equal(t, 0, s.backend.updateFoodCalls)

	require.NoError(t, s.requests.Reject(ctx, donor, "f1", "r1"), "rejecting twice is a no-op")
	assert.ErrorIs(t, s.requests.Accept(ctx, donor, "f1", "r1"), ErrRequestClosed)
}

func TestDecision_Guards(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.requests.Accept(ctx, nil, "f1", "r1"), ErrUnauthenticated)
	assert.ErrorIs(t, s.requests.Accept(ctx, requester, "f1", "r1"), ErrNotOwner)
	assert.ErrorIs(t, s.requests.Reject(ctx, requester, "f1", "r1"), ErrNotOwner)
	assert.ErrorIs(t, s.requests.Accept(ctx, donor, "f1", "r3"), ErrRequestMismatch)
	assert.ErrorIs(t, s.requests.Accept(ctx, donor, "f1", "nope"), ErrRequestNotFound)

	require.NoError(t, s.requests.Accept(ctx, donor, "f1", "r1"))
	assert.ErrorIs(t, s.requests.Reject(ctx, donor, "f1", "r1"), ErrRequestClosed)
	assert.ErrorIs(t, s.requests.Accept(ctx, donor, "f1", "r2"), ErrFoodNotAvailable)
	assert.Equal(t, model.RequestStatusPending, s.backend.request("r2").Status)
}

func TestAccept_RetriesDonation(t *testing.T) {
	s := newTestServices(t)
	s.backend.failUpdateFood = 2

	require.NoError(t, s.requests.Accept(context.Background(), donor, "f1", "r1"))
	assert.Equal(t, 3, s.backend.updateFoodCalls)
	assert.Equal(t, model.FoodStatusDonated, s.backend.food("f1").Status)
}

func TestAccept_CascadeFailureIsReportedAndResumable(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	s.backend.failUpdateFood = 100

	err := s.requests.Accept(ctx, donor, "f1", "r1")

	var cascade *CascadeError
	require.ErrorAs(t, err, &cascade)
	assert.True(t, cascade.RequestAccepted)
	assert.Equal(t, model.RequestStatusAccepted, s.backend.request("r1").Status)
	assert.Equal(t, model.FoodStatusAvailable, s.backend.food("f1").Status)
	assert.Equal(t, donateRetries+1, s.backend.updateFoodCalls)

	s.backend.failUpdateFood = 0
	require.NoError(t, s.requests.Accept(ctx, donor, "f1", "r1"))
	assert.Equal(t, model.FoodStatusDonated, s.backend.food("f1").Status)
	assert.Equal(t, 1, s.backend.requestStatusCalls, "accepted request is not patched again")
}

func TestAccept_ClientErrorIsNotRetried(t *testing.T) {
	s := newTestServices(t)
	s.backend.failUpdateFood = 100
	s.backend.failUpdateFoodError = &api.StatusError{Op: "update food", StatusCode: http.StatusBadRequest}

	err := s.requests.Accept(context.Background(), donor, "f1", "r1")

	var cascade *CascadeError
	require.ErrorAs(t, err, &cascade)
	assert.Equal(t, 1, s.backend.updateFoodCalls)
}

func TestMine(t *testing.T) {
	s := newTestServices(t)
	s.backend.requests = append(s.backend.requests, model.FoodRequest{
		ID: "r4", FoodID: "gone", UserEmail: "RIYA@example.com", Status: model.RequestStatusPending,
	})

	mine, err := s.requests.Mine(context.Background(), requester)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "Pizza", mine[0].Food.Name)
	assert.Equal(t, "Rice", mine[1].Food.Name)
	assert.Nil(t, mine[2].Food, "missing food is not an error")
}

func TestDetailView(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	owner, err := s.requests.DetailView(ctx, donor, "f1")
	require.NoError(t, err)
	assert.True(t, owner.IsOwner)
	assert.False(t, owner.CanRequest)
	assert.Len(t, owner.Requests, 2)
	require.Len(t, owner.Related, 1)
	assert.Equal(t, "f3", owner.Related[0].ID)

	other, err := s.requests.DetailView(ctx, requester, "f1")
	require.NoError(t, err)
	assert.False(t, other.IsOwner)
	assert.True(t, other.CanRequest)
	assert.True(t, other.AlreadyRequested)
	assert.Empty(t, other.Requests, "non-owner never sees requests")

	donated, err := s.requests.DetailView(ctx, requester, "f2")
	require.NoError(t, err)
	assert.False(t, donated.CanRequest)
	assert.Empty(t, donated.Related)

	_, err = s.requests.DetailView(ctx, requester, "missing")
	assert.ErrorIs(t, err, api.ErrNotFound)
}
