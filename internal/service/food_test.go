package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/listing"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/validation"
)

func TestBrowse_StatusFilter(t *testing.T) {
	s := newTestServices(t)

	res, err := s.foods.Browse(context.Background(), listing.Params{Status: model.FoodStatusAvailable, Page: 1})
	require.NoError(t, err)

	names := []string{}
	for _, f := range res.Items {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Pizza", "Rice"}, names)
	assert.Equal(t, 12, res.PageSize)
}

func TestFoods_CachedUntilInvalidated(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.foods.Foods(ctx)
	require.NoError(t, err)
	_, err = s.foods.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.backend.foodsCalls)

	_, err = s.foods.Create(ctx, donor, FoodForm{
		Name:        "Soup",
		Description: "Lentil soup",
		Quantity:    "4 bowls",
		Location:    "Khulna",
		ImageURL:    "https://i.ibb.co/x/soup.jpg",
	})
	require.NoError(t, err)

	stats, err := s.foods.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.backend.foodsCalls)
	assert.Equal(t, model.DashboardStats{Total: 4, Available: 3, Donated: 1}, stats)
}

func TestCreate_DenormalizesDonor(t *testing.T) {
	s := newTestServices(t)

	food, err := s.foods.Create(context.Background(), donor, FoodForm{
		Name:        " Soup ",
		Description: "Lentil soup",
		Quantity:    "4 bowls",
		Location:    "Khulna",
		ImageURL:    "https://i.ibb.co/x/soup.jpg",
		ExpireDate:  "2024-05-12",
	})
	require.NoError(t, err)

	assert.Equal(t, "Soup", food.Name)
	assert.Equal(t, "Dana", food.Donor)
	assert.Equal(t, "dana@example.com", food.DonorEmail)
	assert.Equal(t, "https://example.com/dana.png", food.DonorPhoto)
	assert.Equal(t, model.FoodStatusAvailable, food.Status)
}

func TestCreate_Validation(t *testing.T) {
	s := newTestServices(t)

	_, err := s.foods.Create(context.Background(), donor, FoodForm{
		Name:       "Soup",
		ExpireDate: "2024-05-01",
	})

	var errs validation.Errors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "quantity")
	assert.Contains(t, errs, "location")
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "image")
	assert.Contains(t, errs, "expire_date")
	assert.NotContains(t, errs, "name")
}

func TestCreate_RequiresSession(t *testing.T) {
	s := newTestServices(t)
	_, err := s.foods.Create(context.Background(), nil, FoodForm{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	form := FoodForm{Name: "Pizza", Description: "Cheese", Quantity: "Serves 6", Location: "Dhaka"}

	_, err := s.foods.Update(ctx, requester, "f1", form)
	assert.ErrorIs(t, err, ErrNotOwner)

	food, err := s.foods.Update(ctx, donor, "f1", form)
	require.NoError(t, err)
	assert.Equal(t, "Serves 6", food.Quantity)
	assert.Equal(t, "Cheese", s.backend.food("f1").Description)
}

func TestUpdate_KeepsPassedExpiryWhenUnchanged(t *testing.T) {
	s := newTestServices(t)
	s.backend.foods[0].ExpireDate = "2024-01-01"

	_, err := s.foods.Update(context.Background(), donor, "f1", FoodForm{
		Name: "Pizza", Description: "d", Quantity: "1", Location: "Dhaka", ExpireDate: "2024-01-01",
	})
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	mine, err := s.foods.MyFoods(ctx, donor)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	assert.ErrorIs(t, s.foods.Delete(ctx, requester, "f1"), ErrNotOwner)
	require.NoError(t, s.foods.Delete(ctx, donor, "f1"))

	mine, err = s.foods.MyFoods(ctx, donor)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestCheckImageFile_NoFile(t *testing.T) {
	s := newTestServices(t)
	errs := validation.Errors{}
	s.foods.checkImageFile(errs, nil)
	assert.Empty(t, errs)
	assert.False(t, s.foods.UploadEnabled())
}

func TestRelated(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	pizza, err := s.foods.Food(ctx, "f1")
	require.NoError(t, err)

	related, err := s.foods.Related(ctx, pizza)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "f3", related[0].ID)
}
