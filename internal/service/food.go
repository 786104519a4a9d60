package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/listing"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/query"
	"github.com/templui/plateshare/internal/storage"
	"github.com/templui/plateshare/internal/validation"
)

const (
	featuredCount = 6
	relatedCount  = 4
)

// FoodForm is the add and edit form. ImageFile, when set, wins over ImageURL.
type FoodForm struct {
	Name        string
	Description string
	Quantity    string
	Location    string
	ImageURL    string
	ExpireDate  string
	ImageFile   *multipart.FileHeader
}

func (f *FoodForm) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Quantity = strings.TrimSpace(f.Quantity)
	f.Location = strings.TrimSpace(f.Location)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.ExpireDate = strings.TrimSpace(f.ExpireDate)
}

func (f *FoodForm) validate(today time.Time) validation.Errors {
	errs := validation.Errors{}
	errs.Check("name", validation.Required("Food name", f.Name))
	errs.Check("quantity", validation.Required("Quantity", f.Quantity))
	errs.Check("location", validation.Required("Pickup location", f.Location))
	errs.Check("description", validation.Required("Description", f.Description))
	errs.Check("image", validation.ValidateImageURL(f.ImageURL))
	errs.Check("expire_date", validation.ValidateExpireDate(f.ExpireDate, today))
	return errs
}

type FoodService struct {
	backend  Backend
	cache    *query.Cache
	uploader storage.Uploader
	pageSize int
	now      func() time.Time
}

// NewFoodService creates the food service. uploader may be nil, in which case
// only image URLs are accepted.
func NewFoodService(backend Backend, cache *query.Cache, uploader storage.Uploader, pageSize int) *FoodService {
	return &FoodService{
		backend:  backend,
		cache:    cache,
		uploader: uploader,
		pageSize: pageSize,
		now:      time.Now,
	}
}

func (s *FoodService) UploadEnabled() bool {
	return s.uploader != nil
}

func (s *FoodService) Foods(ctx context.Context) ([]model.FoodListing, error) {
	return query.Fetch(ctx, s.cache, keyFoods, s.backend.Foods)
}

func (s *FoodService) Food(ctx context.Context, id string) (*model.FoodListing, error) {
	return query.Fetch(ctx, s.cache, keyFood(id), func(ctx context.Context) (*model.FoodListing, error) {
		return s.backend.Food(ctx, id)
	})
}

// Browse runs the listing pipeline over all foods.
func (s *FoodService) Browse(ctx context.Context, p listing.Params) (listing.Result, error) {
	foods, err := s.Foods(ctx)
	if err != nil {
		return listing.Result{}, err
	}
	p.PageSize = s.pageSize
	return listing.Apply(foods, p), nil
}

func (s *FoodService) Featured(ctx context.Context) ([]model.FoodListing, error) {
	foods, err := s.Foods(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Featured(foods, featuredCount), nil
}

func (s *FoodService) Stats(ctx context.Context) (model.DashboardStats, error) {
	foods, err := s.Foods(ctx)
	if err != nil {
		return model.DashboardStats{}, err
	}
	return listing.Stats(foods), nil
}

// Related suggests other available foods at the same pickup location.
func (s *FoodService) Related(ctx context.Context, food *model.FoodListing) ([]model.FoodListing, error) {
	if food == nil || !food.IsAvailable() {
		return nil, nil
	}
	foods, err := s.Foods(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Related(foods, food, relatedCount), nil
}

// MyFoods returns the listings donated by user, in collection order.
func (s *FoodService) MyFoods(ctx context.Context, user *model.User) ([]model.FoodListing, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	return query.Fetch(ctx, s.cache, keyMyFoods(user.Email), func(ctx context.Context) ([]model.FoodListing, error) {
		foods, err := s.backend.Foods(ctx)
		if err != nil {
			return nil, err
		}
		mine := []model.FoodListing{}
		for _, f := range foods {
			if f.IsOwnedBy(user.Email) {
				mine = append(mine, f)
			}
		}
		return mine, nil
	})
}

// Create posts a new listing donated by user. Validation problems are
// returned as validation.Errors.
func (s *FoodService) Create(ctx context.Context, user *model.User, form FoodForm) (*model.FoodListing, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	form.trim()
	errs := form.validate(s.now())
	if form.ImageFile == nil && form.ImageURL == "" {
		errs.Check("image", fmt.Errorf("add a photo or an image URL"))
	}
	s.checkImageFile(errs, form.ImageFile)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	image, err := s.imageURL(ctx, form)
	if err != nil {
		return nil, err
	}

	food, err := s.backend.CreateFood(ctx, api.FoodInput{
		Name:        form.Name,
		Description: form.Description,
		Quantity:    form.Quantity,
		Location:    form.Location,
		Image:       image,
		Donor:       user.DisplayName(),
		DonorEmail:  user.Email,
		DonorPhoto:  user.PhotoURL,
		Status:      model.FoodStatusAvailable,
		ExpireDate:  form.ExpireDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add food: %w", err)
	}

	s.cache.Invalidate(keyFoods)
	s.cache.Invalidate(keyMyFoods(user.Email))

	slog.Info("food added", "food_id", food.ID, "donor", user.Email)
	return food, nil
}

// Update patches the editable fields of a listing owned by user.
// The image is replaced only when a new file or URL is given.
func (s *FoodService) Update(ctx context.Context, user *model.User, id string, form FoodForm) (*model.FoodListing, error) {
	current, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	form.trim()
	errs := form.validate(s.now())
	if form.ExpireDate == current.ExpireDate {
		// An unchanged date may already have passed.
		delete(errs, "expire_date")
	}
	s.checkImageFile(errs, form.ImageFile)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	patch := api.FoodPatch{
		Name:        &form.Name,
		Description: &form.Description,
		Quantity:    &form.Quantity,
		Location:    &form.Location,
		ExpireDate:  &form.ExpireDate,
	}

	image, err := s.imageURL(ctx, form)
	if err != nil {
		return nil, err
	}
	if image != "" {
		patch.Image = &image
	}

	food, err := s.backend.UpdateFood(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update food: %w", err)
	}

	s.invalidateFood(id, user.Email)
	return food, nil
}

func (s *FoodService) Delete(ctx context.Context, user *model.User, id string) error {
	_, err := s.owned(ctx, user, id)
	if err != nil {
		return err
	}

	err = s.backend.DeleteFood(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete food: %w", err)
	}

	s.invalidateFood(id, user.Email)
	s.cache.Invalidate(keyFoodRequests(id))

	slog.Info("food deleted", "food_id", id, "donor", user.Email)
	return nil
}

// owned loads the listing from the backend, bypassing the cache, and checks that user donated it.
func (s *FoodService) owned(ctx context.Context, user *model.User, id string) (*model.FoodListing, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	food, err := s.backend.Food(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load food: %w", err)
	}
	if !food.IsOwnedBy(user.Email) {
		return nil, ErrNotOwner
	}
	return food, nil
}

func (s *FoodService) invalidateFood(id, donorEmail string) {
	s.cache.Invalidate(keyFoods)
	s.cache.Invalidate(keyFood(id))
	s.cache.Invalidate(keyMyFoods(donorEmail))
}

func (s *FoodService) checkImageFile(errs validation.Errors, header *multipart.FileHeader) {
	if header == nil {
		return
	}
	if s.uploader == nil {
		errs.Check("image", ErrUploadDisabled)
		return
	}
	_, err := validation.ValidateImage(header)
	errs.Check("image", err)
}

// imageURL uploads the attached file, if any, and returns the URL to store.
func (s *FoodService) imageURL(ctx context.Context, form FoodForm) (string, error) {
	if form.ImageFile == nil {
		return form.ImageURL, nil
	}

	file, err := form.ImageFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	url, err := s.uploader.Upload(ctx, form.ImageFile.Filename, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
