package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/templui/plateshare/internal/model"
)

// FoodInput is the body of POST /foods.
type FoodInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Quantity    string   `json:"quantity"`
	Location    string   `json:"location"`
	Image       string   `json:"image"`
	Images      []string `json:"images,omitempty"`
	Donor       string   `json:"donor"`
	DonorEmail  string   `json:"donorEmail"`
	DonorPhoto  string   `json:"donorPhoto"`
	Status      string   `json:"food_status"`
	ExpireDate  string   `json:"expireDate,omitempty"`
}

// FoodPatch is the body of PATCH /foods/{id}. Nil fields are left untouched.
type FoodPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Quantity    *string `json:"quantity,omitempty"`
	Location    *string `json:"location,omitempty"`
	Image       *string `json:"image,omitempty"`
	Status      *string `json:"food_status,omitempty"`
	ExpireDate  *string `json:"expireDate,omitempty"`
}

func (c *Client) Foods(ctx context.Context) ([]model.FoodListing, error) {
	const op = "list foods"

	var foods []model.FoodListing
	err := c.do(ctx, op, http.MethodGet, "/foods", nil, &foods)
	if err != nil {
		return nil, err
	}

	for i := range foods {
		err = c.check(op, &foods[i])
		if err != nil {
			return nil, err
		}
		normalizeFood(&foods[i])
	}
	return foods, nil
}

func (c *Client) Food(ctx context.Context, id string) (*model.FoodListing, error) {
	const op = "get food"

	food := &model.FoodListing{}
	err := c.do(ctx, op, http.MethodGet, "/foods/"+url.PathEscape(id), nil, food)
	if err != nil {
		return nil, err
	}

	err = c.check(op, food)
	if err != nil {
		return nil, err
	}
	normalizeFood(food)
	return food, nil
}

func (c *Client) CreateFood(ctx context.Context, in FoodInput) (*model.FoodListing, error) {
	const op = "create food"

	if in.Status == "" {
		in.Status = model.FoodStatusAvailable
	}

	var raw json.RawMessage
	err := c.do(ctx, op, http.MethodPost, "/foods", in, &raw)
	if err != nil {
		return nil, err
	}

	if hasDocumentID(raw) {
		food := &model.FoodListing{}
		err = json.Unmarshal(raw, food)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
		}
		normalizeFood(food)
		return food, nil
	}

	var a ack
	err = json.Unmarshal(raw, &a)
	if err != nil || a.insertedID() == "" {
		return nil, fmt.Errorf("%s: %w: neither document nor insertedId", op, ErrMalformedResponse)
	}

	return &model.FoodListing{
		ID:          a.insertedID(),
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		Location:    in.Location,
		Image:       in.Image,
		Images:      in.Images,
		Donor:       in.Donor,
		DonorEmail:  in.DonorEmail,
		DonorPhoto:  in.DonorPhoto,
		Status:      in.Status,
		ExpireDate:  in.ExpireDate,
	}, nil
}

// UpdateFood patches a listing and returns the updated document. When the
// backend only acknowledges the write, the listing is fetched again.
func (c *Client) UpdateFood(ctx context.Context, id string, patch FoodPatch) (*model.FoodListing, error) {
	const op = "update food"

	var raw json.RawMessage
	err := c.do(ctx, op, http.MethodPatch, "/foods/"+url.PathEscape(id), patch, &raw)
	if err != nil {
		return nil, err
	}

	if hasDocumentID(raw) {
		food := &model.FoodListing{}
		err = json.Unmarshal(raw, food)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
		}
		normalizeFood(food)
		return food, nil
	}

	return c.Food(ctx, id)
}

func (c *Client) DeleteFood(ctx context.Context, id string) error {
	return c.do(ctx, "delete food", http.MethodDelete, "/foods/"+url.PathEscape(id), nil, nil)
}

func normalizeFood(f *model.FoodListing) {
	if f.Status == "" {
		f.Status = model.FoodStatusAvailable
	}
}
