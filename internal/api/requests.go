package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/templui/plateshare/internal/model"
)

// RequestInput is the body of POST /requests.
type RequestInput struct {
	FoodID    string `json:"foodId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhoto string `json:"userPhoto"`
	Contact   string `json:"contact"`
	Location  string `json:"location"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
}

type statusPatch struct {
	Status string `json:"status"`
}

// Requests returns every request known to the backend. Callers filter by food or requester.
func (c *Client) Requests(ctx context.Context) ([]model.FoodRequest, error) {
	const op = "list requests"

	var requests []model.FoodRequest
	err := c.do(ctx, op, http.MethodGet, "/requests", nil, &requests)
	if err != nil {
		return nil, err
	}

	for i := range requests {
		err = c.check(op, &requests[i])
		if err != nil {
			return nil, err
		}
		normalizeRequest(&requests[i])
	}
	return requests, nil
}

func (c *Client) CreateRequest(ctx context.Context, in RequestInput) (*model.FoodRequest, error) {
	const op = "create request"

	in.Status = model.RequestStatusPending

	var raw json.RawMessage
	err := c.do(ctx, op, http.MethodPost, "/requests", in, &raw)
	if err != nil {
		return nil, err
	}

	if hasDocumentID(raw) {
		req := &model.FoodRequest{}
		err = json.Unmarshal(raw, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
		}
		normalizeRequest(req)
		return req, nil
	}

	var a ack
	err = json.Unmarshal(raw, &a)
	if err != nil || a.insertedID() == "" {
		return nil, fmt.Errorf("%s: %w: neither document nor insertedId", op, ErrMalformedResponse)
	}

	return &model.FoodRequest{
		ID:        a.insertedID(),
		FoodID:    in.FoodID,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
		UserPhoto: in.UserPhoto,
		Contact:   in.Contact,
		Location:  in.Location,
		Reason:    in.Reason,
		Status:    in.Status,
	}, nil
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, "update request", http.MethodPatch, "/requests/"+url.PathEscape(id), statusPatch{Status: status}, nil)
}

func normalizeRequest(r *model.FoodRequest) {
	if r.Status == "" {
		r.Status = model.RequestStatusPending
	}
}
