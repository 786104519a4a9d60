package model

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

type FoodRequest struct {
	ID        string `json:"_id" validate:"required"`
	FoodID    string `json:"foodId" validate:"required"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhoto string `json:"userPhoto"`
	Contact   string `json:"contact"`
	Location  string `json:"location"`
	Reason    string `json:"reason"`
	Status    string `json:"status" validate:"omitempty,oneof=pending accepted rejected"`
}

func (r *FoodRequest) IsPending() bool {
	return r.Status == "" || r.Status == RequestStatusPending
}

// IsTerminal reports whether the request has been decided. Decisions are never reverted.
func (r *FoodRequest) IsTerminal() bool {
	return r.Status == RequestStatusAccepted || r.Status == RequestStatusRejected
}

// RequestWithFood joins a request with its listing. Food is nil when the
// listing could not be loaded.
type RequestWithFood struct {
	Request *FoodRequest
	Food    *FoodListing
}
