package model

import (
	"strings"
	"time"
)

const (
	FoodStatusAvailable = "available"
	FoodStatusDonated   = "donated"
)

// DateLayout is the calendar date format used for expire dates on the wire and in forms.
const DateLayout = "2006-01-02"

type FoodListing struct {
	ID          string   `json:"_id" validate:"required"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Quantity    string   `json:"quantity"`
	Location    string   `json:"location"`
	Image       string   `json:"image"`
	Images      []string `json:"images,omitempty"`
	Donor       string   `json:"donor"`
	DonorEmail  string   `json:"donorEmail"`
	DonorPhoto  string   `json:"donorPhoto"`
	Status      string   `json:"food_status" validate:"omitempty,oneof=available donated"`
	ExpireDate  string   `json:"expireDate,omitempty"`
}

// IsAvailable treats an empty status as available, matching listings
// created before the status field existed.
func (f *FoodListing) IsAvailable() bool {
	return f.Status != FoodStatusDonated
}

func (f *FoodListing) IsOwnedBy(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(f.DonorEmail), email)
}

// Expiry parses ExpireDate. ok is false when the date is missing or unparseable.
func (f *FoodListing) Expiry() (t time.Time, ok bool) {
	s := strings.TrimSpace(f.ExpireDate)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err == nil {
		return t, true
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, true
	}
	return time.Time{}, false
}

// DashboardStats summarises the full food list.
type DashboardStats struct {
	Total     int
	Available int
	Donated   int
}
