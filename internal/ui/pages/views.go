package pages

import (
	"fmt"
	"net/url"

	"github.com/a-h/templ"

	"github.com/templui/plateshare/internal/listing"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/validation"
)

type HomeData struct {
	Featured       []model.FoodListing
	FeaturedFailed bool
	Stats          model.DashboardStats
	StatsFailed    bool
}

type FoodsData struct {
	Params listing.Params
	Result listing.Result
	Failed bool
}

func (d FoodsData) PageURL(n int) string {
	return FoodsURL(d.Params.WithPage(n))
}

func (d FoodsData) PrevURL() string {
	return d.PageURL(d.Result.Page - 1)
}

func (d FoodsData) NextURL() string {
	return d.PageURL(d.Result.Page + 1)
}

func (d FoodsData) Filtered() bool {
	return d.Params.Search != "" || d.Params.Location != "" || d.Params.Status != ""
}

// Summary is the match count line above the results.
func (d FoodsData) Summary() string {
	s := fmt.Sprintf("%d foods found", d.Result.MatchCount)
	if d.Result.MatchCount == 1 {
		s = "1 food found"
	}
	if d.Result.PageCount > 1 {
		s += fmt.Sprintf(", page %d of %d", d.Result.Page, d.Result.PageCount)
	}
	return s
}

// PageValue is the page the results show, after clamping.
func (d FoodsData) PageValue() int {
	if d.Result.Page > 0 {
		return d.Result.Page
	}
	return max(d.Params.Page, 1)
}

// FoodsURL is the canonical browse URL for p.
func FoodsURL(p listing.Params) string {
	q := p.Values().Encode()
	if q == "" {
		return "/foods"
	}
	return "/foods?" + q
}

type FoodDetailData struct {
	Detail *service.Detail
	Form   service.RequestForm
	Errors validation.Errors
}

func (d FoodDetailData) RequestsHeading() string {
	if n := len(d.Detail.Requests); n > 0 {
		return fmt.Sprintf("Requests (%d)", n)
	}
	return "Requests"
}

// FoodFormData backs both the add and the edit form. ID is set when editing.
type FoodFormData struct {
	ID            string
	Form          service.FoodForm
	CurrentImage  string
	Errors        validation.Errors
	UploadEnabled bool
	Today         string
}

func (d FoodFormData) Editing() bool {
	return d.ID != ""
}

func (d FoodFormData) Action() string {
	if d.Editing() {
		return "/my-foods/" + url.PathEscape(d.ID)
	}
	return "/add-food"
}

func (d FoodFormData) CancelURL() string {
	if d.Editing() {
		return "/my-foods"
	}
	return "/foods"
}

type MyFoodsData struct {
	Foods  []model.FoodListing
	Failed bool
}

type MyRequestsData struct {
	Requests []model.RequestWithFood
	Failed   bool
}

// AuthData backs the login and register forms. Password is never echoed back.
type AuthData struct {
	From          string
	Name          string
	Email         string
	PhotoURL      string
	Errors        validation.Errors
	Message       string
	GoogleEnabled bool
}

// FromQuery is the from parameter to carry between the auth pages.
func (d AuthData) FromQuery() string {
	if d.From == "" || d.From == "/" {
		return ""
	}
	return "?from=" + url.QueryEscape(d.From)
}

type StaticData struct {
	Page *service.Page
}

type ContactData struct {
	Page   *service.Page
	Form   service.ContactMessage
	Errors validation.Errors
	Sent   bool
}

// ProfileData backs the profile form. Email is shown but cannot be changed.
type ProfileData struct {
	Name     string
	PhotoURL string
	Email    string
	Errors   validation.Errors
}

type ErrorData struct {
	Title   string
	Message string
}

func NotFound() templ.Component {
	return errorPage("Not Found", ErrorData{
		Title:   "Page not found",
		Message: "The page you are looking for does not exist.",
	})
}

// LoadFailed is shown when the main content of a page could not be loaded.
func LoadFailed(title, message string) templ.Component {
	return errorPage(title, ErrorData{Title: title, Message: message})
}
