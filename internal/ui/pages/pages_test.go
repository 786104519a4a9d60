package pages

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/listing"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/validation"
)

var dana = &model.User{ID: "u1", Name: "Dana", Email: "dana@example.com"}

func testContext(user *model.User) context.Context {
	ctx := context.Background()
	ctx = ctxkeys.WithConfig(ctx, &config.Config{AppName: "PlateShare", AppTagline: "Share your surplus food"})
	ctx = ctxkeys.WithCSRFToken(ctx, "csrf-123")
	ctx = ctxkeys.WithURLPath(ctx, "/foods")
	ctx = templ.WithNonce(ctx, "nonce-abc")
	if user != nil {
		ctx = ctxkeys.WithUser(ctx, user)
	}
	return ctx
}

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

var pizza = model.FoodListing{
	ID:         "f1",
	Name:       "Pizza",
	Quantity:   "3 boxes",
	Location:   "Dhanmondi",
	Image:      "https://img.example.com/pizza.jpg",
	Donor:      "Dana",
	DonorEmail: "dana@example.com",
	Status:     model.FoodStatusAvailable,
	ExpireDate: "2024-05-12",
}

func TestLayout(t *testing.T) {
	ctx := ui.WithToast(testContext(nil), toast.Success("Food added"))
	html := render(t, ctx, NotFound())

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "<title>Not Found | PlateShare</title>")
	assert.Contains(t, html, `name="csrf-token" content="csrf-123"`)
	assert.Contains(t, html, `nonce="nonce-abc"`)
	assert.Contains(t, html, "Food added")
	assert.Contains(t, html, `href="/login"`, "guests see login")
	assert.NotContains(t, html, "Manage My Foods")
}

func TestLayout_SignedIn(t *testing.T) {
	ctx := ctxkeys.WithTheme(testContext(dana), ctxkeys.ThemeDark)
	html := render(t, ctx, NotFound())

	assert.Contains(t, html, `class="dark"`)
	assert.Contains(t, html, "Manage My Foods")
	assert.Contains(t, html, "My Food Requests")
	assert.Contains(t, html, `action="/logout"`)
	assert.Contains(t, html, ">D</span>", "initial shown without photo")
}

func TestHome(t *testing.T) {
	html := render(t, testContext(nil), Home(HomeData{
		Featured: []model.FoodListing{pizza},
		Stats:    model.DashboardStats{Total: 7, Available: 4, Donated: 3},
	}))

	assert.Contains(t, html, "Pizza")
	assert.Contains(t, html, `href="/food/f1"`)
	assert.Contains(t, html, ">7</dd>")
	assert.Contains(t, html, "Expires May 12, 2024")

	html = render(t, testContext(nil), Home(HomeData{FeaturedFailed: true, StatsFailed: true}))
	assert.Contains(t, html, "Failed to load foods.")
	assert.Contains(t, html, "Failed to load statistics.")
}

func TestFoods(t *testing.T) {
	foods := make([]model.FoodListing, 30)
	for i := range foods {
		foods[i] = pizza
	}
	params := listing.ParseParams(url.Values{"search": {"pizza"}, "page": {"2"}})
	data := FoodsData{Params: params, Result: listing.Apply(foods, params)}

	html := render(t, testContext(nil), Foods(data))
	assert.Contains(t, html, `value="pizza"`)
	assert.Contains(t, html, "30 foods found, page 2 of 3")
	assert.Contains(t, html, `href="/foods?search=pizza"`, "previous page drops the page param")
	assert.Contains(t, html, `href="/foods?page=3&amp;search=pizza"`)
	assert.Contains(t, html, `aria-current="page"`)

	results := render(t, testContext(nil), FoodsResults(data))
	assert.Contains(t, results, `id="foods-results"`)
	assert.NotContains(t, results, "<html")
}

func TestFoods_FormState(t *testing.T) {
	foods := make([]model.FoodListing, 30)
	for i := range foods {
		foods[i] = pizza
	}
	params := listing.ParseParams(url.Values{"search": {"pizza"}, "status": {"available"}, "sort": {"expiry"}, "page": {"2"}})
	html := render(t, testContext(nil), FoodsResults(FoodsData{Params: params, Result: listing.Apply(foods, params)}))

	assert.Contains(t, html, `form="foods-filters" name="page" value="2"`)
	assert.Contains(t, html, `form="foods-filters" name="prev_search" value="pizza"`)
	assert.Contains(t, html, `form="foods-filters" name="prev_status" value="available"`)
}

func TestFoods_SortOptions(t *testing.T) {
	params := listing.ParseParams(url.Values{"sort": {"expiry"}})
	html := render(t, testContext(nil), Foods(FoodsData{Params: params, Result: listing.Apply(nil, params)}))

	assert.Contains(t, html, `<option value="expiry" selected>Latest expiry first</option>`)
	assert.Contains(t, html, `<option value="newest">Newest first</option>`)
	assert.NotContains(t, html, "Expiring soonest")
}

func TestFoods_Empty(t *testing.T) {
	params := listing.ParseParams(url.Values{"location": {"nowhere"}})
	html := render(t, testContext(nil), Foods(FoodsData{Params: params, Result: listing.Apply(nil, params)}))

	assert.Contains(t, html, "No foods match your search.")
	assert.Contains(t, html, "Clear filters")
}

func TestFoodsData_URLs(t *testing.T) {
	d := FoodsData{Params: listing.Params{Sort: listing.SortExpiry, Page: 2}, Result: listing.Result{Page: 2, PageCount: 3}}
	assert.Equal(t, "/foods?sort=expiry", d.PrevURL())
	assert.Equal(t, "/foods?page=3&sort=expiry", d.NextURL())
	assert.False(t, d.Filtered())
}

func TestFoodDetail_Requester(t *testing.T) {
	food := pizza
	html := render(t, testContext(&model.User{Email: "riya@example.com", Name: "Riya"}), FoodDetail(FoodDetailData{
		Detail: &service.Detail{Food: &food, CanRequest: true},
		Form:   service.RequestForm{Location: "Mirpur"},
		Errors: validation.Errors{"contact": "Enter a valid phone number"},
	}))

	assert.Contains(t, html, `action="/food/f1/requests"`)
	assert.Contains(t, html, `value="Mirpur"`)
	assert.Contains(t, html, "Enter a valid phone number")
	assert.NotContains(t, html, "requests-panel")
}

func TestFoodDetail_Donated(t *testing.T) {
	food := pizza
	food.Status = model.FoodStatusDonated
	html := render(t, testContext(&model.User{Email: "riya@example.com"}), FoodDetail(FoodDetailData{
		Detail: &service.Detail{Food: &food},
	}))

	assert.Contains(t, html, "This food has already been donated.")
	assert.NotContains(t, html, "Request Food")
}

func TestFoodDetail_Owner(t *testing.T) {
	food := pizza
	data := FoodDetailData{Detail: &service.Detail{
		Food:    &food,
		IsOwner: true,
		Requests: []model.FoodRequest{
			{ID: "r1", FoodID: "f1", UserName: "Riya", Status: model.RequestStatusPending},
			{ID: "r2", FoodID: "f1", UserName: "Sam", Status: model.RequestStatusRejected},
		},
	}}

	html := render(t, testContext(dana), FoodDetail(data))
	assert.Contains(t, html, `href="/my-foods/f1/edit"`)
	assert.Contains(t, html, "Requests (2)")
	assert.Contains(t, html, `hx-post="/food/f1/requests/r1/accept"`)
	assert.Contains(t, html, `action="/food/f1/requests/r1/accept"`)
	assert.Contains(t, html, `action="/food/f1/requests/r1/reject"`)
	assert.NotContains(t, html, "/requests/r2/", "decided requests have no actions")

	panel := render(t, testContext(dana), RequestsPanel(data))
	assert.Contains(t, panel, `id="requests-panel"`)
	assert.NotContains(t, panel, "<html")
}

func TestFoodDetail_OwnerResumesDonation(t *testing.T) {
	food := pizza
	html := render(t, testContext(dana), RequestsPanel(FoodDetailData{Detail: &service.Detail{
		Food:     &food,
		IsOwner:  true,
		Requests: []model.FoodRequest{{ID: "r1", FoodID: "f1", Status: model.RequestStatusAccepted}},
	}}))

	assert.Contains(t, html, "Mark as donated")
}

func TestFoodForm(t *testing.T) {
	html := render(t, testContext(dana), AddFood(FoodFormData{
		Form:          service.FoodForm{Name: "Soup"},
		Errors:        validation.Errors{"quantity": "Quantity is required"},
		UploadEnabled: true,
		Today:         "2024-05-10",
	}))
	assert.Contains(t, html, `action="/add-food"`)
	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, `name="image_file"`)
	assert.Contains(t, html, `min="2024-05-10"`)
	assert.Contains(t, html, "Quantity is required")

	html = render(t, testContext(dana), EditFood(FoodFormData{ID: "f1", CurrentImage: pizza.Image}))
	assert.Contains(t, html, `action="/my-foods/f1"`)
	assert.Contains(t, html, "Save changes")
	assert.NotContains(t, html, `name="image_file"`)
}

func TestMyFoods(t *testing.T) {
	html := render(t, testContext(dana), MyFoods(MyFoodsData{Foods: []model.FoodListing{pizza}}))
	assert.Contains(t, html, `action="/my-foods/f1/delete"`)
	assert.Contains(t, html, `href="/my-foods/f1/edit"`)

	html = render(t, testContext(dana), MyFoods(MyFoodsData{}))
	assert.Contains(t, html, "You have not shared any food yet.")
}

func TestMyRequests(t *testing.T) {
	food := pizza
	html := render(t, testContext(dana), MyRequests(MyRequestsData{Requests: []model.RequestWithFood{
		{Request: &model.FoodRequest{ID: "r1", Status: model.RequestStatusAccepted}, Food: &food},
		{Request: &model.FoodRequest{ID: "r2", Reason: "Lunch"}},
	}}))

	assert.Contains(t, html, "Contact dana@example.com to arrange pickup.")
	assert.Contains(t, html, "Listing no longer available")
	assert.Contains(t, html, ">pending</span>")
}

func TestLogin(t *testing.T) {
	html := render(t, testContext(nil), Login(AuthData{
		From:          "/food/f1",
		Email:         "dana@example.com",
		Message:       "Incorrect password.",
		GoogleEnabled: true,
	}))

	assert.Contains(t, html, `action="/login?from=%2Ffood%2Ff1"`)
	assert.Contains(t, html, `value="dana@example.com"`)
	assert.Contains(t, html, "Incorrect password.")
	assert.Contains(t, html, "Continue with Google")
}

func TestAuthData_FromQuery(t *testing.T) {
	assert.Equal(t, "", AuthData{}.FromQuery())
	assert.Equal(t, "", AuthData{From: "/"}.FromQuery())
	assert.Equal(t, "?from=%2Fmy-foods", AuthData{From: "/my-foods"}.FromQuery())
}

func TestRegister(t *testing.T) {
	html := render(t, testContext(nil), Register(AuthData{Name: "Dana", Errors: validation.Errors{"password": "Password is too short"}}))

	assert.Contains(t, html, `value="Dana"`)
	assert.Contains(t, html, "Password is too short")
	assert.NotContains(t, html, "Continue with Google")
}

func TestStaticAndContact(t *testing.T) {
	page := &service.Page{Slug: "about", Title: "About Us", Content: template.HTML("<p>We share food.</p>")}

	html := render(t, testContext(nil), Static(StaticData{Page: page}))
	assert.Contains(t, html, "<h1>About Us</h1>")
	assert.Contains(t, html, "<p>We share food.</p>")

	html = render(t, testContext(nil), Contact(ContactData{Page: page, Sent: true}))
	assert.Contains(t, html, "Your message has been sent.")
	assert.NotContains(t, html, `action="/contact"`)
}

func TestProfile(t *testing.T) {
	html := render(t, testContext(dana), Profile(ProfileData{
		Name:   "Dana",
		Email:  "dana@example.com",
		Errors: validation.Errors{"photo_url": "Enter a valid image URL"},
	}))

	assert.Contains(t, html, "<title>Profile | PlateShare</title>")
	assert.Contains(t, html, `action="/profile"`)
	assert.Contains(t, html, `name="name" type="text" value="Dana"`)
	assert.Contains(t, html, "Enter a valid image URL")
	assert.Contains(t, html, `href="/profile"`, "navbar links to the profile")
}

func TestLoadFailed(t *testing.T) {
	html := render(t, testContext(nil), LoadFailed("Food", "Failed to load food."))
	assert.Contains(t, html, "Failed to load food.")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "May 10, 2024", formatDate("2024-05-10"))
	assert.Equal(t, "soon", formatDate("soon"))
	assert.Equal(t, "", formatDate(""))
}

func TestNavClass(t *testing.T) {
	assert.Contains(t, navClass("/foods", "/foods"), "bg-green-600")
	assert.Contains(t, navClass("/my-foods/f1/edit", "/my-foods"), "bg-green-600")
	assert.NotContains(t, navClass("/foods", "/"), "bg-green-600")
}
