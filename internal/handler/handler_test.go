package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/middleware"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/validation"
)

func TestSafeFrom(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/"},
		{"/food/f1", "/food/f1"},
		{"/foods?search=bread", "/foods?search=bread"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"food/f1", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeFrom(tt.in), tt.in)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Only the donor can manage this food.", userMessage(service.ErrNotOwner, "fallback"))
	assert.Equal(t, "Quantity is required", userMessage(validation.Errors{"quantity": "Quantity is required"}, "fallback"))
	assert.Equal(t, "This food no longer exists.", userMessage(fmt.Errorf("load: %w", api.ErrNotFound), "fallback"))
	assert.Contains(t, userMessage(&service.CascadeError{RequestAccepted: true, Err: api.ErrUnavailable}, "fallback"), "could not be marked as donated")
	assert.Equal(t, "fallback", userMessage(fmt.Errorf("boom"), "fallback"))
}

func TestHomePage(t *testing.T) {
	env := newTestEnv(t)
	h := NewHomeHandler(env.foods)

	rec := httptest.NewRecorder()
	h.HomePage(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sourdough Bread")
	assert.NotContains(t, rec.Body.String(), "Failed to load")

	t.Run("backend down shows inline failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.setDown(true)
		h := NewHomeHandler(env.foods)

		rec := httptest.NewRecorder()
		h.HomePage(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to load foods.")
		assert.Contains(t, rec.Body.String(), "Failed to load statistics.")
	})
}

func TestNotFoundAndHealthz(t *testing.T) {
	h := NewHomeHandler(nil)

	rec := httptest.NewRecorder()
	h.NotFoundPage(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListFoods(t *testing.T) {
	env := newTestEnv(t)
	h := NewFoodHandler(env.foods)

	rec := httptest.NewRecorder()
	h.ListFoods(rec, httptest.NewRequest(http.MethodGet, "/foods?search=bread", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "Sourdough Bread")
	assert.NotContains(t, body, "Apples")

	t.Run("htmx gets only the results", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/foods?location=elm", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", "foods-results")
		rec := httptest.NewRecorder()
		h.ListFoods(rec, req)

		body := rec.Body.String()
		assert.NotContains(t, body, "<!doctype html>")
		assert.Contains(t, body, `id="foods-results"`)
		assert.Contains(t, body, "Apples")
		assert.NotContains(t, body, "Sourdough Bread")
	})

	t.Run("backend down", func(t *testing.T) {
		env := newTestEnv(t)
		env.setDown(true)
		h := NewFoodHandler(env.foods)

		rec := httptest.NewRecorder()
		h.ListFoods(rec, httptest.NewRequest(http.MethodGet, "/foods", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to load foods.")
	})
}

func TestListFoods_FilterForm(t *testing.T) {
	env := newTestEnv(t)
	for i := range 26 {
		env.backend.foods = append(env.backend.foods, model.FoodListing{
			ID: fmt.Sprintf("rice-%02d", i), Name: fmt.Sprintf("Rice Bag %02d", i), Quantity: "1 bag",
			Location: "Pine Lane", Status: model.FoodStatusAvailable,
		})
	}
	h := NewFoodHandler(env.foods)

	// The form as submitted from page 2 of the unfiltered list.
	submit := func(changes url.Values) url.Values {
		q := url.Values{
			"search": {""}, "location": {""}, "status": {""}, "sort": {"newest"},
			"page": {"2"}, "prev_search": {""}, "prev_location": {""}, "prev_status": {""},
		}
		for k, v := range changes {
			q[k] = v
		}
		return q
	}
	htmx := func(q url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/foods?"+q.Encode(), nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", "foods-results")
		rec := httptest.NewRecorder()
		h.ListFoods(rec, req)
		return rec
	}

	t.Run("sort change keeps the page", func(t *testing.T) {
		rec := htmx(submit(url.Values{"sort": {"quantity"}}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/foods?page=2&sort=quantity", rec.Header().Get("HX-Push-Url"))
		assert.Contains(t, rec.Body.String(), `name="page" value="2"`)
		assert.Contains(t, rec.Body.String(), "28 foods found, page 2 of 3")
	})

	t.Run("search change goes to the first page", func(t *testing.T) {
		rec := htmx(submit(url.Values{"search": {"rice"}}))
		assert.Equal(t, "/foods?search=rice", rec.Header().Get("HX-Push-Url"))
		assert.Contains(t, rec.Body.String(), `name="page" value="1"`)
		assert.Contains(t, rec.Body.String(), "26 foods found, page 1 of 3")
	})

	t.Run("plain submission redirects to the canonical url", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListFoods(rec, httptest.NewRequest(http.MethodGet, "/foods?"+submit(url.Values{"sort": {"quantity"}}).Encode(), nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/foods?page=2&sort=quantity", rec.Header().Get("Location"))
	})

	t.Run("pagination links are read as is", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/foods?page=3", nil)
		rec := httptest.NewRecorder()
		h.ListFoods(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("HX-Push-Url"))
		assert.Contains(t, rec.Body.String(), "page 3 of 3")
	})
}

func foodForm(t *testing.T, target string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	// An empty file input is sent by browsers when no file was chosen.
	_, err := mw.CreateFormFile("image_file", "")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, target, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestCreateFood(t *testing.T) {
	env := newTestEnv(t)
	h := NewFoodHandler(env.foods)

	req := asUser(foodForm(t, "/add-food", map[string]string{
		"name":        "Vegetable Soup",
		"description": "Homemade, still warm",
		"quantity":    "4 bowls",
		"location":    "Pine Avenue",
		"image_url":   "https://example.com/soup.jpg",
	}), donorEmail)
	rec := httptest.NewRecorder()
	h.CreateFood(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/my-foods", rec.Header().Get("Location"))
	assert.NotNil(t, cookie(rec, "flash"))

	env.backend.mu.Lock()
	created := env.backend.foods[len(env.backend.foods)-1]
	env.backend.mu.Unlock()
	assert.Equal(t, "Vegetable Soup", created.Name)
	assert.Equal(t, donorEmail, created.DonorEmail)
	assert.Equal(t, model.FoodStatusAvailable, created.Status)

	t.Run("invalid form keeps values", func(t *testing.T) {
		req := asUser(foodForm(t, "/add-food", map[string]string{
			"description": "Homemade, still warm",
			"quantity":    "4 bowls",
			"location":    "Pine Avenue",
			"image_url":   "https://example.com/soup.jpg",
		}), donorEmail)
		rec := httptest.NewRecorder()
		h.CreateFood(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Food name is required")
		assert.Contains(t, body, "Pine Avenue")
		assert.Contains(t, body, "data-toast")
		assert.Nil(t, cookie(rec, "flash"))
	})
}

func TestEditFoodPage(t *testing.T) {
	env := newTestEnv(t)
	h := NewFoodHandler(env.foods)

	tests := []struct {
		name   string
		id     string
		user   string
		status int
	}{
		{"owner", "f1", donorEmail, http.StatusOK},
		{"not owner", "f1", requesterEmail, http.StatusForbidden},
		{"missing", "nope", donorEmail, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/my-foods/"+tt.id+"/edit", nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()
			h.EditFoodPage(rec, asUser(req, tt.user))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUpdateFood(t *testing.T) {
	env := newTestEnv(t)
	h := NewFoodHandler(env.foods)

	req := foodForm(t, "/my-foods/f1", map[string]string{
		"name":        "Rye Bread",
		"description": "Two loaves",
		"quantity":    "2 loaves",
		"location":    "Oak Street",
	})
	req.SetPathValue("id", "f1")
	rec := httptest.NewRecorder()
	h.UpdateFood(rec, asUser(req, donorEmail))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "Rye Bread", env.foodByID(t, "f1").Name)

	t.Run("not owner", func(t *testing.T) {
		req := foodForm(t, "/my-foods/f1", map[string]string{
			"name": "Mine now", "description": "x", "quantity": "1", "location": "Elsewhere",
		})
		req.SetPathValue("id", "f1")
		rec := httptest.NewRecorder()
		h.UpdateFood(rec, asUser(req, requesterEmail))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Rye Bread", env.foodByID(t, "f1").Name)
	})
}

func TestDeleteFood(t *testing.T) {
	env := newTestEnv(t)
	h := NewFoodHandler(env.foods)

	req := postForm("/my-foods/f1/delete", nil)
	req.SetPathValue("id", "f1")
	rec := httptest.NewRecorder()
	h.DeleteFood(rec, asUser(req, donorEmail))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/my-foods", rec.Header().Get("Location"))

	mine, err := env.foods.MyFoods(req.Context(), &model.User{Email: donorEmail})
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestMyFoodsPage(t *testing.T) {
	env := newTestEnv(t)
	h := NewFoodHandler(env.foods)

	rec := httptest.NewRecorder()
	h.MyFoodsPage(rec, asUser(httptest.NewRequest(http.MethodGet, "/my-foods", nil), donorEmail))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sourdough Bread")
	assert.NotContains(t, rec.Body.String(), "Apples")
}

func TestFoodDetail(t *testing.T) {
	env := newTestEnv(t)
	h := NewRequestHandler(env.requests)

	req := httptest.NewRequest(http.MethodGet, "/food/f1", nil)
	req.SetPathValue("id", "f1")
	rec := httptest.NewRecorder()
	h.FoodDetail(rec, asUser(req, donorEmail))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="requests-panel"`)
	assert.Contains(t, rec.Body.String(), requesterEmail)

	req = httptest.NewRequest(http.MethodGet, "/food/nope", nil)
	req.SetPathValue("id", "nope")
	rec = httptest.NewRecorder()
	h.FoodDetail(rec, asUser(req, donorEmail))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t)
	h := NewRequestHandler(env.requests)

	form := url.Values{"location": {"Main Square"}, "reason": {"For the shelter"}, "contact": {"+1 555 987 654"}}

	req := postForm("/food/f2/requests", form)
	req.SetPathValue("id", "f2")
	rec := httptest.NewRecorder()
	h.CreateRequest(rec, asUser(req, requesterEmail))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/requests", rec.Header().Get("Location"))

	env.backend.mu.Lock()
	created := env.backend.requests[len(env.backend.requests)-1]
	env.backend.mu.Unlock()
	assert.Equal(t, "f2", created.FoodID)
	assert.Equal(t, model.RequestStatusPending, created.Status)

	t.Run("own food", func(t *testing.T) {
		req := postForm("/food/f1/requests", form)
		req.SetPathValue("id", "f1")
		rec := httptest.NewRecorder()
		h.CreateRequest(rec, asUser(req, donorEmail))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "You cannot request your own food.")
	})

	t.Run("invalid contact keeps values", func(t *testing.T) {
		bad := url.Values{"location": {"Main Square"}, "reason": {"For the shelter"}, "contact": {"call me"}}
		req := postForm("/food/f2/requests", bad)
		req.SetPathValue("id", "f2")
		rec := httptest.NewRecorder()
		h.CreateRequest(rec, asUser(req, requesterEmail))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "For the shelter")
	})
}

func decide(h *RequestHandler, action, foodID, requestID, user string, htmx bool) *httptest.ResponseRecorder {
	req := postForm("/food/"+foodID+"/requests/"+requestID+"/"+action, nil)
	req.SetPathValue("id", foodID)
	req.SetPathValue("requestID", requestID)
	if htmx {
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", "requests-panel")
	}
	rec := httptest.NewRecorder()
	if action == "accept" {
		h.AcceptRequest(rec, asUser(req, user))
	} else {
		h.RejectRequest(rec, asUser(req, user))
	}
	return rec
}

func TestAcceptRequest(t *testing.T) {
	env := newTestEnv(t)
	h := NewRequestHandler(env.requests)

	rec := decide(h, "accept", "f1", "r1", donorEmail, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="requests-panel"`)
	assert.Contains(t, body, `hx-swap-oob="beforeend:#toast-container"`)
	assert.Contains(t, body, "Request accepted.")

	assert.Equal(t, model.RequestStatusAccepted, env.requestByID(t, "r1").Status)
	assert.Equal(t, model.FoodStatusDonated, env.foodByID(t, "f1").Status)

	t.Run("not owner", func(t *testing.T) {
		rec := decide(h, "accept", "f1", "r1", requesterEmail, false)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/food/f1", rec.Header().Get("Location"))
		assert.NotNil(t, cookie(rec, "flash"))
	})
}

func TestAcceptRequest_CascadeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.failDonate = true
	h := NewRequestHandler(env.requests)

	rec := decide(h, "accept", "f1", "r1", donorEmail, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be marked as donated")
	assert.Contains(t, rec.Body.String(), `data-variant="warning"`)

	assert.Equal(t, model.RequestStatusAccepted, env.requestByID(t, "r1").Status)
	assert.Equal(t, model.FoodStatusAvailable, env.foodByID(t, "f1").Status)

	// Accepting again finishes the donation.
	env.backend.mu.Lock()
	env.backend.failDonate = false
	env.backend.mu.Unlock()

	rec = decide(h, "accept", "f1", "r1", donorEmail, true)
	assert.Contains(t, rec.Body.String(), `data-variant="success"`)
	assert.Equal(t, model.FoodStatusDonated, env.foodByID(t, "f1").Status)
}

func TestRejectRequest(t *testing.T) {
	env := newTestEnv(t)
	h := NewRequestHandler(env.requests)

	rec := decide(h, "reject", "f1", "r1", donorEmail, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/food/f1", rec.Header().Get("Location"))

	assert.Equal(t, model.RequestStatusRejected, env.requestByID(t, "r1").Status)
	assert.Equal(t, model.FoodStatusAvailable, env.foodByID(t, "f1").Status)
}

func TestMyRequests(t *testing.T) {
	env := newTestEnv(t)
	h := NewRequestHandler(env.requests)

	rec := httptest.NewRecorder()
	h.MyRequests(rec, asUser(httptest.NewRequest(http.MethodGet, "/requests", nil), requesterEmail))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sourdough Bread")

	other := newTestEnv(t)
	other.setDown(true)
	rec = httptest.NewRecorder()
	NewRequestHandler(other.requests).MyRequests(rec, asUser(httptest.NewRequest(http.MethodGet, "/requests", nil), requesterEmail))
	assert.Contains(t, rec.Body.String(), "Failed to load your requests.")
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.auth)

	register := url.Values{"name": {"Riley"}, "email": {requesterEmail}, "password": {"Secret123"}}
	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register?from=%2Ffood%2Ff1", register))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/food/f1", rec.Header().Get("Location"))
	require.NotNil(t, cookie(rec, "auth_token"))

	t.Run("duplicate email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Register(rec, postForm("/register", register))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "An account with this email already exists.")
	})

	t.Run("login", func(t *testing.T) {
		form := url.Values{"email": {requesterEmail}, "password": {"Secret123"}}
		rec := httptest.NewRecorder()
		h.Login(rec, postForm("/login?from=%2F%2Fevil.example", form))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))

		session := cookie(rec, "auth_token")
		require.NotNil(t, session)
		user, err := env.auth.VerifyJWT(session.Value)
		require.NoError(t, err)
		assert.Equal(t, requesterEmail, user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		form := url.Values{"email": {requesterEmail}, "password": {"nope-nope"}}
		rec := httptest.NewRecorder()
		h.Login(rec, postForm("/login", form))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Wrong password. Please try again.")
		assert.Contains(t, rec.Body.String(), requesterEmail)
		assert.Nil(t, cookie(rec, "auth_token"))
	})

	t.Run("invalid email", func(t *testing.T) {
		form := url.Values{"email": {"not-an-email"}, "password": {"x"}}
		rec := httptest.NewRecorder()
		h.Login(rec, postForm("/login", form))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	h := NewProfileHandler(env.profiles, env.auth)

	user, err := env.auth.Register(context.Background(), service.RegisterForm{Name: "Riley", Email: requesterEmail, Password: "Secret123"})
	require.NoError(t, err)
	signedIn := func(r *http.Request) *http.Request {
		return r.WithContext(ctxkeys.WithUser(r.Context(), user))
	}

	rec := httptest.NewRecorder()
	h.ProfilePage(rec, signedIn(httptest.NewRequest(http.MethodGet, "/profile", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Riley"`)
	assert.Contains(t, rec.Body.String(), requesterEmail)

	t.Run("update refreshes the session", func(t *testing.T) {
		form := url.Values{"name": {"Riley Quinn"}, "photo_url": {"https://example.com/riley.png"}}
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, signedIn(postForm("/profile", form)))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/profile", rec.Header().Get("Location"))
		assert.NotNil(t, cookie(rec, "flash"))

		session := cookie(rec, "auth_token")
		require.NotNil(t, session)
		refreshed, err := env.auth.VerifyJWT(session.Value)
		require.NoError(t, err)
		assert.Equal(t, "Riley Quinn", refreshed.Name)
		assert.Equal(t, "https://example.com/riley.png", refreshed.PhotoURL)
		assert.Equal(t, user.ID, refreshed.ID)
	})

	t.Run("invalid form", func(t *testing.T) {
		form := url.Values{"name": {""}, "photo_url": {"javascript:alert(1)"}}
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, signedIn(postForm("/profile", form)))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-variant="error"`)
		assert.Nil(t, cookie(rec, "auth_token"))
	})

	t.Run("stale session asks to log in again", func(t *testing.T) {
		stale := *user
		stale.Token = ""
		req := postForm("/profile", url.Values{"name": {"Riley"}})
		req = req.WithContext(ctxkeys.WithUser(req.Context(), &stale))

		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login?from=%2Fprofile", rec.Header().Get("Location"))
		session := cookie(rec, "auth_token")
		require.NotNil(t, session)
		assert.Empty(t, session.Value)
	})
}

func TestGoogleAuth_Disabled(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.auth)

	rec := httptest.NewRecorder()
	h.GoogleAuth(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, cookie(rec, oauthStateCookie))
}

func TestGoogleCallback_StateMismatch(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.auth)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: "different"})
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, cookie(rec, "auth_token"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.auth)

	rec := httptest.NewRecorder()
	h.Logout(rec, postForm("/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	session := cookie(rec, "auth_token")
	require.NotNil(t, session)
	assert.Equal(t, -1, session.MaxAge)
}

func TestToggleTheme(t *testing.T) {
	rec := httptest.NewRecorder()
	ToggleTheme(rec, postForm("/theme", url.Values{"next": {"/foods"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/foods", rec.Header().Get("Location"))
	require.NotNil(t, cookie(rec, middleware.ThemeCookie))
	assert.Equal(t, "dark", cookie(rec, middleware.ThemeCookie).Value)

	req := postForm("/theme", url.Values{"next": {"https://evil.example"}})
	req = req.WithContext(ctxkeys.WithTheme(req.Context(), ctxkeys.ThemeDark))
	rec = httptest.NewRecorder()
	ToggleTheme(rec, req)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "light", cookie(rec, middleware.ThemeCookie).Value)
}

func newPageHandler(t *testing.T) *PageHandler {
	t.Helper()
	fsys := fstest.MapFS{
		"pages/about.md":   {Data: []byte("---\ntitle: About PlateShare\n---\nWe share food.\n")},
		"pages/contact.md": {Data: []byte("---\ntitle: Contact\n---\nWrite to us.\n")},
	}
	env := newTestEnv(t)
	return NewPageHandler(service.NewPageService(fsys, false), env.email)
}

func TestStaticPages(t *testing.T) {
	h := newPageHandler(t)

	rec := httptest.NewRecorder()
	h.Static("about")(rec, httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About PlateShare")
	assert.Contains(t, rec.Body.String(), "We share food.")

	rec = httptest.NewRecorder()
	h.Static("missing")(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContact(t *testing.T) {
	h := newPageHandler(t)

	rec := httptest.NewRecorder()
	h.ContactPage(rec, asUser(httptest.NewRequest(http.MethodGet, "/contact", nil), requesterEmail))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), requesterEmail)

	form := url.Values{"name": {"Riley"}, "email": {requesterEmail}, "message": {"Can I volunteer?"}}
	rec = httptest.NewRecorder()
	h.Contact(rec, postForm("/contact", form))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you!")

	form.Del("message")
	rec = httptest.NewRecorder()
	h.Contact(rec, postForm("/contact", form))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Message is required")
}
