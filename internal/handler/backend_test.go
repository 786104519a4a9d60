package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/config"
	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/identity"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/query"
	"github.com/templui/plateshare/internal/service"
)

const (
	donorEmail     = "dana@example.com"
	requesterEmail = "riley@example.com"
)

// restBackend is an in-memory REST backend speaking the same JSON as the real one.
type restBackend struct {
	mu         sync.Mutex
	foods      []model.FoodListing
	requests   []model.FoodRequest
	nextID     int
	down       bool
	failDonate bool
}

func (b *restBackend) id() string {
	b.nextID++
	return fmt.Sprintf("gen-%d", b.nextID)
}

func (b *restBackend) food(id string) *model.FoodListing {
	for i := range b.foods {
		if b.foods[i].ID == id {
			return &b.foods[i]
		}
	}
	return nil
}

func (b *restBackend) request(id string) *model.FoodRequest {
	for i := range b.requests {
		if b.requests[i].ID == id {
			return &b.requests[i]
		}
	}
	return nil
}

func (b *restBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /foods", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.foods)
	})
	mux.HandleFunc("GET /foods/{id}", func(w http.ResponseWriter, r *http.Request) {
		f := b.food(r.PathValue("id"))
		if f == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, f)
	})
	mux.HandleFunc("POST /foods", func(w http.ResponseWriter, r *http.Request) {
		var f model.FoodListing
		_ = json.NewDecoder(r.Body).Decode(&f)
		f.ID = b.id()
		b.foods = append(b.foods, f)
		writeJSON(w, map[string]string{"insertedId": f.ID})
	})
	mux.HandleFunc("PATCH /foods/{id}", func(w http.ResponseWriter, r *http.Request) {
		f := b.food(r.PathValue("id"))
		if f == nil {
			http.NotFound(w, r)
			return
		}
		var patch api.FoodPatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		if patch.Status != nil && b.failDonate {
			http.Error(w, "status is locked", http.StatusBadRequest)
			return
		}
		for field, v := range map[*string]*string{
			&f.Name: patch.Name, &f.Description: patch.Description, &f.Quantity: patch.Quantity,
			&f.Location: patch.Location, &f.Image: patch.Image, &f.Status: patch.Status, &f.ExpireDate: patch.ExpireDate,
		} {
			if v != nil {
				*field = *v
			}
		}
		writeJSON(w, f)
	})
	mux.HandleFunc("DELETE /foods/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		for i := range b.foods {
			if b.foods[i].ID == id {
				b.foods = append(b.foods[:i], b.foods[i+1:]...)
				break
			}
		}
		writeJSON(w, map[string]int{"deletedCount": 1})
	})
	mux.HandleFunc("GET /requests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, b.requests)
	})
	mux.HandleFunc("POST /requests", func(w http.ResponseWriter, r *http.Request) {
		var req model.FoodRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		req.ID = b.id()
		b.requests = append(b.requests, req)
		writeJSON(w, req)
	})
	mux.HandleFunc("PATCH /requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		req := b.request(r.PathValue("id"))
		if req == nil {
			http.NotFound(w, r)
			return
		}
		var patch struct {
			Status string `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&patch)
		req.Status = patch.Status
		writeJSON(w, map[string]int{"modifiedCount": 1})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.down {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type testEnv struct {
	backend  *restBackend
	foods    *service.FoodService
	requests *service.RequestService
	auth     *service.AuthService
	profiles *service.ProfileService
	email    *service.EmailService
}

// newTestEnv seeds one available food donated by donorEmail with one pending request.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := &restBackend{
		foods: []model.FoodListing{
			{ID: "f1", Name: "Sourdough Bread", Description: "Two loaves", Quantity: "2 loaves", Location: "Oak Street",
				Donor: "Dana", DonorEmail: donorEmail, Status: model.FoodStatusAvailable},
			{ID: "f2", Name: "Apples", Description: "A crate", Quantity: "10 kg", Location: "Elm Road",
				Donor: "Sam", DonorEmail: "sam@example.com", Status: model.FoodStatusAvailable},
		},
		requests: []model.FoodRequest{
			{ID: "r1", FoodID: "f1", UserName: "Riley", UserEmail: requesterEmail, Contact: "555 123 456",
				Location: "Main Square", Reason: "Family dinner", Status: model.RequestStatusPending},
		},
	}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	cache := query.New()
	t.Cleanup(cache.Close)

	cfg := &config.Config{
		AppEnv:    "development",
		AppURL:    "http://localhost:8090",
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
	client := api.NewWithHTTPClient(srv.URL, srv.Client())
	email := service.NewEmailService("", "noreply@example.com", "hello@example.com", cfg.AppURL, "PlateShare", true)
	foods := service.NewFoodService(client, cache, nil, 12)
	provider := identity.NewMemory()

	return &testEnv{
		backend:  backend,
		foods:    foods,
		requests: service.NewRequestService(client, cache, foods, email),
		auth:     service.NewAuthService(provider, email, cfg),
		profiles: service.NewProfileService(provider),
		email:    email,
	}
}

func (e *testEnv) setDown(down bool) {
	e.backend.mu.Lock()
	e.backend.down = down
	e.backend.mu.Unlock()
}

func (e *testEnv) foodByID(t *testing.T, id string) *model.FoodListing {
	t.Helper()
	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	f := e.backend.food(id)
	require.NotNil(t, f, "food %s", id)
	copied := *f
	return &copied
}

func (e *testEnv) requestByID(t *testing.T, id string) *model.FoodRequest {
	t.Helper()
	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	r := e.backend.request(id)
	require.NotNil(t, r, "request %s", id)
	copied := *r
	return &copied
}

func asUser(r *http.Request, email string) *http.Request {
	name, _, _ := strings.Cut(email, "@")
	user := &model.User{ID: "uid-" + name, Name: name, Email: email}
	return r.WithContext(ctxkeys.WithUser(r.Context(), user))
}

func postForm(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
