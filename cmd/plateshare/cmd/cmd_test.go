package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/model"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	foods := []model.FoodListing{
		{ID: "f1", Name: "Sourdough Bread", Quantity: "2 loaves", Location: "Oak Street", DonorEmail: "dana@example.com"},
		{ID: "f2", Name: "Apples", Quantity: "10 kg", Location: "Elm Road", DonorEmail: "sam@example.com", Status: model.FoodStatusDonated},
	}
	requests := []model.FoodRequest{
		{ID: "r1", FoodID: "f1", UserName: "Riley", UserEmail: "riley@example.com", Contact: "555 123 456", Location: "Main Square"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /foods", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(foods)
	})
	mux.HandleFunc("GET /foods/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, f := range foods {
			if f.ID == r.PathValue("id") {
				_ = json.NewEncoder(w).Encode(f)
				return
			}
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("GET /requests", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(requests)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "plateshare", SilenceUsage: true, SilenceErrors: true}
	env := Bind(root)
	root.AddCommand(FoodsCmd(env), FoodCmd(env), StatsCmd(env), RequestsCmd(env), AcceptCmd(env), RejectCmd(env))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api", api}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestFoodsCmd(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "foods", "--search", "bread")
	require.NoError(t, err)
	assert.Contains(t, out, "Sourdough Bread")
	assert.NotContains(t, out, "Apples")
	assert.Contains(t, out, "page 1 of 1, 1 matching")

	out, err = run(t, srv.URL, "foods", "--status", "donated")
	require.NoError(t, err)
	assert.Contains(t, out, "Apples")
	assert.NotContains(t, out, "Sourdough Bread")

	out, err = run(t, srv.URL, "foods", "--location", "nowhere")
	require.NoError(t, err)
	assert.Contains(t, out, "No foods found.")
}

func TestFoodCmd(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "food", "f1")
	require.NoError(t, err)
	assert.Contains(t, out, "Sourdough Bread")
	assert.Contains(t, out, "available")

	_, err = run(t, srv.URL, "food", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestStatsCmd(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "stats")
	require.NoError(t, err)
	assert.Regexp(t, `Total\s+2`, out)
	assert.Regexp(t, `Available\s+1`, out)
	assert.Regexp(t, `Donated\s+1`, out)
}

func TestRequestsCmd(t *testing.T) {
	srv := newBackend(t)

	out, err := run(t, srv.URL, "requests", "f1")
	require.NoError(t, err)
	assert.Contains(t, out, "riley@example.com")
	assert.Contains(t, out, "pending")

	out, err = run(t, srv.URL, "requests", "f2")
	require.NoError(t, err)
	assert.Contains(t, out, "No requests yet.")
}

func TestAcceptCmd_NotOwner(t *testing.T) {
	srv := newBackend(t)

	_, err := run(t, srv.URL, "accept", "f1", "r1", "--as", "riley@example.com")
	assert.ErrorContains(t, err, "only the donor")

	_, err = run(t, srv.URL, "reject", "f1", "r1")
	assert.ErrorContains(t, err, `"as" not set`)
}

func TestMissingBackend(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	_, err := run(t, "", "stats")
	assert.ErrorContains(t, err, "no backend configured")
}
