package listing

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/model"
)

func food(id, name, quantity, status string) model.FoodListing {
	return model.FoodListing{ID: id, Name: name, Quantity: quantity, Status: status}
}

func ids(foods []model.FoodListing) []string {
	out := make([]string, len(foods))
	for i, f := range foods {
		out[i] = f.ID
	}
	return out
}

func TestApply_StatusFilter(t *testing.T) {
	foods := []model.FoodListing{
		food("1", "Pizza", "Serves 5", model.FoodStatusAvailable),
		food("2", "Bread", "Serves 2", model.FoodStatusDonated),
	}

	res := Apply(foods, Params{Status: model.FoodStatusAvailable, Page: 1})

	assert.Equal(t, []string{"1"}, ids(res.Items))
	assert.Equal(t, 1, res.MatchCount)
}

func TestFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "1", Name: "Fresh Bread"},
		{ID: "2", Name: "Soup", Description: "with a slice of BREAD"},
		{ID: "3", Name: "Rice"},
	}

	for _, term := range []string{"bread", "BREAD", "Bre"} {
		t.Run(term, func(t *testing.T) {
			assert.Equal(t, []string{"1", "2"}, ids(Filter(foods, Params{Search: term})))
		})
	}
}

func TestFilter_LocationAndStatusCombineWithAnd(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "1", Location: "Dhaka North", Status: model.FoodStatusAvailable},
		{ID: "2", Location: "dhaka south", Status: model.FoodStatusDonated},
		{ID: "3", Location: "Chittagong", Status: model.FoodStatusAvailable},
		{ID: "4", Location: "Dhaka", Status: ""},
	}

	got := Filter(foods, Params{Location: "DHAKA", Status: model.FoodStatusAvailable})
	assert.Equal(t, []string{"1", "4"}, ids(got), "empty status counts as available")
}

func TestFilter_Idempotent(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "1", Name: "Pizza", Location: "Dhaka", Status: model.FoodStatusAvailable},
		{ID: "2", Name: "Pizza slice", Location: "Khulna", Status: model.FoodStatusAvailable},
		{ID: "3", Name: "Bread", Location: "Dhaka", Status: model.FoodStatusDonated},
	}
	params := []Params{
		{Search: "pizza"},
		{Location: "dhaka"},
		{Status: model.FoodStatusDonated},
		{Search: "p", Location: "a", Status: model.FoodStatusAvailable},
		{},
	}

	for i, p := range params {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			once := Filter(foods, p)
			assert.Equal(t, once, Filter(once, p))
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Serves 5", 5},
		{"12 plates", 12},
		{"about 3-4 people", 3},
		{"a few", 0},
		{"", 0},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseQuantity(tt.in), tt.in)
	}
}

func TestSort_QuantityDescendingAndStable(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "a", Quantity: "some"},
		{ID: "b", Quantity: "Serves 2"},
		{ID: "c", Quantity: "10 boxes"},
		{ID: "d", Quantity: "2 trays"},
	}

	res := Apply(foods, Params{Sort: SortQuantity})
	assert.Equal(t, []string{"c", "b", "d", "a"}, ids(res.Items))
	assert.Equal(t, "a", foods[0].ID, "input is not reordered")
}

func TestSort_ExpiryUndatedLast(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "none"},
		{ID: "early", ExpireDate: "2024-01-01"},
		{ID: "bad", ExpireDate: "tomorrow"},
		{ID: "late", ExpireDate: "2024-06-01"},
		{ID: "rfc", ExpireDate: "2024-03-01T10:00:00Z"},
	}

	res := Apply(foods, Params{Sort: SortExpiry})
	assert.Equal(t, []string{"late", "rfc", "early", "none", "bad"}, ids(res.Items))
}

func TestSort_NewestKeepsOrder(t *testing.T) {
	foods := []model.FoodListing{{ID: "3"}, {ID: "1"}, {ID: "2"}}
	assert.Equal(t, []string{"3", "1", "2"}, ids(Apply(foods, Params{}).Items))
}

func TestApply_Pagination(t *testing.T) {
	foods := make([]model.FoodListing, 25)
	for i := range foods {
		foods[i] = model.FoodListing{ID: fmt.Sprint(i)}
	}

	tests := []struct {
		name     string
		page     int
		wantPage int
		wantLen  int
	}{
		{"first", 1, 1, 12},
		{"last partial", 3, 3, 1},
		{"beyond range clamps", 9, 3, 1},
		{"zero clamps", 0, 1, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(foods, Params{Page: tt.page})
			assert.Equal(t, 3, res.PageCount)
			assert.Equal(t, 25, res.MatchCount)
			assert.Equal(t, tt.wantPage, res.Page)
			assert.Len(t, res.Items, tt.wantLen)
		})
	}
}

func TestApply_EmptyResult(t *testing.T) {
	res := Apply(nil, Params{Page: 1})
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, 0, res.MatchCount)
	assert.Equal(t, 0, res.PageCount)
	assert.Equal(t, 1, res.Page)
	assert.False(t, res.HasNext())
	assert.False(t, res.HasPrev())
}

func TestApply_CustomPageSize(t *testing.T) {
	foods := make([]model.FoodListing, 7)
	res := Apply(foods, Params{Page: 2, PageSize: 3})
	assert.Equal(t, 3, res.PageCount)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, []int{1, 2, 3}, res.Pages())
}

func TestParams_PageReset(t *testing.T) {
	p := Params{Search: "rice", Sort: SortNewest, Page: 3}

	assert.Equal(t, 3, p.WithSort(SortQuantity).Page, "sort keeps page")
	assert.Equal(t, 3, p.WithFilters("rice", "", "").Page, "unchanged filters keep page")
	assert.Equal(t, 1, p.WithFilters("bread", "", "").Page)
	assert.Equal(t, 1, p.WithFilters("rice", "Dhaka", "").Page)
	assert.Equal(t, 1, p.WithFilters("rice", "", model.FoodStatusDonated).Page)
}

func TestFromSubmission(t *testing.T) {
	onScreen := url.Values{
		"prev_search":   {"rice"},
		"prev_location": {""},
		"prev_status":   {""},
		"page":          {"2"},
	}
	submit := func(changes url.Values) url.Values {
		q := url.Values{"search": {"rice"}, "location": {""}, "status": {""}, "sort": {SortNewest}}
		for k, v := range onScreen {
			q[k] = v
		}
		for k, v := range changes {
			q[k] = v
		}
		return q
	}

	tests := []struct {
		name    string
		changes url.Values
		want    Params
	}{
		{"sort change keeps page", url.Values{"sort": {SortQuantity}}, Params{Search: "rice", Sort: SortQuantity, Page: 2}},
		{"nothing changed", nil, Params{Search: "rice", Sort: SortNewest, Page: 2}},
		{"search change resets page", url.Values{"search": {"bread"}}, Params{Search: "bread", Sort: SortNewest, Page: 1}},
		{"status change resets page", url.Values{"status": {model.FoodStatusDonated}}, Params{Search: "rice", Status: model.FoodStatusDonated, Sort: SortNewest, Page: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := submit(tt.changes)
			assert.True(t, IsSubmission(q))
			assert.Equal(t, tt.want, FromSubmission(q))
		})
	}

	assert.False(t, IsSubmission(url.Values{"search": {"rice"}, "page": {"2"}}), "pagination links are not submissions")
}

func TestParseParams_RoundTrip(t *testing.T) {
	q, err := url.ParseQuery("search=rice&location=Dhaka&status=available&sort=expiry&page=2")
	require.NoError(t, err)

	p := ParseParams(q)
	assert.Equal(t, Params{Search: "rice", Location: "Dhaka", Status: "available", Sort: SortExpiry, Page: 2}, p)
	assert.Equal(t, q, p.Values())
}

func TestParseParams_Defaults(t *testing.T) {
	q, err := url.ParseQuery("status=eaten&sort=random&page=-4")
	require.NoError(t, err)

	p := ParseParams(q)
	assert.Equal(t, Params{Sort: SortNewest, Page: 1}, p)
	assert.Empty(t, p.Values())
}

func TestFeatured(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "a", Quantity: "1"},
		{ID: "b", Quantity: "8"},
		{ID: "c", Quantity: "3"},
	}
	assert.Equal(t, []string{"b", "c"}, ids(Featured(foods, 2)))
	assert.Equal(t, "a", foods[0].ID)
}

func TestStats(t *testing.T) {
	foods := []model.FoodListing{
		{Status: model.FoodStatusAvailable},
		{Status: model.FoodStatusDonated},
		{Status: ""},
	}
	assert.Equal(t, model.DashboardStats{Total: 3, Available: 2, Donated: 1}, Stats(foods))
}

func TestRelated(t *testing.T) {
	foods := []model.FoodListing{
		{ID: "1", Location: "Dhaka"},
		{ID: "2", Location: "Dhaka"},
		{ID: "3", Location: "dhaka"},
		{ID: "4", Location: "Dhaka", Status: model.FoodStatusDonated},
		{ID: "5", Location: "Dhaka"},
		{ID: "6", Location: "Dhaka"},
		{ID: "7", Location: "Dhaka"},
		{ID: "8", Location: "Dhaka"},
	}

	current := &foods[0]
	assert.Equal(t, []string{"2", "5", "6", "7"}, ids(Related(foods, current, 4)))

	donated := &model.FoodListing{ID: "9", Location: "Dhaka", Status: model.FoodStatusDonated}
	assert.Empty(t, Related(foods, donated, 4))
}
