// Package listing filters, sorts and paginates the food list in memory.
// Every function is pure: the input slice is never modified.
package listing

import (
	"cmp"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/templui/plateshare/internal/model"
)

const DefaultPageSize = 12

const (
	SortNewest   = "newest"
	SortQuantity = "quantity"
	SortExpiry   = "expiry"
)

// Params are the browse controls of the foods page.
type Params struct {
	Search   string
	Location string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

// ParseParams reads params from a query string. Unknown sort keys and
// statuses are dropped, a missing or invalid page becomes 1.
func ParseParams(q url.Values) Params {
	p := Params{
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
		Page:     1,
	}

	if p.Status != model.FoodStatusAvailable && p.Status != model.FoodStatusDonated {
		p.Status = ""
	}
	if p.Sort != SortQuantity && p.Sort != SortExpiry {
		p.Sort = SortNewest
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Page = n
	}
	return p
}

// IsSubmission reports whether q came from the filter form rather than a link.
func IsSubmission(q url.Values) bool {
	return q.Has("prev_search")
}

// FromSubmission reads a filter form submission. The form carries the page
// and filters on screen as page and prev_*; a filter change goes back to the
// first page while a sort change keeps the current one.
func FromSubmission(q url.Values) Params {
	prev := ParseParams(url.Values{
		"search":   {q.Get("prev_search")},
		"location": {q.Get("prev_location")},
		"status":   {q.Get("prev_status")},
		"page":     {q.Get("page")},
	})
	next := ParseParams(q)
	return prev.WithFilters(next.Search, next.Location, next.Status).WithSort(next.Sort)
}

// Values encodes p back into a query string, omitting defaults.
func (p Params) Values() url.Values {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Location != "" {
		q.Set("location", p.Location)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Sort != "" && p.Sort != SortNewest {
		q.Set("sort", p.Sort)
	}
	if p.Page > 1 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

// WithFilters returns p with new filters. The page goes back to 1 when any filter changed.
func (p Params) WithFilters(search, location, status string) Params {
	if p.Search != search || p.Location != location || p.Status != status {
		p.Page = 1
	}
	p.Search = search
	p.Location = location
	p.Status = status
	return p
}

// WithSort returns p with a new sort key. The page is kept.
func (p Params) WithSort(sort string) Params {
	p.Sort = sort
	return p
}

func (p Params) WithPage(page int) Params {
	p.Page = page
	return p
}

type Result struct {
	Items      []model.FoodListing
	MatchCount int
	PageCount  int
	Page       int
	PageSize   int
}

func (r Result) HasPrev() bool {
	return r.Page > 1
}

func (r Result) HasNext() bool {
	return r.Page < r.PageCount
}

// Pages lists page numbers for pagination links.
func (r Result) Pages() []int {
	pages := make([]int, r.PageCount)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// Apply filters, sorts and paginates foods. An empty result is not an error.
func Apply(foods []model.FoodListing, p Params) Result {
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	matched := Filter(foods, p)
	Sort(matched, p.Sort)

	pageCount := int(math.Ceil(float64(len(matched)) / float64(size)))
	page := p.Page
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, len(matched))
	items := []model.FoodListing{}
	if start < end {
		items = matched[start:end]
	}

	return Result{
		Items:      items,
		MatchCount: len(matched),
		PageCount:  pageCount,
		Page:       page,
		PageSize:   size,
	}
}

// Filter returns a new slice with the listings matching every set filter.
func Filter(foods []model.FoodListing, p Params) []model.FoodListing {
	search := strings.ToLower(p.Search)
	location := strings.ToLower(p.Location)

	out := make([]model.FoodListing, 0, len(foods))
	for _, f := range foods {
		if search != "" &&
			!strings.Contains(strings.ToLower(f.Name), search) &&
			!strings.Contains(strings.ToLower(f.Description), search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(f.Location), location) {
			continue
		}
		if p.Status != "" && status(f) != p.Status {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Sort orders foods in place by key. Newest keeps collection order.
func Sort(foods []model.FoodListing, key string) {
	switch key {
	case SortQuantity:
		slices.SortStableFunc(foods, func(a, b model.FoodListing) int {
			return cmp.Compare(ParseQuantity(b.Quantity), ParseQuantity(a.Quantity))
		})
	case SortExpiry:
		slices.SortStableFunc(foods, compareExpiry)
	}
}

// compareExpiry orders later dates first and undated listings last.
func compareExpiry(a, b model.FoodListing) int {
	ta, okA := a.Expiry()
	tb, okB := b.Expiry()
	switch {
	case okA && okB:
		return tb.Compare(ta)
	case okA:
		return -1
	case okB:
		return 1
	}
	return 0
}

// ParseQuantity returns the first run of digits in s, e.g. 5 for "Serves 5".
// Text without digits, or a number too large for an int, yields 0.
func ParseQuantity(s string) int {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0
	}
	return n
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func status(f model.FoodListing) string {
	if f.Status == "" {
		return model.FoodStatusAvailable
	}
	return f.Status
}

// Featured returns up to n listings with the largest quantity.
func Featured(foods []model.FoodListing, n int) []model.FoodListing {
	sorted := slices.Clone(foods)
	Sort(sorted, SortQuantity)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func Stats(foods []model.FoodListing) model.DashboardStats {
	stats := model.DashboardStats{Total: len(foods)}
	for _, f := range foods {
		if f.IsAvailable() {
			stats.Available++
		} else {
			stats.Donated++
		}
	}
	return stats
}

// Related returns up to n other available listings at exactly the same
// location as current, in collection order. A donated listing has none.
func Related(foods []model.FoodListing, current *model.FoodListing, n int) []model.FoodListing {
	if current == nil || !current.IsAvailable() {
		return nil
	}

	var out []model.FoodListing
	for _, f := range foods {
		if len(out) == n {
			break
		}
		if f.ID == current.ID || f.Location != current.Location || !f.IsAvailable() {
			continue
		}
		out = append(out, f)
	}
	return out
}
