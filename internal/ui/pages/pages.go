// Package pages renders the PlateShare screens. Each page is a templ
// component wrapped in the shared layout; the layout reads the signed in
// user, theme and toasts from the render context.
package pages

import (
	"context"
	"net/url"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/model"
)

const defaultAppName = "PlateShare"

func appName(ctx context.Context) string {
	if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
		return cfg.AppName
	}
	return defaultAppName
}

func tagline(ctx context.Context) string {
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		return cfg.AppTagline
	}
	return ""
}

func pageTitle(ctx context.Context, title string) string {
	if title == "" {
		return appName(ctx)
	}
	return title + " | " + appName(ctx)
}

func themeClass(ctx context.Context) string {
	if ctxkeys.Theme(ctx) == ctxkeys.ThemeDark {
		return "dark"
	}
	return ""
}

// cls merges tailwind classes so later ones win over conflicting earlier ones.
func cls(classes ...string) string {
	return twmerge.Merge(classes...)
}

func navClass(current, href string) string {
	active := current == href || (href != "/" && strings.HasPrefix(current, href+"/"))
	if active {
		return "rounded-md px-3 py-2 text-sm font-medium bg-green-600 text-white"
	}
	return "rounded-md px-3 py-2 text-sm font-medium text-gray-700 hover:bg-gray-100 dark:text-gray-200 dark:hover:bg-gray-800"
}

const badgeBase = "inline-flex items-center rounded-full px-2.5 py-0.5 text-xs font-medium"

func foodBadge(status string) string {
	if status == model.FoodStatusDonated {
		return twmerge.Merge(badgeBase, "bg-gray-200 text-gray-700")
	}
	return twmerge.Merge(badgeBase, "bg-green-100 text-green-800")
}

func requestBadge(status string) string {
	switch status {
	case model.RequestStatusAccepted:
		return twmerge.Merge(badgeBase, "bg-green-100 text-green-800")
	case model.RequestStatusRejected:
		return twmerge.Merge(badgeBase, "bg-red-100 text-red-800")
	}
	return twmerge.Merge(badgeBase, "bg-amber-100 text-amber-800")
}

func requestLabel(status string) string {
	if status == "" {
		return model.RequestStatusPending
	}
	return status
}

func foodURL(id string) string {
	return "/food/" + url.PathEscape(id)
}

func requestsURL(foodID string) string {
	return foodURL(foodID) + "/requests"
}

func requestActionURL(foodID, requestID, action string) string {
	return requestsURL(foodID) + "/" + url.PathEscape(requestID) + "/" + action
}

func editFoodURL(id string) string {
	return "/my-foods/" + url.PathEscape(id) + "/edit"
}

func deleteFoodURL(id string) string {
	return "/my-foods/" + url.PathEscape(id) + "/delete"
}

// formatDate shows a wire date as "May 10, 2024". Unparseable values are shown as is.
func formatDate(s string) string {
	f := model.FoodListing{ExpireDate: s}
	t, ok := f.Expiry()
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}
