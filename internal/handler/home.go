package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/pages"
)

type HomeHandler struct {
	foodService *service.FoodService
}

func NewHomeHandler(foodService *service.FoodService) *HomeHandler {
	return &HomeHandler{foodService: foodService}
}

func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	data := pages.HomeData{}

	featured, err := h.foodService.Featured(r.Context())
	if err != nil {
		slog.Error("failed to load featured foods", "error", err)
		data.FeaturedFailed = true
	}
	data.Featured = featured

	stats, err := h.foodService.Stats(r.Context())
	if err != nil {
		slog.Error("failed to load stats", "error", err)
		data.StatsFailed = true
	}
	data.Stats = stats

	ui.Render(w, r, pages.Home(data))
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *HomeHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
