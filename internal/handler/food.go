package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/listing"
	"github.com/templui/plateshare/internal/middleware"
	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/ui/pages"
)

const foodsResultsTarget = "foods-results"

type FoodHandler struct {
	foodService *service.FoodService
	now         func() time.Time
}

func NewFoodHandler(foodService *service.FoodService) *FoodHandler {
	return &FoodHandler{foodService: foodService, now: time.Now}
}

func (h *FoodHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := listing.ParseParams(q)
	if listing.IsSubmission(q) {
		params = listing.FromSubmission(q)
		if !isHTMX(r) {
			http.Redirect(w, r, pages.FoodsURL(params), http.StatusSeeOther)
			return
		}
		w.Header().Set("HX-Push-Url", pages.FoodsURL(params))
	}
	data := pages.FoodsData{Params: params}

	result, err := h.foodService.Browse(r.Context(), params)
	if err != nil {
		slog.Error("failed to load foods", "error", err)
		data.Failed = true
	}
	data.Result = result

	if isHTMX(r) && r.Header.Get("HX-Target") == foodsResultsTarget {
		ui.Render(w, r, pages.FoodsResults(data))
		return
	}
	ui.Render(w, r, pages.Foods(data))
}

func (h *FoodHandler) AddFoodPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.AddFood(h.formData("", service.FoodForm{}, "")))
}

func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	form, err := parseFoodForm(r)
	if err != nil {
		slog.Warn("failed to parse food form", "error", err)
		renderWithToast(w, r, http.StatusBadRequest, toast.Error("The form could not be read. Please try again."),
			pages.AddFood(h.formData("", form, "")))
		return
	}

	food, err := h.foodService.Create(r.Context(), user, form)
	if err != nil {
		logFailure("failed to add food", err, "user", user.Email)
		data := h.formData("", form, "")
		data.Errors = fieldErrors(err)
		renderWithToast(w, r, http.StatusUnprocessableEntity, toast.Error(userMessage(err, "Failed to add food. Please try again.")),
			pages.AddFood(data))
		return
	}

	redirectWithFlash(w, r, "/my-foods", toast.VariantSuccess, food.Name+" was added. Thank you for sharing!")
}

func (h *FoodHandler) MyFoodsPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	data := pages.MyFoodsData{}

	foods, err := h.foodService.MyFoods(r.Context(), user)
	if err != nil {
		slog.Error("failed to load my foods", "error", err, "user", user.Email)
		data.Failed = true
	}
	data.Foods = foods

	ui.Render(w, r, pages.MyFoods(data))
}

func (h *FoodHandler) EditFoodPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	food, err := h.foodService.Food(r.Context(), id)
	if err != nil {
		h.loadFailed(w, r, err, id)
		return
	}
	if !food.IsOwnedBy(user.Email) {
		ui.RenderStatus(w, r, http.StatusForbidden, pages.LoadFailed("Not your food", "Only the donor can edit this food."))
		return
	}

	form := service.FoodForm{
		Name:        food.Name,
		Description: food.Description,
		Quantity:    food.Quantity,
		Location:    food.Location,
		ExpireDate:  food.ExpireDate,
	}
	ui.Render(w, r, pages.EditFood(h.formData(food.ID, form, food.Image)))
}

func (h *FoodHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	form, err := parseFoodForm(r)
	if err != nil {
		slog.Warn("failed to parse food form", "error", err, "food_id", id)
		renderWithToast(w, r, http.StatusBadRequest, toast.Error("The form could not be read. Please try again."),
			pages.EditFood(h.formData(id, form, "")))
		return
	}

	food, err := h.foodService.Update(r.Context(), user, id, form)
	if err != nil {
		logFailure("failed to update food", err, "food_id", id, "user", user.Email)
		data := h.formData(id, form, r.FormValue("current_image"))
		data.Errors = fieldErrors(err)
		status := http.StatusUnprocessableEntity
		if errors.Is(err, service.ErrNotOwner) {
			status = http.StatusForbidden
		}
		renderWithToast(w, r, status, toast.Error(userMessage(err, "Failed to update food. Please try again.")),
			pages.EditFood(data))
		return
	}

	redirectWithFlash(w, r, "/my-foods", toast.VariantSuccess, food.Name+" was updated.")
}

func (h *FoodHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	err := h.foodService.Delete(r.Context(), user, id)
	if err != nil {
		logFailure("failed to delete food", err, "food_id", id, "user", user.Email)
		redirectWithFlash(w, r, "/my-foods", toast.VariantError, userMessage(err, "Failed to delete food. Please try again."))
		return
	}

	redirectWithFlash(w, r, "/my-foods", toast.VariantSuccess, "Food deleted.")
}

func (h *FoodHandler) formData(id string, form service.FoodForm, currentImage string) pages.FoodFormData {
	return pages.FoodFormData{
		ID:            id,
		Form:          form,
		CurrentImage:  currentImage,
		UploadEnabled: h.foodService.UploadEnabled(),
		Today:         h.now().Format(model.DateLayout),
	}
}

// loadFailed renders the not found page for a missing food and an inline
// failure otherwise.
func (h *FoodHandler) loadFailed(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errors.Is(err, api.ErrNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}
	slog.Error("failed to load food", "error", err, "food_id", id)
	ui.RenderStatus(w, r, http.StatusBadGateway, pages.LoadFailed("Failed to load food", userMessage(err, "Please try again later.")))
}

// parseFoodForm reads the multipart add and edit form. An empty file input
// counts as no file.
func parseFoodForm(r *http.Request) (service.FoodForm, error) {
	err := r.ParseMultipartForm(middleware.MaxUploadMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return service.FoodForm{}, err
	}

	form := service.FoodForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Quantity:    r.FormValue("quantity"),
		Location:    r.FormValue("location"),
		ImageURL:    r.FormValue("image_url"),
		ExpireDate:  r.FormValue("expire_date"),
	}
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image_file"]; len(files) > 0 && files[0].Size > 0 {
			form.ImageFile = files[0]
		}
	}
	return form, nil
}
