package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/a-h/templ"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/ui/pages"
)

const requestsPanelTarget = "requests-panel"

type RequestHandler struct {
	requestService *service.RequestService
}

func NewRequestHandler(requestService *service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) FoodDetail(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	detail, err := h.requestService.DetailView(r.Context(), user, id)
	if err != nil {
		h.loadFailed(w, r, err, id)
		return
	}

	ui.Render(w, r, pages.FoodDetail(pages.FoodDetailData{Detail: detail}))
}

func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	form := service.RequestForm{
		Location: r.FormValue("location"),
		Reason:   r.FormValue("reason"),
		Contact:  r.FormValue("contact"),
	}

	_, err := h.requestService.Create(r.Context(), user, id, form)
	if err == nil {
		redirectWithFlash(w, r, "/requests", toast.VariantSuccess, "Your request was sent to the donor.")
		return
	}

	logFailure("failed to submit request", err, "food_id", id, "user", user.Email)
	message := userMessage(err, "Failed to submit request. Please try again.")

	detail, derr := h.requestService.DetailView(r.Context(), user, id)
	if derr != nil {
		h.loadFailed(w, r, derr, id)
		return
	}

	status := http.StatusUnprocessableEntity
	if errors.Is(err, service.ErrOwnRequest) || errors.Is(err, service.ErrFoodNotAvailable) {
		status = http.StatusConflict
	}
	renderWithToast(w, r, status, toast.Error(message), pages.FoodDetail(pages.FoodDetailData{
		Detail: detail,
		Form:   form,
		Errors: fieldErrors(err),
	}))
}

func (h *RequestHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	foodID, requestID := r.PathValue("id"), r.PathValue("requestID")
	err := h.requestService.Accept(r.Context(), ctxkeys.User(r.Context()), foodID, requestID)
	h.decided(w, r, err, "Request accepted. The food is now marked as donated.", "Failed to accept request. Please try again.")
}

func (h *RequestHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	foodID, requestID := r.PathValue("id"), r.PathValue("requestID")
	err := h.requestService.Reject(r.Context(), ctxkeys.User(r.Context()), foodID, requestID)
	h.decided(w, r, err, "Request rejected.", "Failed to reject request. Please try again.")
}

// decided answers an accept or reject. HTMX requests targeting the requests
// panel get the fresh panel plus a toast; everything else is redirected back
// to the detail page.
func (h *RequestHandler) decided(w http.ResponseWriter, r *http.Request, err error, success, fallback string) {
	user := ctxkeys.User(r.Context())
	foodID := r.PathValue("id")

	variant := toast.VariantSuccess
	message := success
	var cascade *service.CascadeError
	switch {
	case errors.As(err, &cascade):
		variant = toast.VariantWarning
		message = userMessage(err, fallback)
	case err != nil:
		logFailure("failed to decide request", err, "food_id", foodID, "request_id", r.PathValue("requestID"), "user", user.Email)
		variant = toast.VariantError
		message = userMessage(err, fallback)
	}

	if !isHTMX(r) || r.Header.Get("HX-Target") != requestsPanelTarget {
		redirectWithFlash(w, r, "/food/"+url.PathEscape(foodID), variant, message)
		return
	}

	detail, derr := h.requestService.DetailView(r.Context(), user, foodID)
	if derr != nil {
		slog.Error("failed to reload requests panel", "error", derr, "food_id", foodID)
		w.Header().Set("HX-Reswap", "none")
		ui.RenderOOB(w, r, toast.Error(userMessage(derr, "Failed to reload requests. Please refresh the page.")), toastTarget)
		return
	}

	ui.Render(w, r, templ.Join(
		pages.RequestsPanel(pages.FoodDetailData{Detail: detail}),
		ui.OOB(decisionToast(variant, message), toastTarget),
	))
}

func decisionToast(variant toast.Variant, message string) templ.Component {
	switch variant {
	case toast.VariantError:
		return toast.Error(message)
	case toast.VariantWarning:
		return toast.Warning(message)
	}
	return toast.Success(message)
}

func (h *RequestHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	data := pages.MyRequestsData{}

	requests, err := h.requestService.Mine(r.Context(), user)
	if err != nil {
		slog.Error("failed to load my requests", "error", err, "user", user.Email)
		data.Failed = true
	}
	data.Requests = requests

	ui.Render(w, r, pages.MyRequests(data))
}

func (h *RequestHandler) loadFailed(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errors.Is(err, api.ErrNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}
	slog.Error("failed to load food", "error", err, "food_id", id)
	ui.RenderStatus(w, r, http.StatusBadGateway, pages.LoadFailed("Failed to load food", userMessage(err, "Please try again later.")))
}
