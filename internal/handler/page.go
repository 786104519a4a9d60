package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/plateshare/internal/ctxkeys"
	"github.com/templui/plateshare/internal/service"
	"github.com/templui/plateshare/internal/ui"
	"github.com/templui/plateshare/internal/ui/components/toast"
	"github.com/templui/plateshare/internal/ui/pages"
)

const contactSlug = "contact"

type PageHandler struct {
	pageService  *service.PageService
	emailService *service.EmailService
}

func NewPageHandler(pageService *service.PageService, emailService *service.EmailService) *PageHandler {
	return &PageHandler{
		pageService:  pageService,
		emailService: emailService,
	}
}

// Static serves the markdown page slug.
func (h *PageHandler) Static(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := h.page(w, r, slug)
		if !ok {
			return
		}
		ui.Render(w, r, pages.Static(pages.StaticData{Page: page}))
	}
}

func (h *PageHandler) ContactPage(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r, contactSlug)
	if !ok {
		return
	}

	data := pages.ContactData{Page: page}
	if user := ctxkeys.User(r.Context()); user != nil {
		data.Form.Name = user.DisplayName()
		data.Form.Email = user.Email
	}
	ui.Render(w, r, pages.Contact(data))
}

func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	page, ok := h.page(w, r, contactSlug)
	if !ok {
		return
	}

	data := pages.ContactData{
		Page: page,
		Form: service.ContactMessage{
			Name:    r.FormValue("name"),
			Email:   r.FormValue("email"),
			Subject: r.FormValue("subject"),
			Message: r.FormValue("message"),
		},
	}

	err := h.emailService.SendContactMessage(r.Context(), data.Form)
	if err != nil {
		logFailure("failed to send contact message", err, "email", data.Form.Email)
		data.Errors = fieldErrors(err)
		status := http.StatusUnprocessableEntity
		if data.Errors == nil {
			status = http.StatusBadGateway
		}
		renderWithToast(w, r, status, toast.Error(userMessage(err, "Failed to send your message. Please try again.")), pages.Contact(data))
		return
	}

	slog.Info("contact message sent", "email", data.Form.Email)
	data.Sent = true
	renderWithToast(w, r, http.StatusOK, toast.Success("Your message has been sent."), pages.Contact(data))
}

func (h *PageHandler) page(w http.ResponseWriter, r *http.Request, slug string) (*service.Page, bool) {
	page, err := h.pageService.Page(slug)
	if err == nil {
		return page, true
	}

	if errors.Is(err, service.ErrPageNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return nil, false
	}
	slog.Error("failed to load page", "error", err, "slug", slug)
	ui.RenderStatus(w, r, http.StatusInternalServerError, pages.LoadFailed("Failed to load page", "Please try again later."))
	return nil, false
}
