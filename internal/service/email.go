package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/validation"
)

type EmailService struct {
	client       *resend.Client
	fromEmail    string
	supportEmail string
	isDev        bool
	appURL       string
	appName      string
}

func NewEmailService(apiKey, fromEmail, supportEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:       client,
		fromEmail:    fromEmail,
		supportEmail: supportEmail,
		isDev:        isDev,
		appURL:       appURL,
		appName:      appName,
	}
}

// send delivers a plain text email. Development only logs it.
func (s *EmailService) send(ctx context.Context, kind, to, replyTo, subject, body string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	if replyTo != "" {
		params.ReplyTo = replyTo
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	slog.Info("email sent", "type", kind, "to", to)
	return nil
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	subject, body := welcomeEmailTemplate(name, s.appURL+"/foods", s.appName)
	return s.send(ctx, "welcome", email, "", subject, body)
}

// SendNewRequestEmail tells the donor someone asked for their food.
func (s *EmailService) SendNewRequestEmail(ctx context.Context, food *model.FoodListing, req *model.FoodRequest) error {
	if food.DonorEmail == "" {
		return nil
	}
	foodURL := fmt.Sprintf("%s/food/%s", s.appURL, food.ID)
	subject, body := newRequestEmailTemplate(food, req, foodURL, s.appName)
	return s.send(ctx, "new_request", food.DonorEmail, req.UserEmail, subject, body)
}

// SendDecisionEmail tells the requester whether their request was accepted or rejected.
func (s *EmailService) SendDecisionEmail(ctx context.Context, food *model.FoodListing, req *model.FoodRequest) error {
	if req.UserEmail == "" {
		return nil
	}
	subject, body := decisionEmailTemplate(food, req, s.appURL+"/requests", s.appName)
	return s.send(ctx, "request_"+req.Status, req.UserEmail, food.DonorEmail, subject, body)
}

type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (m *ContactMessage) validate() validation.Errors {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)

	errs := validation.Errors{}
	errs.Check("name", validation.ValidateName(m.Name))
	errs.Check("email", validation.ValidateEmail(m.Email))
	errs.Check("message", validation.Required("Message", m.Message))
	return errs
}

// SendContactMessage forwards the contact form to the support inbox.
// Validation problems are returned as validation.Errors.
func (s *EmailService) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := msg.validate().Err(); err != nil {
		return err
	}
	if msg.Subject == "" {
		msg.Subject = "Message from the contact form"
	}
	subject, body := contactEmailTemplate(msg, s.appName)
	return s.send(ctx, "contact", s.supportEmail, msg.Email, subject, body)
}
