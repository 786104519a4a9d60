package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/plateshare/internal/validation"
)

func TestSendContactMessage(t *testing.T) {
	email := NewEmailService("", "noreply@example.com", "hello@example.com", "http://localhost:8090", "PlateShare", true)

	err := email.SendContactMessage(context.Background(), ContactMessage{Name: " ", Email: "nope"})
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "message")

	err = email.SendContactMessage(context.Background(), ContactMessage{
		Name:    "Dana",
		Email:   "dana@example.com",
		Message: "Can I volunteer for pickups?",
	})
	assert.NoError(t, err)
}
