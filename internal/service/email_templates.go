package service

import (
	"fmt"

	"github.com/templui/plateshare/internal/model"
)

func welcomeEmailTemplate(name, foodsURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Share the food you have left over, or see what your neighbours are offering:
%s

Best,
The %s Team`, name, foodsURL, appName)

	return subject, body
}

func newRequestEmailTemplate(food *model.FoodListing, req *model.FoodRequest, foodURL, appName string) (string, string) {
	subject := fmt.Sprintf("New request for %s", food.Name)
	body := fmt.Sprintf(`Hi %s,

%s would like to pick up your %s.

Pickup location: %s
Contact: %s
Reason: %s

Accept or reject the request here:
%s

Best,
The %s Team`, food.Donor, req.UserName, food.Name, req.Location, req.Contact, req.Reason, foodURL, appName)

	return subject, body
}

func decisionEmailTemplate(food *model.FoodListing, req *model.FoodRequest, requestsURL, appName string) (string, string) {
	if req.Status == model.RequestStatusAccepted {
		subject := fmt.Sprintf("Your request for %s was accepted", food.Name)
		body := fmt.Sprintf(`Hi %s,

Good news! %s accepted your request for %s.

Pickup location: %s
Donor email: %s

See all your requests: %s

Best,
The %s Team`, req.UserName, food.Donor, food.Name, food.Location, food.DonorEmail, requestsURL, appName)
		return subject, body
	}

	subject := fmt.Sprintf("Your request for %s was not accepted", food.Name)
	body := fmt.Sprintf(`Hi %s,

Sorry, %s could not give %s to you this time. There is plenty more food shared every day.

See all your requests: %s

Best,
The %s Team`, req.UserName, food.Donor, food.Name, requestsURL, appName)
	return subject, body
}

func contactEmailTemplate(msg ContactMessage, appName string) (string, string) {
	subject := fmt.Sprintf("[%s contact] %s", appName, msg.Subject)
	body := fmt.Sprintf(`From: %s <%s>

%s`, msg.Name, msg.Email, msg.Message)

	return subject, body
}
