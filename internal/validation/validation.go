package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"
)

// Errors maps form field names to a user-facing message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e[f])
	}
	return strings.Join(parts, "; ")
}

// Check records err under field. Nil errors are ignored.
func (e Errors) Check(field string, err error) {
	if err != nil {
		if _, exists := e[field]; !exists {
			e[field] = err.Error()
		}
	}
}

// Err returns e when it holds any message, nil otherwise.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// First returns one message, for callers that can show only a toast.
func (e Errors) First() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return ""
	}
	sort.Strings(fields)
	return e[fields[0]]
}

// Required fails when value is blank.
func Required(label, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", label)
	}
	return nil
}

// ValidateEmail checks length and RFC 5322 syntax.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address format")
	}
	return nil
}

func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name is required")
	}
	if len(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}
	return nil
}

// ValidatePassword requires at least 6 characters with an uppercase and a
// lowercase letter.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	var upper, lower bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !upper {
		return errors.New("password must contain an uppercase letter")
	}
	if !lower {
		return errors.New("password must contain a lowercase letter")
	}
	return nil
}

// ValidateImageURL accepts an empty value or an absolute http(s) URL.
func ValidateImageURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an http or https URL")
	}
	return nil
}

// ValidatePhone accepts digits with optional leading +, spaces, dashes,
// dots and parentheses, and between 6 and 15 digits.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errors.New("contact number is required")
	}

	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return errors.New("contact number may only contain digits, spaces and + - ( )")
		}
	}
	if digits < 6 || digits > 15 {
		return errors.New("contact number must have between 6 and 15 digits")
	}
	return nil
}

// ValidateExpireDate accepts an empty value or a YYYY-MM-DD date that is not
// before today.
func ValidateExpireDate(value string, today time.Time) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return errors.New("expire date must be a date (YYYY-MM-DD)")
	}

	y, m, day := today.Date()
	if d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return errors.New("expire date cannot be in the past")
	}
	return nil
}
