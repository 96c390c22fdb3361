package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validateForm runs struct validation and returns one message per failing
// field.
func (s *Server) validateForm(form any) []string {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return msgs
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// fieldLabel turns a Go field name into words: "SerialNumber" becomes
// "serial number".
func fieldLabel(name string) string {
	var b strings.Builder
	var prev rune
	for _, r := range name {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToLower(b.String())
}

// formReader collects typed form values and the parse errors along the way.
type formReader struct {
	r      *http.Request
	errors []string
}

func newFormReader(r *http.Request) *formReader {
	return &formReader{r: r}
}

func (f *formReader) String(name string) string {
	return strings.TrimSpace(f.r.PostFormValue(name))
}

// Float parses a number field. An empty field reads as 0.
func (f *formReader) Float(name, label string) float64 {
	raw := f.String(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.errors = append(f.errors, label+" must be a number")
		return 0
	}
	return v
}

// ID parses an id field. An empty field reads as 0.
func (f *formReader) ID(name, label string) int64 {
	raw := f.String(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f.errors = append(f.errors, label+" is invalid")
		return 0
	}
	return v
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Name        string `validate:"required"`
	Email       string `validate:"required,email"`
	Password    string `validate:"required"`
	PhoneNumber string `validate:"required"`
}

type supplyForm struct {
	Name        string  `validate:"required"`
	SKU         string  `validate:"required"`
	Quantity    float64 `validate:"gte=0"`
	Price       float64 `validate:"gte=0"`
	Description string
}

type equipmentForm struct {
	Name         string `validate:"required"`
	SerialNumber string `validate:"required"`
	Status       string `validate:"required,oneof=AVAILABLE IN_USE MAINTENANCE"`
	Location     string
	Description  string
}

type supplyMovementForm struct {
	Supply   int64   `validate:"gt=0"`
	Quantity float64 `validate:"gt=0"`
	Notes    string
}

type equipmentCheckInForm struct {
	Equipment   int64   `validate:"gt=0"`
	HoursUsed   float64 `validate:"gte=0"`
	Description string
}

type equipmentCheckOutForm struct {
	Equipment       int64   `validate:"gt=0"`
	TotalHoursInput float64 `validate:"gte=0"`
	Note            string
}

type maintenanceStartForm struct {
	Equipment   int64 `validate:"gt=0"`
	Description string
}

type maintenanceEndForm struct {
	Equipment            int64  `validate:"gt=0"`
	MaintenancePerformed string `validate:"required"`
	Note                 string
}
