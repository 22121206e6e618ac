package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the ISO-8601 calendar date format used for date_joined.
const DateLayout = "2006-01-02"

// Account is the in-memory representation of one row of the accounts table.
type Account struct {
	ID          int64
	Name        string
	Email       string
	Address     string
	PhoneNumber *string
	DateJoined  time.Time
}

// accountPayload is the accepted request body for create and update.
// Pointer fields distinguish an absent key from an empty string.
type accountPayload struct {
	Name        *string `json:"name" validate:"required"`
	Email       *string `json:"email" validate:"required"`
	Address     *string `json:"address" validate:"required"`
	PhoneNumber *string `json:"phone_number"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Deserialize replaces the mutable fields of a from a JSON request body.
// ID and DateJoined are never touched. A *ValidationError is returned when
// the body is not a JSON object, a required key is missing or null, or a
// value has the wrong type.
func (a *Account) Deserialize(body []byte) error {
	var payload accountPayload
	verr := &ValidationError{}

	if err := json.Unmarshal(body, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			verr.add("", "Request body must be a JSON object", "json")
			return verr
		}
		verr.add(typeErr.Field, "Expected a "+describeKind(typeErr.Type), "type")
	}

	if err := validate.Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			if verr.has(fe.Field()) {
				continue
			}
			verr.add(fe.Field(), messageFor(fe), fe.Tag())
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}

	a.Name = *payload.Name
	a.Email = *payload.Email
	a.Address = *payload.Address
	a.PhoneNumber = payload.PhoneNumber
	return nil
}

// Serialize returns every attribute keyed by its wire name.
func (a *Account) Serialize() map[string]any {
	var phone any
	if a.PhoneNumber != nil {
		phone = *a.PhoneNumber
	}
	return map[string]any{
		"id":           a.ID,
		"name":         a.Name,
		"email":        a.Email,
		"address":      a.Address,
		"phone_number": phone,
		"date_joined":  a.DateJoined.Format(DateLayout),
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	default:
		return "Invalid value"
	}
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.Pointer:
		return describeKind(t.Elem())
	case reflect.String:
		return "string"
	default:
		return t.Kind().String()
	}
}
