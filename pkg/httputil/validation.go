package httputil

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/petspot/petspot-backend/pkg/errors"
)

var validate = NewValidator()

// NewValidator returns a validator that reports fields by their JSON names
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate validates a struct and reports every failing field
func Validate(v interface{}) error {
	return ValidateWith(validate, v, false)
}

// ValidateWith runs v through the given validator. With failFast only the first
// failing field (in declaration order) is reported.
func ValidateWith(validate *validator.Validate, v interface{}, failFast bool) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest(err.Error())
	}

	if failFast {
		first := validationErrors[0]
		return errors.FieldInvalid(first.Field(), FormatValidationError(first))
	}

	details := make(map[string]string)
	for _, e := range validationErrors {
		details[e.Field()] = FormatValidationError(e)
	}
	return errors.Validation(details)
}

// FormatValidationError renders a user-facing message for a failed tag
func FormatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "required_without":
		return "either this field or " + lowerFirst(e.Param()) + " is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "digits":
		return "must contain digits only"
	case "phone":
		return "must contain at least one digit"
	case "lastseendate":
		return "must be a YYYY-MM-DD date that is not in the future"
	default:
		return "invalid value"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// RegisterCustomValidation registers a custom validation function
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}
