package validation

import (
	"errors"
	"net/mail"
	"reflect"
	"strings"

	"github.com/yantrahq/yantra/internal/service"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags registered and JSON field
// names in its errors.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("email", validateEmail)
	v.RegisterValidation("teamname", validateTeamName)
	v.RegisterValidation("teamcode", validateTeamCode)
	v.RegisterValidation("capacity", validateCapacity)
}

// validateEmail accepts a bare address, without display name
func validateEmail(fl validator.FieldLevel) bool {
	email := strings.TrimSpace(fl.Field().String())
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateTeamName(fl validator.FieldLevel) bool {
	_, err := service.NormalizeTeamName(fl.Field().String())
	return err == nil
}

func validateTeamCode(fl validator.FieldLevel) bool {
	return service.NormalizeCode(fl.Field().String()) != ""
}

func validateCapacity(fl validator.FieldLevel) bool {
	_, err := service.ParseCapacity(fl.Field().String())
	return err == nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

// FormatValidationError formats validation errors into a user-friendly response
func FormatValidationError(err error) []ValidationError {
	var errs []ValidationError
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Field: e.Field(),
				Tag:   e.Tag(),
				Value: e.Param(),
			})
		}
	}
	return errs
}

// ServiceError maps a failed validation to the service failure a client
// would get from the same input. The first failing field decides.
func ServiceError(err error) *service.Error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return service.ErrInvalidInput
	}
	switch fe := validationErrors[0]; {
	case fe.Tag() == "capacity" || fe.Field() == "capacity":
		return service.ErrInvalidCapacity
	case fe.Tag() == "email" || (fe.Field() == "email" || fe.Field() == "password") && fe.Tag() == "required":
		return service.ErrInvalidCredentialFormat
	default:
		return service.ErrInvalidInput
	}
}
