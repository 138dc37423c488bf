package utils

import (
	"fmt"
	"sort"
	"strings"

	"woodeoo-auth/internal/validation"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// contact accepts an email address or a phone number
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return validation.ClassifyContact(fl.Field().String()).Valid()
	})
	// strongpassword applies the five-rule password policy
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return validation.EvaluatePassword(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validation.IsPhone(fl.Field().String())
	})

	return v
}

func ValidateStruct(data interface{}) map[string]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validationErrors {
			errors[err.Field()] = getErrorMessage(err)
		}
	}

	return errors
}

// converts validator errors to human-readable messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "required_if":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "contact":
		return "Must be a valid email address or phone number"
	case "phone":
		return "Invalid phone number"
	case "strongpassword":
		return "Password must be at least 8 characters with an uppercase letter, a lowercase letter, a digit and one of !@#$%^&*"
	case "numeric":
		return "Must contain digits only"
	case "min":
		return fmt.Sprintf("Minimum length is %s", err.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", err.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", err.Param())
	case "oneof":
		options := strings.ReplaceAll(err.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	case "uuid":
		return "Must be a valid UUID"
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}

// formats validation errors map into single string, sorted by field
func FormatValidationErrors(errors map[string]string) string {
	fields := make([]string, 0, len(errors))
	for field := range errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, errors[field]))
	}
	return strings.Join(msgs, "; ")
}
