package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/abhissng/synapse/blame"
	"github.com/go-playground/validator/v10"
)

// Validator is a high-level wrapper for go-playground/validator.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a new Validator instance. Field names in messages
// follow the mapstructure tag so they match the configuration keys.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validator: v}
}

// Validate checks s and folds every violation into one configuration error.
func (v *Validator) Validate(s any) error {
	if fields := v.ValidateStruct(s); len(fields) > 0 {
		return blame.ConfigValidationError(fields)
	}
	return nil
}

// ValidateStruct validates a struct and returns a map of field paths to error messages.
func (v *Validator) ValidateStruct(s any) map[string]string {
	err := v.validator.Struct(s)
	if err == nil {
		return nil // No errors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"error": err.Error()}
	}

	errorMap := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		errorMap[fieldPath(fieldError)] = v.getErrorMessage(fieldError)
	}

	return errorMap
}

// ValidateField validates a single value against tag.
func (v *Validator) ValidateField(field any, tag string) string {
	err := v.validator.Var(field, tag)
	if err == nil {
		return "" // No error
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "unexpected validation error"
	}
	return v.getErrorMessage(validationErrors[0])
}

// RegisterValidation registers a custom validation function for a specific tag.
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validator.RegisterValidation(tag, fn)
}

// RegisterStructValidation registers a custom struct-level validation function.
func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	v.validator.RegisterStructValidation(fn, types...)
}

// fieldPath drops the root struct name: "Config.transport.url" -> "transport.url".
func fieldPath(fieldError validator.FieldError) string {
	ns := fieldError.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// getErrorMessage generates a user-friendly error message from a FieldError.
func (v *Validator) getErrorMessage(fieldError validator.FieldError) string {
	field := fieldError.Field()
	if field == "" {
		field = "value"
	}
	switch fieldError.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fieldError.Param())
	default:
		return fmt.Sprintf("invalid %s", field)
	}
}
