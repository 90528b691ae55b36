package utilities

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// maxBytes bounds the encoded length of a string; "max" counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// ValidationError wraps validation failures with one message per field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateStruct validates a struct using its `validate` tags.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "email":
			fields[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			fields[field] = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		case "max":
			fields[field] = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "maxbytes":
			fields[field] = fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
		case "notblank":
			fields[field] = fmt.Sprintf("%s must not be blank", field)
		default:
			fields[field] = fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
		}
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
