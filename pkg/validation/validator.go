package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so API errors match the wire format.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ErrNilValue is returned when a nil pointer is validated
var ErrNilValue = errors.New("value cannot be nil")

// Struct validates a struct using its `validate` tags and returns the first
// failure in a user-facing format.
func Struct(v any) error {
	if v == nil {
		return ErrNilValue
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ErrNilValue
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// Var validates a single value against a tag expression, naming it field in
// the returned error.
func Var(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return describe(field, verrs[0])
		}
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, e := range verrs {
		return describe(e.Field(), e)
	}
	return err
}

func describe(field string, e validator.FieldError) error {
	param := e.Param()
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", field)
	case "min":
		return fmt.Errorf("%s: must be at least %s", field, param)
	case "max":
		return fmt.Errorf("%s: must not exceed %s", field, param)
	case "gte":
		return fmt.Errorf("%s: must be >= %s", field, param)
	case "lte":
		return fmt.Errorf("%s: must be <= %s", field, param)
	case "unique":
		return fmt.Errorf("%s: must not contain duplicates", field)
	case "oneof":
		return fmt.Errorf("%s: must be one of [%s]", field, param)
	case "dive":
		return fmt.Errorf("%s: invalid element in array", field)
	default:
		return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
	}
}
