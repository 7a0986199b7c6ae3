// Package validation runs struct-tag field rules and reports the first
// failure as a Validation error.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"afterschool/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Validationf("invalid input")
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, describe(fe))
	}
	sort.Strings(fields)
	return apperr.Validationf("invalid input: %s", strings.Join(fields, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "max", "len", "gte", "lte", "oneof":
		return fe.Field() + " must satisfy " + fe.Tag() + "=" + fe.Param()
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}
