// Package validation checks request payloads with go-playground/validator and
// reports failures as *apperrors.ValidationError keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"yamdb/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

// ReservedUsername can never be registered; it names the current user in URLs.
const ReservedUsername = "me"

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+\z`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+\z`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	mustRegister(v, "pastyear", func(fl validator.FieldLevel) bool {
		return int(fl.Field().Int()) <= time.Now().Year()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// ValidUsername reports whether name is an acceptable username.
func ValidUsername(name string) bool {
	return name != ReservedUsername && usernamePattern.MatchString(name)
}

// ValidSlug reports whether s is an acceptable category or genre slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Struct validates s and converts any failure into a *apperrors.ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &apperrors.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, e := range verrs {
		out.Fields[e.Field()] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return fmt.Sprintf("username may contain only letters, digits and @/./+/-/_ and must not be %q", ReservedUsername)
	case "slug":
		return "slug may contain only latin letters, digits, hyphens and underscores"
	case "pastyear":
		return "year cannot be in the future"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", e.Param())
		}
		return fmt.Sprintf("ensure this value is less than or equal to %s", e.Param())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", e.Param())
		}
		return fmt.Sprintf("ensure this value is greater than or equal to %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}
