// internal/common/validation/validator.go
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"getconnected/internal/common/errors"
	"getconnected/internal/models"

	"github.com/go-playground/validator/v10"
)

// PlatformLookup reports whether a platform key exists in the catalog.
type PlatformLookup func(key string) bool

// Validator validates request structs. Besides the built-in tags it
// understands "feature" (a known feature name) and "platform" (a catalog key).
type Validator struct {
	v *validator.Validate
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func New(isPlatform PlatformLookup) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("feature", func(fl validator.FieldLevel) bool {
		return models.IsKnownFeature(fl.Field().String())
	})
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return isPlatform != nil && isPlatform(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s and returns a VALIDATION_FAILED StandardError listing
// every failing field, or nil.
func (val *Validator) Struct(s interface{}) error {
	problems := val.Check(s)
	if len(problems) == 0 {
		return nil
	}
	parts := make([]string, 0, len(problems))
	for _, p := range problems {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Field, p.Message))
	}
	return errors.NewValidationError(strings.Join(parts, "; "))
}

// Check validates s and returns the individual field problems.
func (val *Validator) Check(s interface{}) []ValidationError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "", Message: err.Error(), Code: "INVALID"}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fieldPath(fe),
			Message: message(fe),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "feature":
		return fmt.Sprintf("unknown feature %q", fe.Value())
	case "platform":
		return fmt.Sprintf("unknown platform %q", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
