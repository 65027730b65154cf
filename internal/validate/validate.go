// Package validate checks request payloads with struct tags and reports
// every failing field as an apperr.ValidationError.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/schemeportal/internal/apperr"
)

var (
	instance *validator.Validate
	once     sync.Once
	initErr  error
)

func get() (*validator.Validate, error) {
	once.Do(func() {
		instance, initErr = build()
	})

	return instance, initErr
}

func build() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	// decimal.Decimal is a struct, so amount rules read the field directly.
	rules := map[string]func(decimal.Decimal) bool{
		"positive_decimal":    decimal.Decimal.IsPositive,
		"nonnegative_decimal": func(d decimal.Decimal) bool { return !d.IsNegative() },
	}

	for tag, ok := range rules {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			d, isDecimal := fl.Field().Interface().(decimal.Decimal)
			return isDecimal && ok(d)
		}); err != nil {
			return nil, fmt.Errorf("registering %s: %w", tag, err)
		}
	}

	return v, nil
}

// Struct validates payload and returns nil or an *apperr.ValidationError.
func Struct(payload any) error {
	v, err := get()
	if err != nil {
		return fmt.Errorf("initializing validator: %w", err)
	}

	err = v.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &apperr.ValidationError{Fields: []apperr.FieldError{{Field: "payload", Message: err.Error()}}}
	}

	out := &apperr.ValidationError{Fields: make([]apperr.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, apperr.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}

	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}

	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "positive_decimal":
		return "must be a positive amount"
	case "nonnegative_decimal":
		return "must not be negative"
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", fe.Param())
	case "dive":
		return "has an invalid element"
	}

	return fmt.Sprintf("failed %q", fe.Tag())
}
