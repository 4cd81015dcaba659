package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"user-auth/auth"
)

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,})+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcrypt_max", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates in and maps the first failure to a ValidationError. Any missing
// required field yields requiredMsg so callers see one message per operation.
func check(in any, requiredMsg string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return internalError("validate input", err)
	}
	for _, fe := range fields {
		if fe.Tag() == "required" {
			return validationError(fe.Field(), requiredMsg)
		}
	}
	fe := fields[0]
	switch fe.Tag() {
	case "basic_email":
		return validationError(fe.Field(), "Please provide a valid email")
	case "min":
		return validationError(fe.Field(), "Password must be at least 6 characters")
	case "bcrypt_max":
		return validationError(fe.Field(), "Password must be at most 72 characters")
	case "oneof":
		return validationError(fe.Field(), "Gender must be one of: male, female, transgender, other")
	}
	return validationError(fe.Field(), "Invalid "+fe.Field())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
