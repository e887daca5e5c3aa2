// Package validation checks user supplied values with go-playground/validator and
// the shop specific tags username, password, phone and nodelim.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/mkrupp/homecase-shop/internal/domain"
)

const minPasswordLength = 5

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{4,}$`)
	phonePattern    = regexp.MustCompile(`^0[34][0-9]{8}$`)
)

// Validator validates structs tagged with `validate`.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// registration only fails on empty tags or nil functions
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("nodelim", func(fl validator.FieldLevel) bool {
		return !domain.ContainsDelimiter(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s. Failures are reported as domain.ErrInvalidInput with one
// message per offending field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}

	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// Var validates a single value against tag, naming it field in the error.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Errorf("validate %s: %w", field, err)
	}

	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Replace(fieldError(ve[0]), "value", field, 1))
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if field == "" {
		field = "value"
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "username":
		return field + " must start with a letter or underscore and have at least 5 letters, digits or underscores"
	case "password":
		return fmt.Sprintf("%s must have at least %d characters with a letter and a digit", field, minPasswordLength)
	case "phone":
		return field + " must have 10 digits starting with 04 or 03"
	case "nodelim":
		return field + " must not contain commas or line breaks"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// ValidUsername reports whether name is an acceptable user name.
func ValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// ValidPassword reports whether password has the minimum length, a letter and a digit,
// and no field delimiter.
func ValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength || domain.ContainsDelimiter(password) {
		return false
	}

	var letter, digit bool

	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	return letter && digit
}

// ValidPhone reports whether phone is a 10 digit number starting with 04 or 03.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}
