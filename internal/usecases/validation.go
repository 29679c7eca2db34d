package usecases

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"github.com/go-playground/validator/v10"
)

const passwordRules = "required,min=8,max=128,notnumeric"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", usernameValidator); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("notnumeric", notNumericValidator); err != nil {
		panic(err)
	}
	return v
}

var usernameValidator validator.Func = func(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

var notNumericValidator validator.Func = func(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.TrimLeft(s, "0123456789") != ""
}

// ValidateSignup checks a signup form without touching the store. Uniqueness
// is checked by the caller.
func ValidateSignup(input *entities.SignupInput) error {
	return toValidationError(validate.Struct(input))
}

// ValidatePassword applies the signup password rules to a new password.
func ValidatePassword(password, confirm string) error {
	var fields []domainerrors.FieldError
	if err := validate.Var(password, passwordRules); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			for _, ferr := range verr {
				fields = append(fields, domainerrors.FieldError{Field: "password", Message: msgForTag(ferr.Tag(), ferr.Param())})
			}
		}
	}
	if password != confirm {
		fields = append(fields, domainerrors.FieldError{Field: "passwordConfirm", Message: msgForTag("eqfield", "")})
	}
	if len(fields) > 0 {
		return &domainerrors.ValidationError{Fields: fields}
	}
	return nil
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return domainerrors.ErrInvalidInput
	}
	fields := make([]domainerrors.FieldError, len(verr))
	for i, ferr := range verr {
		fields[i] = domainerrors.FieldError{Field: ferr.Field(), Message: msgForTag(ferr.Tag(), ferr.Param())}
	}
	return &domainerrors.ValidationError{Fields: fields}
}

func msgForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", param)
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", param)
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "notnumeric":
		return "This password is entirely numeric."
	case "eqfield":
		return "The two password fields didn't match."
	}
	return tag
}
