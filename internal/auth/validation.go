package auth

import (
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password the sign-up form accepts.
const MinPasswordLength = 6

// LoginForm is the sign-in input.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterForm is the sign-up input. Confirm must repeat Password.
type RegisterForm struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,password"`
	Confirm  string `validate:"eqfield=Password"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// At least one letter and one digit.
	err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var letter, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsLetter(r):
				letter = true
			}
		}
		return letter && digit
	})
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the form before any request is sent.
func (f LoginForm) Validate() error {
	return formError(validate.Struct(f))
}

// Validate checks the form before any request is sent.
func (f RegisterForm) Validate() error {
	return formError(validate.Struct(f))
}

// formError turns the first validation failure into a displayable *Error.
func formError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Message: genericMessage, cause: err}
	}

	fe := verrs[0]
	var msg string
	switch {
	case fe.Field() == "Confirm":
		msg = "Passwords do not match"
	case fe.Tag() == "required":
		msg = fe.Field() + " is required"
	case fe.Tag() == "email":
		msg = "Please enter a valid email address"
	case fe.Tag() == "min":
		msg = "Password must be at least 6 characters"
	case fe.Tag() == "password":
		msg = "Password must contain a letter and a number"
	default:
		msg = fe.Field() + " is invalid"
	}
	return &Error{Message: msg, cause: err}
}
