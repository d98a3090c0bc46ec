package validator

import (
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validatePhone accepts an empty value; combine with required when the phone is mandatory.
func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	return phone == "" || phonePattern.MatchString(phone)
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return fe.Field() + " cannot be blank"
	case "phone":
		return fe.Field() + " must be a valid phone number"
	default:
		return fe.Error()
	}
}
