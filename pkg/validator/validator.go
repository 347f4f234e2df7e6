package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so error maps line up with request bodies.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("email_domain", validateEmailDomain); err != nil {
		panic(fmt.Sprintf("register email_domain validation: %v", err))
	}

	return v
}

// validateEmailDomain checks that the domain part of an address has at least
// two dot-separated segments and that its last segment is one of the
// space-separated TLDs given as the tag parameter. Comparison is
// case-insensitive. An empty parameter accepts any TLD.
//
//	Email string `validate:"required,email,email_domain=com net"`
func validateEmailDomain(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	at := strings.LastIndexByte(value, '@')
	if at < 0 || at == len(value)-1 {
		return false
	}

	segments := strings.Split(value[at+1:], ".")
	if len(segments) < 2 {
		return false
	}
	for _, s := range segments {
		if s == "" {
			return false
		}
	}

	allowed := strings.Fields(fl.Param())
	if len(allowed) == 0 {
		return true
	}

	tld := strings.ToLower(segments[len(segments)-1])
	for _, a := range allowed {
		if tld == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// Validate validates a struct using go-playground/validator tags.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return &ValidationError{Errors: validationErrors}
		}
		return err
	}
	return nil
}

// ValidationError wraps validator.ValidationErrors with a user-friendly message.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, err := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", err.Field(), msgForTag(err)))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, err := range e.Errors {
		fields[err.Field()] = msgForTag(err)
	}
	return fields
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "email_domain":
		if fe.Param() == "" {
			return "must have a domain with at least two segments"
		}
		return fmt.Sprintf("must have a domain with at least two segments ending in one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
