package domain

import (
	"github.com/rodrigo-augusto/customer-api/pkg/validator"
)

// Validate checks the shape of a candidate customer. The email must have at
// least two domain segments ending in .com or .net and the name must be
// between 3 and 80 characters. A failure is a *validator.ValidationError
// whose Fields name every failing field.
func Validate(c *Customer) error {
	return validator.Validate(c)
}

// IsValid is the binary form of Validate.
func IsValid(c *Customer) bool {
	return Validate(c) == nil
}
