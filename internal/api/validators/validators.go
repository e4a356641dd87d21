// Package validators builds the request validator shared by handlers.
package validators

import "github.com/go-playground/validator/v10"

func New() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
