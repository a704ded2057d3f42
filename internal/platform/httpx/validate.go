package httpx

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ValidationDetails flattens validator errors into a field → rule map for
// the Details part of a failure envelope.
func ValidationDetails(err error) map[string]string {
	details := make(map[string]string)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}
