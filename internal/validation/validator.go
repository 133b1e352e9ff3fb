package validation

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the process-wide validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// EchoValidator adapts the validator to echo's Validator interface so that
// handlers can call c.Validate(req) on bound request structs.
type EchoValidator struct{}

func (EchoValidator) Validate(i interface{}) error {
	return GetValidator().Struct(i)
}

// FormatValidationError reduces validator errors to a single human-readable
// message for the error envelope.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		e := validationErrors[0]
		return fmt.Sprintf("field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return err.Error()
}
