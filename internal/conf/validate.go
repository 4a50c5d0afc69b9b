package conf

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tphakala/applog/internal/errors"
	"github.com/tphakala/applog/internal/logger"
)

// maxQueueSize mirrors the max= constraint on LogSettings.QueueSize.
const maxQueueSize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Environment names are case-insensitive.
	_ = v.RegisterValidation("environment", func(fl validator.FieldLevel) bool {
		_, err := logger.ParseEnvironment(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateSettings checks settings against their struct constraints. The
// returned error lists every invalid field.
func ValidateSettings(settings *Settings) error {
	err := validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryValidation).
			Build()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.Newf("invalid settings: %s", strings.Join(msgs, "; ")).
		Component("conf").
		Category(errors.CategoryValidation).
		Context("fields", len(fieldErrs)).
		Build()
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Settings.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "environment":
		return fmt.Sprintf("%s %q is not one of development, production, staging, test", field, fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s, got %v", field, boundWord(fe.Tag()), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
