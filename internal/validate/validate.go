package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StructFields runs the `validate` tags of the given struct and flattens the
// result into one error per failing field.
func StructFields(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalidErr *validator.InvalidValidationError
	if errors.As(err, &invalidErr) {
		return err
	}

	var fieldErrs []error
	for _, fieldErr := range err.(validator.ValidationErrors) {
		fieldErrs = append(
			fieldErrs,
			fmt.Errorf(
				"field '%s' failed on the '%s' rule",
				fieldErr.Field(),
				fieldErr.Tag(),
			),
		)
	}

	return errors.Join(fieldErrs...)
}
