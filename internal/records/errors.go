package records

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// InputError rejects a submitted form before anything is written.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

var v = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report form keys, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
}

func validate(form any) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return &InputError{Field: fe.Field(), Reason: "is required"}
		}
		return &InputError{Field: fe.Field(), Reason: "failed " + fe.Tag() + " check"}
	}
	return fmt.Errorf("validating form: %w", err)
}
