package device

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// forbiddenConfChars cannot appear in a quoted tellstick.conf value.
const forbiddenConfChars = "\"\\\n\r\t{}"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// tellstring rejects characters that would break the quoted value in a
	// device block, or the tab-separated listing.
	_ = v.RegisterValidation("tellstring", func(fl validator.FieldLevel) bool { //nolint:errcheck // Static tag
		return !strings.ContainsAny(fl.Field().String(), forbiddenConfChars)
	})
	return v
}

// Validate checks a registration candidate. It returns ErrInvalidCandidate
// naming the first offending field.
func (c Candidate) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidCandidate, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}
	return nil
}
