package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize fills defaults and truncates At to whole seconds in UTC, which
// is the precision stored.
func normalize(ev Event) Event {
	if ev.Repeat == "" {
		ev.Repeat = RepeatNone
	}
	ev.At = ev.At.UTC().Truncate(time.Second)
	return ev
}

// Validate checks an event before it is stored.
func (ev Event) Validate() error {
	err := validate.Struct(ev)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed %s", ErrInvalidEvent, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
}
