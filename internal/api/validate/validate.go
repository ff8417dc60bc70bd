// Package validate holds the field-level validation rules shared by the
// services. All failures wrap model.ErrValidation so callers can map them
// uniformly.
package validate

import (
	"fmt"
	"regexp"

	"github.com/recovera/timeline-service/internal/model"
)

// sendTimeRx matches the HH:mm send-time format (24h clock).
var sendTimeRx = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

// NonEmpty rejects empty required fields.
func NonEmpty(field, v string) error {
	if v == "" {
		return invalid("%s is required", field)
	}
	return nil
}

// SendTime validates the optional HH:mm send time.
func SendTime(v string) error {
	if v == "" {
		return nil
	}
	if !sendTimeRx.MatchString(v) {
		return invalid("invalid time format (HH:mm): %q", v)
	}
	return nil
}

// Action checks the canonical action payload: name always required, subject
// and message required unless the type is negativar, send time well-formed
// when present.
func Action(a model.Action) error {
	if err := NonEmpty("name", a.Name); err != nil {
		return err
	}
	if !model.ValidActionType(a.Type) {
		return invalid("unknown action type %q", a.Type)
	}
	if a.Type.RequiresContent() {
		if err := NonEmpty("subject", a.Subject); err != nil {
			return err
		}
		if err := NonEmpty("message", a.Message); err != nil {
			return err
		}
	}
	return SendTime(a.SendTime)
}

// ConditionType checks membership in the closed outcome set.
func ConditionType(t model.ConditionType) error {
	switch t {
	case model.ConditionDelivered, model.ConditionNotDelivered,
		model.ConditionOpened, model.ConditionNotOpened,
		model.ConditionClicked, model.ConditionNotClicked:
		return nil
	}
	return invalid("unknown condition type %q", t)
}

// Customer checks the minimal customer payload.
func Customer(c model.Customer) error {
	return NonEmpty("full_name", c.FullName)
}

// Segment checks the minimal segment payload.
func Segment(s model.CustomerSegment) error {
	return NonEmpty("name", s.Name)
}
