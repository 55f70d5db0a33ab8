package apperror

import (
	"errors"
	"fmt"

	"github.com/oksasatya/user-api/internal/domain/entity"
)

var (
	ErrInvalidValue          = errors.New("invalid value")
	ErrUserNotFound          = errors.New("user not found")
	ErrLocationNotAuthorized = errors.New("location not authorized")
	ErrLocationUnresolvable  = errors.New("location could not be computed")
	ErrPublishFailure        = errors.New("could not send message bus message")
)

// InvalidValue wraps ErrInvalidValue with a human readable reason.
func InvalidValue(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, msg)
}

// PublishError reports an event that did not reach the bus. Cause is nil
// when the bus refused the message without raising an error.
type PublishError struct {
	Event entity.DomainEvent
	Cause error
}

func (e *PublishError) Error() string {
	msg := "failed sending message to message bus: message=" + e.Event.String()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *PublishError) Unwrap() error { return e.Cause }

func (e *PublishError) Is(target error) bool { return target == ErrPublishFailure }
