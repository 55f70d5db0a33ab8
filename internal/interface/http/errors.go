package handlers

import (
	"errors"
	"net/http"

	"github.com/oksasatya/user-api/internal/domain/apperror"
)

// StatusFor maps a service error to an HTTP status. deniedStatus is used for
// callers outside the allowed country.
func StatusFor(err error, deniedStatus int) int {
	switch {
	case errors.Is(err, apperror.ErrInvalidValue):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrLocationNotAuthorized):
		if deniedStatus == 0 {
			return http.StatusForbidden
		}
		return deniedStatus
	default:
		// ErrLocationUnresolvable, ErrPublishFailure and storage failures
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, apperror.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, apperror.ErrLocationNotAuthorized):
		return "location_not_authorized"
	case errors.Is(err, apperror.ErrLocationUnresolvable):
		return "location_unresolvable"
	case errors.Is(err, apperror.ErrPublishFailure):
		return "publish_failure"
	default:
		return "internal"
	}
}

// clientMessage hides driver and broker detail behind the error kind for
// server-side failures; the full error is only logged.
func clientMessage(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	switch {
	case errors.Is(err, apperror.ErrLocationUnresolvable):
		return apperror.ErrLocationUnresolvable.Error()
	case errors.Is(err, apperror.ErrPublishFailure):
		return apperror.ErrPublishFailure.Error()
	default:
		return "internal server error"
	}
}
