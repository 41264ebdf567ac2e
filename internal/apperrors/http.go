package apperrors

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error to the appropriate HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication), errors.Is(err, ErrTrigger):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotReady):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrTransferExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
