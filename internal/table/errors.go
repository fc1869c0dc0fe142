package table

import (
	"errors"
	"net/http"
)

var (
	ErrRowNotFound          = errors.New("row not found")
	ErrConfirmationRequired = errors.New("removing a row requires confirmation")
	ErrMandatoryRow         = errors.New("mandatory rows cannot be removed")
	ErrNotApplicable        = errors.New("operation does not apply to this row type")
	ErrInvalidOption        = errors.New("value is not an option of this field")
)

// MapHTTPStatus maps table errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrMandatoryRow):
		return http.StatusConflict
	case errors.Is(err, ErrNotApplicable), errors.Is(err, ErrInvalidOption):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
