package report

import (
	"errors"
	"net/http"
)

var (
	ErrValidation   = errors.New("report validation failed")
	ErrInvalidPhoto = errors.New("invalid photo")
	ErrRender       = errors.New("render report")
)

// MapHTTPStatus maps report errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidPhoto):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
