package wizard

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/flatcheck/internal/capture"
	"github.com/JaimeStill/flatcheck/internal/expose"
	"github.com/JaimeStill/flatcheck/internal/imaging"
	"github.com/JaimeStill/flatcheck/internal/report"
	"github.com/JaimeStill/flatcheck/internal/table"
	"github.com/JaimeStill/flatcheck/internal/validation"
	"github.com/JaimeStill/flatcheck/pkg/storage"
)

var (
	ErrSessionNotFound = errors.New("inspection not found")
	ErrSessionLimit    = errors.New("too many open inspections")
	ErrInvalidStep     = errors.New("invalid step")
	ErrStepLocked      = errors.New("step is locked")
	ErrExposeMissing   = errors.New("no exposé loaded")
	ErrNoReport        = errors.New("no report pending")
	ErrInvalidRequest  = errors.New("invalid request")
)

// MapHTTPStatus maps wizard errors, and those of the systems it drives, to
// HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionLimit):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidStep), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrStepLocked), errors.Is(err, ErrNoReport):
		return http.StatusConflict
	case errors.Is(err, ErrExposeMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imaging.ErrInvalidDataURL), errors.Is(err, imaging.ErrNotImage):
		return http.StatusUnprocessableEntity
	case errors.Is(err, report.ErrValidation), errors.Is(err, report.ErrInvalidPhoto):
		return report.MapHTTPStatus(err)
	case errors.Is(err, validation.ErrMandatoryMissing), errors.Is(err, validation.ErrSignerRequired):
		return validation.MapHTTPStatus(err)
	case errors.Is(err, capture.ErrUnavailable), errors.Is(err, capture.ErrNoStream):
		return capture.MapHTTPStatus(err)
	case errors.Is(err, storage.ErrNotFound):
		return storage.MapHTTPStatus(err)
	}

	if status := table.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return expose.MapHTTPStatus(err)
}
