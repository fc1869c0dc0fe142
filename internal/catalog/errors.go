package catalog

import "errors"

// ErrInvalid indicates a malformed catalog definition.
var ErrInvalid = errors.New("invalid catalog")
