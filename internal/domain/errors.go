package domain

import "errors"

// ErrInvalidRequest indicates that a validation request contains invalid data.
var ErrInvalidRequest = errors.New("invalid validation request")

// ErrInvalidRut indicates a RUT that does not follow the
// "<number>-<check digit>" format.
var ErrInvalidRut = errors.New("invalid rut")
