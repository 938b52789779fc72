package legalentity

import "errors"

// ErrLookupFailed indicates the legal-entity lookup answered with an error
// status code. Transient by default; the activity retry policy decides.
var ErrLookupFailed = errors.New("legal entity lookup failed")

// ErrFilterFailed indicates the regulator filter API answered with an error
// status code.
var ErrFilterFailed = errors.New("regulator filter call failed")
