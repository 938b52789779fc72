package ecommerce

import "errors"

// ErrStatusUpdateFailed indicates the status service answered with an error
// status code. The update may succeed on retry; the service treats repeated
// identical payloads as overwrites.
var ErrStatusUpdateFailed = errors.New("status update rejected by service")
