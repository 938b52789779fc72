package legalbot

import "errors"

// ErrRegistryFailed indicates the ownership registry answered with an error
// status code.
var ErrRegistryFailed = errors.New("ownership registry call failed")

// ErrProcessorFailed indicates the payload-processing function answered
// with an error status code.
var ErrProcessorFailed = errors.New("study payload processing failed")

// ErrDurationCheckFailed indicates the duration-validity function answered
// with an error status code.
var ErrDurationCheckFailed = errors.New("duration validity check failed")
