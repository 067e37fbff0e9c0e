package lmdma

import "errors"

// Errors returned by the driver. Transfer failures are not errors of any
// call; they reach the Callback as StatusError.
var (
	ErrNotPresent     = errors.New("lmdma: engine not present")
	ErrReserved       = errors.New("lmdma: reserved configuration encoding")
	ErrInvalidChannel = errors.New("lmdma: invalid channel")
	ErrNotSelected    = errors.New("lmdma: channel is not the head channel")
	ErrNotConfigured  = errors.New("lmdma: channel never configured")
	ErrZeroSize       = errors.New("lmdma: transfer size must not be zero")
	ErrInvalidTrigger = errors.New("lmdma: invalid trigger mode")
)
