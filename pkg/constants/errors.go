package constants

import "errors"

// Errors
var (
	ErrInvalidResponse = errors.New("invalid server response")
	ErrNoResult        = errors.New("response contains no result")
)

var (
	ErrIDInUse            = errors.New("id already in use")
	ErrTimeout            = errors.New("timeout")
	ErrNoBaseURL          = errors.New("base url not set")
	ErrNoMarshaler        = errors.New("marshaler is not set")
	ErrNoUnmarshaler      = errors.New("unmarshaler is not set")
	ErrClosed             = errors.New("connection closed")
	ErrMethodNotAvailable = errors.New("method not available on this connection")
)
