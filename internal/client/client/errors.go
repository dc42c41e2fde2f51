package client

import "errors"

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrMalformedResponse = errors.New("malformed response")
)
