package api

import "errors"

var (
	// ErrUnavailable means the server could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the server rejected the credentials or token,
	// including the case where an automatic refresh failed.
	ErrUnauthorized = errors.New("unauthorized")
)
