package domain

import "errors"

// ErrUnavailable marks a persistence timeout or outage. Callers may retry.
var ErrUnavailable = errors.New("storage unavailable")
