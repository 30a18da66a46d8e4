package interceptors

import "errors"

var (
	// ErrInvalidInterceptor is returned when a nil interceptor is registered or removed
	ErrInvalidInterceptor = errors.New("interceptors: interceptor must be callable")

	// ErrInvalidLimit is returned by SetMaxInterceptors for negative limits
	ErrInvalidLimit = errors.New("interceptors: limit must be a non-negative number")

	// ErrFiltered aborts a chain when a FilteringInterceptor rejects an event
	ErrFiltered = errors.New("interceptors: event filtered")
)
