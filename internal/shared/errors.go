package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not logged in")
	ErrSessionCorrupt   = fmt.Errorf("stored session is unreadable")

	// API errors. Transport failures, non-2xx responses and decode
	// failures all collapse into ErrTryAgainLater; the real cause is
	// logged, never surfaced.
	ErrTryAgainLater      = fmt.Errorf("something went wrong; please try again later")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
