package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Source errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrSourceExhausted    = fmt.Errorf("lyric source has no more pages")
	ErrInvalidPayload     = fmt.Errorf("malformed lyric payload")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Catalog and cache errors
	ErrGenreNotFound = fmt.Errorf("genre not found")
	ErrLyricNotFound = fmt.Errorf("lyric not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
