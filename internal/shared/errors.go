package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing TMDB credentials")

	// Provider errors. ErrProviderUnavailable covers network and
	// provider-side failures; callers may retry, the core never does.
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrProviderUnavailable = fmt.Errorf("metadata provider unavailable")
	ErrMovieNotFound       = fmt.Errorf("movie not found")

	// Store errors. ErrPersistence wraps every I/O failure during a
	// lookup or write; it must reach the caller and is never folded
	// into a not-found result.
	ErrPersistence    = fmt.Errorf("persistence failure")
	ErrEntryNotFound  = fmt.Errorf("watchlist entry not found")
	ErrDuplicateEntry = fmt.Errorf("movie already in watchlist")

	// Worker pool errors
	ErrPoolClosed = fmt.Errorf("worker pool shut down")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
