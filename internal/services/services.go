package services

import (
	"context"

	"watchlater/internal/models"
)

// Provider defines the operations the watchlater core consumes from a
// remote movie metadata source.
//
// Calls block until the provider responds; running them off the caller's
// goroutine is the coordinator's job, not the provider's.
type Provider interface {
	// FetchDetails retrieves full metadata for a single movie.
	// Returns shared.ErrMovieNotFound when the provider has no such id.
	FetchDetails(ctx context.Context, tmdbID int) (*models.Movie, error)

	// Search returns movies matching the query, possibly none.
	Search(ctx context.Context, query string) ([]models.Movie, error)

	// Popular returns the provider's current popular movies list.
	Popular(ctx context.Context) ([]models.Movie, error)

	// ImageBaseURL returns the base URL for poster and backdrop images.
	ImageBaseURL() string

	// Name returns the provider's display name (e.g. "TMDB")
	Name() string
}
