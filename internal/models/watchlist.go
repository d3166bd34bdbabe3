package models

import (
	"fmt"
	"time"
)

// WatchlistEntry represents one user's relationship to one cached movie.
//
// The pair (UserID, MovieID) is unique per store. WatchedAt is non-nil
// exactly when Watched is true; the two always change together.
type WatchlistEntry struct {
	// ID is the store-assigned identifier.
	ID string `json:"id"`

	// Sequence is a monotonic per-table counter assigned at insert.
	// Listings break added-at ties on ascending sequence so ordering
	// stays deterministic.
	Sequence int `json:"-"`

	UserID int64 `json:"user_id"`

	// MovieID references Movie.ID, the locally owned identifier.
	MovieID string `json:"movie_id"`

	Watched   bool       `json:"watched"`
	AddedAt   time.Time  `json:"added_at"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}

// NewWatchlistEntry constructs an unwatched entry for the given user and
// cached movie at the given instant.
func NewWatchlistEntry(userID int64, movieID string, addedAt time.Time) WatchlistEntry {
	return WatchlistEntry{
		UserID:  userID,
		MovieID: movieID,
		AddedAt: addedAt,
	}
}

// Validate checks the entry's internal consistency.
func (e WatchlistEntry) Validate() error {
	if e.UserID <= 0 {
		return fmt.Errorf("watchlist entry requires a positive user id")
	}
	if e.MovieID == "" {
		return fmt.Errorf("watchlist entry requires a movie id")
	}
	if e.Watched && e.WatchedAt == nil {
		return fmt.Errorf("watched entry missing watched_at")
	}
	if !e.Watched && e.WatchedAt != nil {
		return fmt.Errorf("unwatched entry carries watched_at")
	}
	return nil
}

// WatchlistStats summarizes a user's watchlist.
type WatchlistStats struct {
	Total     int     `json:"total"`
	Watched   int     `json:"watched"`
	Unwatched int     `json:"unwatched"`
	Percent   float64 `json:"watched_percent"`
}
