package tasks

import (
	"fmt"

	"watchlater/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchDetails Phase = iota
	SearchMovies
	FetchPopular
	CacheResults
)

func (p Phase) String() string {
	switch p {
	case FetchDetails:
		return "fetch_details"
	case SearchMovies:
		return "search_movies"
	case FetchPopular:
		return "fetch_popular"
	case CacheResults:
		return "cache_results"
	default:
		return ""
	}
}

func searchUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchMovies,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching TMDB for %q...", query),
	}
}

func popularUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPopular,
		Step:    1,
		Total:   1,
		Message: "Fetching popular movies from TMDB...",
	}
}

func cacheUpdate(step, total int, movie *models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheResults,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Caching: %s", step, total, movie.Title),
		Data:    movie,
	}
}
