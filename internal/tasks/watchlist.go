package tasks

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"watchlater/internal/models"
	"watchlater/internal/shared"
)

// WatchlistStore defines the store operations the engine depends on.
// Implemented by repositories.WatchlistRepository.
type WatchlistStore interface {
	Add(userID int64, movieID string, addedAt time.Time) (*models.WatchlistEntry, error)
	Remove(userID int64, movieID string) (bool, error)
	SetWatched(userID int64, movieID string, watched bool, at time.Time) (bool, error)
	GetByUserAndMovie(userID int64, movieID string) (*models.WatchlistEntry, error)
	Exists(userID int64, movieID string) (bool, error)
	ListByUser(userID int64) ([]models.WatchlistEntry, error)
	Stats(userID int64) (*models.WatchlistStats, error)
}

// MovieFinder resolves TMDB ids against the local cache. Satisfied by
// repositories.MovieRepository. The engine deliberately cannot reach the
// provider; callers must have fetched a movie before listing it.
type MovieFinder interface {
	GetByTMDBID(tmdbID int) (*models.Movie, error)
	Get(id string) (*models.Movie, error)
}

// WatchlistItem pairs an entry with its cached movie for display layers.
type WatchlistItem struct {
	Entry models.WatchlistEntry `json:"entry"`
	Movie models.Movie          `json:"movie"`
}

// WatchlistEngine orchestrates watchlist mutations and queries. Callers
// address movies by TMDB id; the engine resolves them to local ids
// through the cache and never talks to the provider itself.
type WatchlistEngine struct {
	store  WatchlistStore
	movies MovieFinder
	pool   *Pool
	logger *log.Logger
}

// NewWatchlistEngine creates a WatchlistEngine. A nil logger falls back
// to the shared default.
func NewWatchlistEngine(store WatchlistStore, movies MovieFinder, pool *Pool, logger *log.Logger) *WatchlistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &WatchlistEngine{
		store:  store,
		movies: movies,
		pool:   pool,
		logger: logger,
	}
}

// SetLogger replaces the engine's logger.
func (e *WatchlistEngine) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// AddToWatchlist creates an unwatched entry for the user and movie.
// Fails with shared.ErrMovieNotFound when the movie has not been cached
// and with shared.ErrDuplicateEntry when the pair already exists.
func (e *WatchlistEngine) AddToWatchlist(userID int64, tmdbID int) *Future[*models.WatchlistEntry] {
	return Submit(e.pool, func() (*models.WatchlistEntry, error) {
		movie, err := e.movies.GetByTMDBID(tmdbID)
		if err != nil {
			return nil, err
		}

		return e.store.Add(userID, movie.ID, time.Now())
	})
}

// RemoveFromWatchlist deletes the entry if present. The boolean reports
// whether a row was removed; a missing movie or entry is not an error.
func (e *WatchlistEngine) RemoveFromWatchlist(userID int64, tmdbID int) *Future[bool] {
	return Submit(e.pool, func() (bool, error) {
		movie, err := e.movies.GetByTMDBID(tmdbID)
		if err != nil {
			return false, ignoreNotFound(err)
		}

		return e.store.Remove(userID, movie.ID)
	})
}

// MarkWatched sets watched and watched_at together. Idempotent; calling
// on an absent entry resolves to false with no error.
func (e *WatchlistEngine) MarkWatched(userID int64, tmdbID int) *Future[bool] {
	return e.setWatched(userID, tmdbID, true)
}

// MarkUnwatched clears watched and watched_at together. Idempotent;
// calling on an absent entry resolves to false with no error.
func (e *WatchlistEngine) MarkUnwatched(userID int64, tmdbID int) *Future[bool] {
	return e.setWatched(userID, tmdbID, false)
}

func (e *WatchlistEngine) setWatched(userID int64, tmdbID int, watched bool) *Future[bool] {
	return Submit(e.pool, func() (bool, error) {
		movie, err := e.movies.GetByTMDBID(tmdbID)
		if err != nil {
			return false, ignoreNotFound(err)
		}

		return e.store.SetWatched(userID, movie.ID, watched, time.Now())
	})
}

// IsInWatchlist reports whether the user's watchlist contains the movie.
func (e *WatchlistEngine) IsInWatchlist(userID int64, tmdbID int) *Future[bool] {
	return Submit(e.pool, func() (bool, error) {
		movie, err := e.movies.GetByTMDBID(tmdbID)
		if err != nil {
			return false, ignoreNotFound(err)
		}

		return e.store.Exists(userID, movie.ID)
	})
}

// IsWatched reports whether the user has marked the movie watched.
func (e *WatchlistEngine) IsWatched(userID int64, tmdbID int) *Future[bool] {
	return Submit(e.pool, func() (bool, error) {
		movie, err := e.movies.GetByTMDBID(tmdbID)
		if err != nil {
			return false, ignoreNotFound(err)
		}

		entry, err := e.store.GetByUserAndMovie(userID, movie.ID)
		if err != nil {
			if errors.Is(err, shared.ErrEntryNotFound) {
				return false, nil
			}
			return false, err
		}

		return entry.Watched, nil
	})
}

// ListWatchlist returns the user's entries, newest first; equal added-at
// timestamps keep insertion order.
func (e *WatchlistEngine) ListWatchlist(userID int64) *Future[[]models.WatchlistEntry] {
	return Submit(e.pool, func() ([]models.WatchlistEntry, error) {
		return e.store.ListByUser(userID)
	})
}

// ListWatchlistDetailed returns the user's entries joined with their
// cached movies, in listing order. A dangling movie reference is a store
// inconsistency and surfaces as an error.
func (e *WatchlistEngine) ListWatchlistDetailed(userID int64) *Future[[]WatchlistItem] {
	return Submit(e.pool, func() ([]WatchlistItem, error) {
		entries, err := e.store.ListByUser(userID)
		if err != nil {
			return nil, err
		}

		items := make([]WatchlistItem, 0, len(entries))
		for _, entry := range entries {
			movie, err := e.movies.Get(entry.MovieID)
			if err != nil {
				return nil, err
			}
			items = append(items, WatchlistItem{Entry: entry, Movie: *movie})
		}

		return items, nil
	})
}

// WatchlistStats summarizes the user's watchlist.
func (e *WatchlistEngine) WatchlistStats(userID int64) *Future[*models.WatchlistStats] {
	return Submit(e.pool, func() (*models.WatchlistStats, error) {
		return e.store.Stats(userID)
	})
}

// ignoreNotFound keeps the reference behavior for mutations addressing an
// uncached movie: the operation simply had no effect. Store I/O failures
// still propagate.
func ignoreNotFound(err error) error {
	if errors.Is(err, shared.ErrMovieNotFound) {
		return nil
	}
	return err
}
