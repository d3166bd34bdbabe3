package tasks

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"watchlater/internal/models"
	"watchlater/internal/services"
	"watchlater/internal/shared"
)

// DefaultCacheTTL is the freshness window for cached movie details.
const DefaultCacheTTL = 24 * time.Hour

// MovieCache defines the cache store operations the engine depends on.
// Implemented by repositories.MovieRepository.
type MovieCache interface {
	Upsert(movie models.Movie) (*models.Movie, error)
	GetByTMDBID(tmdbID int) (*models.Movie, error)
	Get(id string) (*models.Movie, error)
	IsFresh(tmdbID int, maxAge time.Duration) (bool, error)
}

// MovieEngine orchestrates cache-aside reads against the metadata
// provider and the movie cache.
type MovieEngine struct {
	provider services.Provider
	cache    MovieCache
	pool     *Pool
	ttl      time.Duration
	logger   *log.Logger

	// flight deduplicates concurrent detail fetches for the same TMDB
	// id into one provider call. Racing fetches would still be correct
	// (upsert is idempotent and the cache timestamp only moves
	// forward), this just avoids the duplicate network round-trips.
	flight singleflight.Group
}

// NewMovieEngine creates a MovieEngine. A non-positive ttl falls back to
// [DefaultCacheTTL]; a nil logger falls back to the shared default.
func NewMovieEngine(provider services.Provider, cache MovieCache, pool *Pool, ttl time.Duration, logger *log.Logger) *MovieEngine {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &MovieEngine{
		provider: provider,
		cache:    cache,
		pool:     pool,
		ttl:      ttl,
		logger:   logger,
	}
}

// GetMovieDetails resolves a movie by TMDB id. A cached record inside the
// freshness window is returned without touching the network; otherwise
// the provider is consulted and the cache refreshed. Provider failures
// surface as-is; there is no fallback to a stale cached record.
func (e *MovieEngine) GetMovieDetails(ctx context.Context, tmdbID int) *Future[*models.Movie] {
	return Submit(e.pool, func() (*models.Movie, error) {
		return e.getMovieDetails(ctx, tmdbID)
	})
}

func (e *MovieEngine) getMovieDetails(ctx context.Context, tmdbID int) (*models.Movie, error) {
	fresh, err := e.cache.IsFresh(tmdbID, e.ttl)
	if err != nil {
		return nil, err
	}

	if fresh {
		return e.cache.GetByTMDBID(tmdbID)
	}

	v, err, _ := e.flight.Do(strconv.Itoa(tmdbID), func() (any, error) {
		movie, err := e.provider.FetchDetails(ctx, tmdbID)
		if err != nil {
			return nil, err
		}
		return e.cache.Upsert(*movie)
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.Movie), nil
}

// SearchMovies queries the provider and caches every result as a
// best-effort side effect. List endpoints never short-circuit through
// the cache.
func (e *MovieEngine) SearchMovies(ctx context.Context, progress chan<- ProgressUpdate, query string) *Future[[]models.Movie] {
	return Submit(e.pool, func() ([]models.Movie, error) {
		sendProgress(progress, searchUpdate(query))

		movies, err := e.provider.Search(ctx, query)
		if err != nil {
			return nil, err
		}

		return e.cacheResults(progress, movies), nil
	})
}

// PopularMovies fetches the provider's popular list and caches every
// result as a best-effort side effect.
func (e *MovieEngine) PopularMovies(ctx context.Context, progress chan<- ProgressUpdate) *Future[[]models.Movie] {
	return Submit(e.pool, func() ([]models.Movie, error) {
		sendProgress(progress, popularUpdate())

		movies, err := e.provider.Popular(ctx)
		if err != nil {
			return nil, err
		}

		return e.cacheResults(progress, movies), nil
	})
}

// SetLogger replaces the engine's logger.
func (e *MovieEngine) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// ImageBaseURL exposes the provider's image base for presentation layers.
func (e *MovieEngine) ImageBaseURL() string {
	return e.provider.ImageBaseURL()
}

// cacheResults upserts each record, logging and skipping failures so one
// bad record never blocks the rest. Stored records (carrying their local
// id) replace the raw provider projections where the upsert succeeded.
func (e *MovieEngine) cacheResults(progress chan<- ProgressUpdate, movies []models.Movie) []models.Movie {
	total := len(movies)
	for i := range movies {
		sendProgress(progress, cacheUpdate(i+1, total, &movies[i]))

		stored, err := e.cache.Upsert(movies[i])
		if err != nil {
			e.logger.Warn("failed to cache movie", "tmdb_id", movies[i].TMDBID, "err", err)
			continue
		}
		movies[i] = *stored
	}

	return movies
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
