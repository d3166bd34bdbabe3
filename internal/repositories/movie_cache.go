package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchlater/internal/models"
	"watchlater/internal/shared"
)

const movieColumns = `id, tmdb_id, title, overview, poster_path, backdrop_path,
		release_date, vote_average, vote_count, genre_ids, runtime, budget,
		revenue, original_language, original_title, popularity, adult, video,
		cache_timestamp`

// MovieRepository is the durable movie cache, keyed by TMDB id.
//
// Upserts are idempotent in identity: the local id is assigned on first
// insert and survives every subsequent refresh. The single-statement
// ON CONFLICT upsert leans on SQLite's own atomicity, so concurrent
// refreshes of the same movie cannot lose the original id.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Upsert inserts the movie if its TMDB id is absent, otherwise overwrites
// every descriptive field and refreshes the cache timestamp while keeping
// the existing local id. Returns the stored record.
func (r *MovieRepository) Upsert(movie models.Movie) (*models.Movie, error) {
	if err := movie.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	if movie.CachedAt.After(now) {
		now = movie.CachedAt
	}

	query := `
		INSERT INTO movie_cache (` + movieColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tmdb_id) DO UPDATE SET
			title = excluded.title,
			overview = excluded.overview,
			poster_path = excluded.poster_path,
			backdrop_path = excluded.backdrop_path,
			release_date = excluded.release_date,
			vote_average = excluded.vote_average,
			vote_count = excluded.vote_count,
			genre_ids = excluded.genre_ids,
			runtime = excluded.runtime,
			budget = excluded.budget,
			revenue = excluded.revenue,
			original_language = excluded.original_language,
			original_title = excluded.original_title,
			popularity = excluded.popularity,
			adult = excluded.adult,
			video = excluded.video,
			cache_timestamp = MAX(movie_cache.cache_timestamp, excluded.cache_timestamp)
	`

	_, err := r.db.Exec(query,
		shared.GenerateID(),
		movie.TMDBID,
		movie.Title,
		movie.Overview,
		movie.PosterPath,
		movie.BackdropPath,
		movie.ReleaseDate,
		movie.VoteAverage,
		movie.VoteCount,
		joinInts(movie.GenreIDs),
		movie.Runtime,
		movie.Budget,
		movie.Revenue,
		movie.OriginalLanguage,
		movie.OriginalTitle,
		movie.Popularity,
		movie.Adult,
		movie.Video,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to upsert movie %d: %v", shared.ErrPersistence, movie.TMDBID, err)
	}

	return r.GetByTMDBID(movie.TMDBID)
}

// GetByTMDBID retrieves a cached movie by its provider id.
func (r *MovieRepository) GetByTMDBID(tmdbID int) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movie_cache WHERE tmdb_id = ?`
	return r.scanOne(r.db.QueryRow(query, tmdbID), fmt.Sprintf("tmdb id %d", tmdbID))
}

// Get retrieves a cached movie by its local id.
func (r *MovieRepository) Get(id string) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movie_cache WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id), fmt.Sprintf("id %s", id))
}

// IsFresh reports whether a record exists for the TMDB id and its age is
// below maxAge. An I/O failure is reported as such, never as staleness.
func (r *MovieRepository) IsFresh(tmdbID int, maxAge time.Duration) (bool, error) {
	var cachedAt time.Time
	err := r.db.QueryRow("SELECT cache_timestamp FROM movie_cache WHERE tmdb_id = ?", tmdbID).Scan(&cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to check cache freshness for %d: %v", shared.ErrPersistence, tmdbID, err)
	}

	return time.Since(cachedAt) < maxAge, nil
}

// scanOne scans a single [sql.Row] into a [models.Movie]
func (r *MovieRepository) scanOne(row *sql.Row, desc string) (*models.Movie, error) {
	var (
		movie    models.Movie
		genreIDs string
	)

	err := row.Scan(
		&movie.ID,
		&movie.TMDBID,
		&movie.Title,
		&movie.Overview,
		&movie.PosterPath,
		&movie.BackdropPath,
		&movie.ReleaseDate,
		&movie.VoteAverage,
		&movie.VoteCount,
		&genreIDs,
		&movie.Runtime,
		&movie.Budget,
		&movie.Revenue,
		&movie.OriginalLanguage,
		&movie.OriginalTitle,
		&movie.Popularity,
		&movie.Adult,
		&movie.Video,
		&movie.CachedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, desc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan movie (%s): %v", shared.ErrPersistence, desc, err)
	}

	movie.GenreIDs = splitInts(genreIDs)
	return &movie, nil
}
