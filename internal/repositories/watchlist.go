package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchlater/internal/models"
	"watchlater/internal/shared"
)

const entryColumns = "id, sequence, user_id, movie_id, watched, added_at, watched_at"

// WatchlistRepository is the durable store of per-user watchlist entries.
//
// The UNIQUE (user_id, movie_id) constraint is the concurrency guard: a
// racing duplicate insert surfaces as shared.ErrDuplicateEntry instead of
// a second row.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the given database connection
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts a new unwatched entry for the user and cached movie.
// Returns shared.ErrDuplicateEntry when the pair already exists.
func (r *WatchlistRepository) Add(userID int64, movieID string, addedAt time.Time) (*models.WatchlistEntry, error) {
	entry := models.NewWatchlistEntry(userID, movieID, addedAt)
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "watchlist")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate sequence: %v", shared.ErrPersistence, err)
	}

	entry.ID = shared.GenerateID()
	entry.Sequence = sequence

	query := `
		INSERT INTO watchlist (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		entry.ID,
		entry.Sequence,
		entry.UserID,
		entry.MovieID,
		entry.Watched,
		entry.AddedAt,
		entry.WatchedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("%w: user %d, movie %s", shared.ErrDuplicateEntry, userID, movieID)
		}
		return nil, fmt.Errorf("%w: failed to insert watchlist entry: %v", shared.ErrPersistence, err)
	}

	return &entry, nil
}

// Remove deletes the entry for the pair if present. The boolean reports
// whether a row was removed; absence is not an error.
func (r *WatchlistRepository) Remove(userID int64, movieID string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM watchlist WHERE user_id = ? AND movie_id = ?", userID, movieID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to delete watchlist entry: %v", shared.ErrPersistence, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrPersistence, err)
	}

	return rows > 0, nil
}

// SetWatched sets or clears watched and watched_at together. Applying the
// same state twice is a no-op; the boolean reports whether a row matched.
func (r *WatchlistRepository) SetWatched(userID int64, movieID string, watched bool, at time.Time) (bool, error) {
	var watchedAt any
	if watched {
		watchedAt = at
	}

	query := "UPDATE watchlist SET watched = ?, watched_at = ? WHERE user_id = ? AND movie_id = ?"

	result, err := r.db.Exec(query, watched, watchedAt, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to update watched state: %v", shared.ErrPersistence, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrPersistence, err)
	}

	return rows > 0, nil
}

// GetByUserAndMovie retrieves the entry for the pair.
func (r *WatchlistRepository) GetByUserAndMovie(userID int64, movieID string) (*models.WatchlistEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM watchlist WHERE user_id = ? AND movie_id = ?`

	entry, err := scanEntry(r.db.QueryRow(query, userID, movieID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d, movie %s", shared.ErrEntryNotFound, userID, movieID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan watchlist entry: %v", shared.ErrPersistence, err)
	}

	return entry, nil
}

// Exists reports whether the pair has an entry.
func (r *WatchlistRepository) Exists(userID int64, movieID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM watchlist WHERE user_id = ? AND movie_id = ?)"

	if err := r.db.QueryRow(query, userID, movieID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: failed to check watchlist membership: %v", shared.ErrPersistence, err)
	}

	return exists, nil
}

// ListByUser returns all entries for the user, newest first. Equal
// added-at timestamps fall back to insertion order via the sequence.
func (r *WatchlistRepository) ListByUser(userID int64) ([]models.WatchlistEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM watchlist
		WHERE user_id = ?
		ORDER BY added_at DESC, sequence ASC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query watchlist: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	var entries []models.WatchlistEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan watchlist entry: %v", shared.ErrPersistence, err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrPersistence, err)
	}

	return entries, nil
}

// Stats summarizes the user's watchlist.
func (r *WatchlistRepository) Stats(userID int64) (*models.WatchlistStats, error) {
	var stats models.WatchlistStats
	query := "SELECT COUNT(*), COALESCE(SUM(watched), 0) FROM watchlist WHERE user_id = ?"

	if err := r.db.QueryRow(query, userID).Scan(&stats.Total, &stats.Watched); err != nil {
		return nil, fmt.Errorf("%w: failed to compute watchlist stats: %v", shared.ErrPersistence, err)
	}

	stats.Unwatched = stats.Total - stats.Watched
	if stats.Total > 0 {
		stats.Percent = float64(stats.Watched) / float64(stats.Total) * 100
	}

	return &stats, nil
}

// scanner abstracts over [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.WatchlistEntry, error) {
	var (
		entry     models.WatchlistEntry
		watchedAt sql.NullTime
	)

	err := s.Scan(
		&entry.ID,
		&entry.Sequence,
		&entry.UserID,
		&entry.MovieID,
		&entry.Watched,
		&entry.AddedAt,
		&watchedAt,
	)
	if err != nil {
		return nil, err
	}

	if watchedAt.Valid {
		t := watchedAt.Time
		entry.WatchedAt = &t
	}

	return &entry, nil
}
