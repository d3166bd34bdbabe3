package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"watchlater/internal/models"
	"watchlater/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testMovie(tmdbID int, title string) models.Movie {
	return models.Movie{
		TMDBID:      tmdbID,
		Title:       title,
		Overview:    "A thief who steals corporate secrets",
		PosterPath:  "/poster.jpg",
		ReleaseDate: "2010-07-16",
		VoteAverage: 8.4,
		VoteCount:   34000,
		GenreIDs:    []int{28, 878},
		Runtime:     148,
	}
}

// mustCache inserts a movie and returns the stored record
func mustCache(t *testing.T, repo *MovieRepository, tmdbID int, title string) *models.Movie {
	t.Helper()

	stored, err := repo.Upsert(testMovie(tmdbID, title))
	if err != nil {
		t.Fatalf("failed to upsert movie: %v", err)
	}
	return stored
}

func TestMovieRepository(t *testing.T) {
	t.Run("Upsert", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		stored := mustCache(t, repo, 27205, "Inception")

		if stored.ID == "" {
			t.Error("local id should be set after upsert")
		}
		if stored.TMDBID != 27205 {
			t.Errorf("expected tmdb id 27205, got %d", stored.TMDBID)
		}
		if stored.CachedAt.IsZero() {
			t.Error("cache timestamp should be set after upsert")
		}
		if len(stored.GenreIDs) != 2 {
			t.Errorf("expected 2 genre ids, got %d", len(stored.GenreIDs))
		}
	})

	t.Run("UpsertKeepsLocalID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		first := mustCache(t, repo, 27205, "Inception")

		refreshed := testMovie(27205, "Inception")
		refreshed.VoteCount = 35000
		second, err := repo.Upsert(refreshed)
		if err != nil {
			t.Fatalf("failed to upsert movie again: %v", err)
		}

		if second.ID != first.ID {
			t.Errorf("upsert changed local id: %s -> %s", first.ID, second.ID)
		}
		if second.VoteCount != 35000 {
			t.Errorf("expected refreshed vote count 35000, got %d", second.VoteCount)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM movie_cache WHERE tmdb_id = 27205").Scan(&count); err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Errorf("expected a single row, got %d", count)
		}
	})

	t.Run("UpsertTimestampNeverDecreases", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		mustCache(t, repo, 27205, "Inception")

		future := time.Now().Add(time.Hour).UTC()
		if _, err := db.Exec("UPDATE movie_cache SET cache_timestamp = ? WHERE tmdb_id = 27205", future); err != nil {
			t.Fatalf("failed to bump timestamp: %v", err)
		}

		stored, err := repo.Upsert(testMovie(27205, "Inception"))
		if err != nil {
			t.Fatalf("failed to upsert movie: %v", err)
		}

		if stored.CachedAt.Before(future) {
			t.Errorf("cache timestamp moved backwards: %v < %v", stored.CachedAt, future)
		}
	})

	t.Run("UpsertRejectsInvalid", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		if _, err := repo.Upsert(models.Movie{TMDBID: 0, Title: "No ID"}); err == nil {
			t.Error("expected error for movie without tmdb id")
		}
		if _, err := repo.Upsert(models.Movie{TMDBID: 42}); err == nil {
			t.Error("expected error for movie without title")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		stored := mustCache(t, repo, 27205, "Inception")

		byLocal, err := repo.Get(stored.ID)
		if err != nil {
			t.Fatalf("failed to get movie by local id: %v", err)
		}
		if byLocal.Title != "Inception" {
			t.Errorf("expected title Inception, got %s", byLocal.Title)
		}

		byTMDB, err := repo.GetByTMDBID(27205)
		if err != nil {
			t.Fatalf("failed to get movie by tmdb id: %v", err)
		}
		if byTMDB.ID != stored.ID {
			t.Errorf("expected local id %s, got %s", stored.ID, byTMDB.ID)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)

		if _, err := repo.GetByTMDBID(999); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("IsFresh", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		mustCache(t, repo, 27205, "Inception")

		fresh, err := repo.IsFresh(27205, 24*time.Hour)
		if err != nil {
			t.Fatalf("failed to check freshness: %v", err)
		}
		if !fresh {
			t.Error("newly cached movie should be fresh")
		}

		fresh, err = repo.IsFresh(999, 24*time.Hour)
		if err != nil {
			t.Fatalf("freshness check for unknown id should not fail: %v", err)
		}
		if fresh {
			t.Error("unknown id should not be fresh")
		}
	})

	t.Run("IsFreshExpired", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewMovieRepository(db)
		mustCache(t, repo, 27205, "Inception")

		stale := time.Now().Add(-25 * time.Hour).UTC()
		if _, err := db.Exec("UPDATE movie_cache SET cache_timestamp = ? WHERE tmdb_id = 27205", stale); err != nil {
			t.Fatalf("failed to age record: %v", err)
		}

		fresh, err := repo.IsFresh(27205, 24*time.Hour)
		if err != nil {
			t.Fatalf("failed to check freshness: %v", err)
		}
		if fresh {
			t.Error("record older than the window should not be fresh")
		}
	})
}

func TestWatchlistRepository(t *testing.T) {
	t.Run("Add", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)
		movie := mustCache(t, movies, 27205, "Inception")

		entry, err := repo.Add(1, movie.ID, time.Now())
		if err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		if entry.ID == "" {
			t.Error("entry id should be set after add")
		}
		if entry.Watched {
			t.Error("new entry should start unwatched")
		}
		if entry.WatchedAt != nil {
			t.Error("new entry should not carry watched_at")
		}
	})

	t.Run("AddDuplicate", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)
		movie := mustCache(t, movies, 27205, "Inception")

		if _, err := repo.Add(1, movie.ID, time.Now()); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		_, err := repo.Add(1, movie.ID, time.Now())
		if !errors.Is(err, shared.ErrDuplicateEntry) {
			t.Errorf("expected ErrDuplicateEntry, got %v", err)
		}

		// Same movie under a different user is fine
		if _, err := repo.Add(2, movie.ID, time.Now()); err != nil {
			t.Errorf("different user should be able to add the same movie: %v", err)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)
		movie := mustCache(t, movies, 27205, "Inception")

		if _, err := repo.Add(1, movie.ID, time.Now()); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		removed, err := repo.Remove(1, movie.ID)
		if err != nil {
			t.Fatalf("failed to remove entry: %v", err)
		}
		if !removed {
			t.Error("expected removal of existing entry")
		}

		removed, err = repo.Remove(1, movie.ID)
		if err != nil {
			t.Fatalf("removing absent entry should not fail: %v", err)
		}
		if removed {
			t.Error("removing absent entry should report false")
		}
	})

	t.Run("SetWatched", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)
		movie := mustCache(t, movies, 27205, "Inception")

		if _, err := repo.Add(1, movie.ID, time.Now()); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		updated, err := repo.SetWatched(1, movie.ID, true, time.Now())
		if err != nil {
			t.Fatalf("failed to mark watched: %v", err)
		}
		if !updated {
			t.Error("expected update of existing entry")
		}

		entry, err := repo.GetByUserAndMovie(1, movie.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if !entry.Watched || entry.WatchedAt == nil {
			t.Error("watched entry should carry watched flag and timestamp together")
		}

		// Marking watched twice stays consistent
		if _, err := repo.SetWatched(1, movie.ID, true, time.Now()); err != nil {
			t.Fatalf("repeated mark watched should not fail: %v", err)
		}

		if _, err := repo.SetWatched(1, movie.ID, false, time.Now()); err != nil {
			t.Fatalf("failed to mark unwatched: %v", err)
		}

		entry, err = repo.GetByUserAndMovie(1, movie.ID)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if entry.Watched || entry.WatchedAt != nil {
			t.Error("unwatched entry should clear both the flag and the timestamp")
		}
	})

	t.Run("SetWatchedAbsent", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewWatchlistRepository(db)

		updated, err := repo.SetWatched(1, "missing", true, time.Now())
		if err != nil {
			t.Fatalf("marking absent entry should not fail: %v", err)
		}
		if updated {
			t.Error("marking absent entry should report false")
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewWatchlistRepository(db)
		if _, err := repo.GetByUserAndMovie(1, "missing"); !errors.Is(err, shared.ErrEntryNotFound) {
			t.Errorf("expected ErrEntryNotFound, got %v", err)
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)

		first := mustCache(t, movies, 101, "First")
		second := mustCache(t, movies, 102, "Second")
		third := mustCache(t, movies, 103, "Third")

		base := time.Now().Add(-time.Hour)
		if _, err := repo.Add(1, first.ID, base); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}
		if _, err := repo.Add(1, second.ID, base.Add(time.Minute)); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}
		if _, err := repo.Add(1, third.ID, base.Add(2*time.Minute)); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		entries, err := repo.ListByUser(1)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}

		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		want := []string{third.ID, second.ID, first.ID}
		for i, entry := range entries {
			if entry.MovieID != want[i] {
				t.Errorf("position %d: expected movie %s, got %s", i, want[i], entry.MovieID)
			}
		}
	})

	t.Run("ListByUserTieBreak", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)

		first := mustCache(t, movies, 201, "First")
		second := mustCache(t, movies, 202, "Second")

		// Identical added-at; insertion order decides
		at := time.Now().Truncate(time.Second)
		if _, err := repo.Add(1, first.ID, at); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}
		if _, err := repo.Add(1, second.ID, at); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}

		entries, err := repo.ListByUser(1)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}

		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].MovieID != first.ID || entries[1].MovieID != second.ID {
			t.Error("equal timestamps should keep insertion order")
		}
	})

	t.Run("Stats", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		movies := NewMovieRepository(db)
		repo := NewWatchlistRepository(db)

		first := mustCache(t, movies, 301, "First")
		second := mustCache(t, movies, 302, "Second")

		if _, err := repo.Add(1, first.ID, time.Now()); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}
		if _, err := repo.Add(1, second.ID, time.Now()); err != nil {
			t.Fatalf("failed to add entry: %v", err)
		}
		if _, err := repo.SetWatched(1, first.ID, true, time.Now()); err != nil {
			t.Fatalf("failed to mark watched: %v", err)
		}

		stats, err := repo.Stats(1)
		if err != nil {
			t.Fatalf("failed to compute stats: %v", err)
		}

		if stats.Total != 2 || stats.Watched != 1 || stats.Unwatched != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}
		if stats.Percent != 50 {
			t.Errorf("expected 50%% watched, got %.1f", stats.Percent)
		}

		// Empty watchlist keeps the percentage at zero
		empty, err := repo.Stats(42)
		if err != nil {
			t.Fatalf("failed to compute empty stats: %v", err)
		}
		if empty.Total != 0 || empty.Percent != 0 {
			t.Errorf("unexpected empty stats: %+v", empty)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "watchlist")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	second, err := NextSequence(db, "watchlist")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected consecutive sequences, got %d then %d", first, second)
	}
}
