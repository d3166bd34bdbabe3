package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"watchlater/internal/models"
	"watchlater/internal/shared"
	"watchlater/internal/tasks"
)

// API serves the watchlater HTTP endpoints over the two engines.
//
// Handlers block on the engines' futures; the pool bounds concurrency,
// the HTTP server's own goroutines just wait.
type API struct {
	movies    *tasks.MovieEngine
	watchlist *tasks.WatchlistEngine
	logger    *log.Logger
}

// NewAPI creates an API over the given engines. A nil logger falls back
// to the shared default.
func NewAPI(movies *tasks.MovieEngine, watchlist *tasks.WatchlistEngine, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{movies: movies, watchlist: watchlist, logger: logger}
}

// Routes registers all API endpoints on the router.
func (a *API) Routes(r Router) {
	r.Handle(http.MethodGet, "/api/movies/popular", http.HandlerFunc(a.handlePopular))
	r.Handle(http.MethodGet, "/api/movies/search", http.HandlerFunc(a.handleSearch))
	r.Handle(http.MethodGet, "/api/movies/{id}", http.HandlerFunc(a.handleMovieDetails))
	r.Handle(http.MethodGet, "/api/users/{user}/watchlist", http.HandlerFunc(a.handleWatchlist))
	r.Handle(http.MethodGet, "/api/users/{user}/watchlist/stats", http.HandlerFunc(a.handleStats))
	r.Handle(http.MethodPost, "/api/users/{user}/watchlist", http.HandlerFunc(a.handleAdd))
	r.Handle(http.MethodDelete, "/api/users/{user}/watchlist/{id}", http.HandlerFunc(a.handleRemove))
	r.Handle(http.MethodPut, "/api/users/{user}/watchlist/{id}/watched", http.HandlerFunc(a.handleMarkWatched))
	r.Handle(http.MethodDelete, "/api/users/{user}/watchlist/{id}/watched", http.HandlerFunc(a.handleMarkUnwatched))
}

// LogRequests returns middleware logging method, path and duration of
// each request.
func LogRequests(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

func (a *API) handleMovieDetails(w http.ResponseWriter, r *http.Request) {
	tmdbID, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	movie, err := a.movies.GetMovieDetails(r.Context(), tmdbID).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, movie)
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	movies, err := a.movies.SearchMovies(r.Context(), nil, query).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"results": movies})
}

func (a *API) handlePopular(w http.ResponseWriter, r *http.Request) {
	movies, err := a.movies.PopularMovies(r.Context(), nil).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"results": movies})
}

func (a *API) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}

	items, err := a.watchlist.ListWatchlistDetailed(userID).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{
		"user":      models.User{ID: userID},
		"watchlist": items,
	})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}

	stats, err := a.watchlist.WatchlistStats(userID).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}

	var body struct {
		TMDBID int `json:"tmdb_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TMDBID <= 0 {
		http.Error(w, "request body requires a positive tmdb_id", http.StatusBadRequest)
		return
	}

	entry, err := a.watchlist.AddToWatchlist(userID, body.TMDBID).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	tmdbID, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	removed, err := a.watchlist.RemoveFromWatchlist(userID, tmdbID).Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (a *API) handleMarkWatched(w http.ResponseWriter, r *http.Request) {
	a.setWatched(w, r, true)
}

func (a *API) handleMarkUnwatched(w http.ResponseWriter, r *http.Request) {
	a.setWatched(w, r, false)
}

func (a *API) setWatched(w http.ResponseWriter, r *http.Request, watched bool) {
	userID, ok := pathUser(w, r)
	if !ok {
		return
	}
	tmdbID, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	var future *tasks.Future[bool]
	if watched {
		future = a.watchlist.MarkWatched(userID, tmdbID)
	} else {
		future = a.watchlist.MarkUnwatched(userID, tmdbID)
	}

	updated, err := future.Await()
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode response", "err", err)
	}
}

// writeError maps the shared error taxonomy onto HTTP statuses.
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, shared.ErrMovieNotFound), errors.Is(err, shared.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateEntry):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrProviderUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrPoolClosed):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "err", err)
	}

	http.Error(w, err.Error(), status)
}

func pathUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.PathValue("user"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "user id must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return userID, true
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	value, err := strconv.Atoi(r.PathValue(key))
	if err != nil || value <= 0 {
		http.Error(w, key+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return value, true
}
