// TMDB implementation of [Provider]
//
// Response types based on https://developer.themoviedb.org/reference/intro/getting-started
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"watchlater/internal/models"
	"watchlater/internal/shared"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/"

	defaultRateLimit = 40.0
)

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TMDBMovie represents a movie payload from either the detail endpoint or
// a list endpoint. List results carry genre_ids; the detail endpoint
// expands them into genre objects and adds runtime, budget and revenue.
type TMDBMovie struct {
	ID               int         `json:"id"`
	Title            string      `json:"title"`
	Overview         string      `json:"overview"`
	PosterPath       string      `json:"poster_path"`
	BackdropPath     string      `json:"backdrop_path"`
	ReleaseDate      string      `json:"release_date"`
	VoteAverage      float64     `json:"vote_average"`
	VoteCount        int         `json:"vote_count"`
	GenreIDs         []int       `json:"genre_ids"`
	Genres           []tmdbGenre `json:"genres"`
	Runtime          int         `json:"runtime"`
	Budget           int64       `json:"budget"`
	Revenue          int64       `json:"revenue"`
	OriginalLanguage string      `json:"original_language"`
	OriginalTitle    string      `json:"original_title"`
	Popularity       float64     `json:"popularity"`
	Adult            bool        `json:"adult"`
	Video            bool        `json:"video"`
}

// TMDBMovieList represents a paginated list response.
type TMDBMovieList struct {
	Page         int         `json:"page"`
	Results      []TMDBMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// TMDBService implements the [Provider] interface for the TMDB API.
type TMDBService struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// NewTMDBService creates a new TMDB provider from configuration.
//
// When an access token is configured the HTTP client is built around an
// [oauth2.StaticTokenSource] so every request carries the Bearer header;
// otherwise the v3 api_key is appended to each request URL.
func NewTMDBService(cfg shared.TMDBConfig) (*TMDBService, error) {
	if cfg.APIKey == "" && cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: set tmdb.api_key or tmdb.access_token", shared.ErrMissingAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}

	imageBaseURL := cfg.ImageBaseURL
	if !strings.HasSuffix(imageBaseURL, "/t/p/") {
		imageBaseURL = tmdbImageBaseURL
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}

	svc := &TMDBService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: imageBaseURL,
		httpClient:   http.DefaultClient,
		limiter:      rate.NewLimiter(rate.Limit(limit), 1),
	}

	if cfg.AccessToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		svc.httpClient = oauth2.NewClient(context.Background(), src)
	} else {
		svc.apiKey = cfg.APIKey
	}

	return svc, nil
}

func (s *TMDBService) Name() string {
	return "TMDB"
}

// ImageBaseURL returns the configured base URL for poster and backdrop images.
func (s *TMDBService) ImageBaseURL() string {
	return s.imageBaseURL
}

// doRequest performs a rate-limited GET against the TMDB API and decodes
// the JSON response into result.
func (s *TMDBService) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrProviderUnavailable, err)
	}

	apiURL := s.baseURL + endpoint
	if s.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		apiURL += sep + "api_key=" + url.QueryEscape(s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: TMDB status %d", shared.ErrProviderUnavailable, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrProviderUnavailable, err)
		}
	}

	return nil
}

// FetchDetails retrieves full metadata for a single movie by TMDB id.
func (s *TMDBService) FetchDetails(ctx context.Context, tmdbID int) (*models.Movie, error) {
	if tmdbID <= 0 {
		return nil, fmt.Errorf("%w: tmdb id must be positive", shared.ErrInvalidInput)
	}

	var payload TMDBMovie
	endpoint := fmt.Sprintf("/movie/%d", tmdbID)
	if err := s.doRequest(ctx, endpoint, &payload); err != nil {
		if errors.Is(err, shared.ErrMovieNotFound) {
			return nil, fmt.Errorf("%w: tmdb id %d", shared.ErrMovieNotFound, tmdbID)
		}
		return nil, err
	}

	movie := payload.toMovie()
	return &movie, nil
}

// Search returns movies matching the query, possibly none.
func (s *TMDBService) Search(ctx context.Context, query string) ([]models.Movie, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/search/movie?query=%s", url.QueryEscape(query))
	return s.fetchMovieList(ctx, endpoint)
}

// Popular returns the provider's current popular movies list.
func (s *TMDBService) Popular(ctx context.Context) ([]models.Movie, error) {
	return s.fetchMovieList(ctx, "/movie/popular")
}

// fetchMovieList fetches a list endpoint and maps the results page.
func (s *TMDBService) fetchMovieList(ctx context.Context, endpoint string) ([]models.Movie, error) {
	var payload TMDBMovieList
	if err := s.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	movies := make([]models.Movie, 0, len(payload.Results))
	for _, item := range payload.Results {
		movies = append(movies, item.toMovie())
	}

	return movies, nil
}

// toMovie maps a TMDB payload onto the domain projection.
func (p TMDBMovie) toMovie() models.Movie {
	genreIDs := p.GenreIDs
	if len(genreIDs) == 0 && len(p.Genres) > 0 {
		genreIDs = make([]int, 0, len(p.Genres))
		for _, g := range p.Genres {
			genreIDs = append(genreIDs, g.ID)
		}
	}

	return models.Movie{
		TMDBID:           p.ID,
		Title:            p.Title,
		Overview:         p.Overview,
		PosterPath:       p.PosterPath,
		BackdropPath:     p.BackdropPath,
		ReleaseDate:      p.ReleaseDate,
		VoteAverage:      p.VoteAverage,
		VoteCount:        p.VoteCount,
		GenreIDs:         genreIDs,
		Runtime:          p.Runtime,
		Budget:           p.Budget,
		Revenue:          p.Revenue,
		OriginalLanguage: p.OriginalLanguage,
		OriginalTitle:    p.OriginalTitle,
		Popularity:       p.Popularity,
		Adult:            p.Adult,
		Video:            p.Video,
	}
}
