package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"watchlater/internal/shared"
	tu "watchlater/internal/testing"
)

const detailPayload = `{
	"id": 27205,
	"title": "Inception",
	"overview": "A thief who steals corporate secrets",
	"poster_path": "/poster.jpg",
	"backdrop_path": "/backdrop.jpg",
	"release_date": "2010-07-16",
	"vote_average": 8.4,
	"vote_count": 34000,
	"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
	"runtime": 148,
	"budget": 160000000,
	"revenue": 836836967,
	"original_language": "en",
	"original_title": "Inception",
	"popularity": 83.5
}`

const listPayload = `{
	"page": 1,
	"results": [
		{"id": 27205, "title": "Inception", "release_date": "2010-07-16", "genre_ids": [28, 878]},
		{"id": 64956, "title": "Inception: The Cobol Job", "release_date": "2010-12-07"}
	],
	"total_pages": 1,
	"total_results": 2
}`

// newTestService points a TMDBService at a test server using api_key auth.
func newTestService(t *testing.T, handler http.HandlerFunc) (*TMDBService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewTMDBService(shared.TMDBConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return svc, server
}

func TestNewTMDBService(t *testing.T) {
	t.Run("RequiresCredentials", func(t *testing.T) {
		if _, err := NewTMDBService(shared.TMDBConfig{}); !errors.Is(err, shared.ErrMissingAPIKey) {
			t.Errorf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		svc, err := NewTMDBService(shared.TMDBConfig{APIKey: "key"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if svc.Name() != "TMDB" {
			t.Errorf("unexpected name %q", svc.Name())
		}
		if svc.ImageBaseURL() != tmdbImageBaseURL {
			t.Errorf("expected default image base, got %q", svc.ImageBaseURL())
		}
		if svc.baseURL != tmdbBaseURL {
			t.Errorf("expected default base url, got %q", svc.baseURL)
		}
	})
}

func TestTMDBService_FetchDetails(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/movie/27205" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("api_key") != "test-key" {
				t.Error("expected api_key query parameter")
			}
			if r.Header.Get("Accept") != "application/json" {
				t.Error("expected Accept: application/json")
			}
			w.Write([]byte(detailPayload))
		})

		movie, err := svc.FetchDetails(context.Background(), 27205)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if movie.TMDBID != 27205 || movie.Title != "Inception" {
			t.Errorf("unexpected movie: %+v", movie)
		}
		if movie.Runtime != 148 || movie.Budget != 160000000 {
			t.Errorf("detail fields not mapped: runtime=%d budget=%d", movie.Runtime, movie.Budget)
		}

		// Detail payloads expand genres into objects
		if len(movie.GenreIDs) != 2 || movie.GenreIDs[0] != 28 {
			t.Errorf("genres not flattened: %v", movie.GenreIDs)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		if _, err := svc.FetchDetails(context.Background(), 999); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		if _, err := svc.FetchDetails(context.Background(), 27205); !errors.Is(err, shared.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("MalformedResponse", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})

		if _, err := svc.FetchDetails(context.Background(), 27205); !errors.Is(err, shared.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("BodyReadFailure", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: make(http.Header)}
		svc.httpClient = &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		if _, err := svc.FetchDetails(context.Background(), 27205); !errors.Is(err, shared.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("ConnectionFailure", func(t *testing.T) {
		svc, server := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
		server.Close()

		if _, err := svc.FetchDetails(context.Background(), 27205); !errors.Is(err, shared.ErrProviderUnavailable) {
			t.Errorf("expected ErrProviderUnavailable, got %v", err)
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("invalid id should not reach the network")
		})

		if _, err := svc.FetchDetails(context.Background(), 0); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestTMDBService_Search(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/movie" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.URL.Query().Get("query") != "the cobol job" {
				t.Errorf("unexpected query %q", r.URL.Query().Get("query"))
			}
			w.Write([]byte(listPayload))
		})

		movies, err := svc.Search(context.Background(), "the cobol job")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(movies) != 2 {
			t.Fatalf("expected 2 results, got %d", len(movies))
		}
		if movies[0].TMDBID != 27205 || len(movies[0].GenreIDs) != 2 {
			t.Errorf("list result not mapped: %+v", movies[0])
		}
	})

	t.Run("EmptyResults", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"page": 1, "results": [], "total_pages": 0, "total_results": 0}`))
		})

		movies, err := svc.Search(context.Background(), "nothing matches this")
		if err != nil {
			t.Fatalf("an empty result page is not an error: %v", err)
		}
		if len(movies) != 0 {
			t.Errorf("expected no results, got %d", len(movies))
		}
	})

	t.Run("BlankQuery", func(t *testing.T) {
		svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("blank query should not reach the network")
		})

		if _, err := svc.Search(context.Background(), "   "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestTMDBService_Popular(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/popular" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(listPayload))
	})

	movies, err := svc.Popular(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movies) != 2 {
		t.Errorf("expected 2 results, got %d", len(movies))
	}
}

func TestTMDBService_BearerAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Has("api_key") {
			t.Error("bearer auth should not append api_key")
		}
		w.Write([]byte(detailPayload))
	}))
	defer server.Close()

	svc, err := NewTMDBService(shared.TMDBConfig{
		AccessToken: "token123",
		BaseURL:     server.URL,
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if _, err := svc.FetchDetails(context.Background(), 27205); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
