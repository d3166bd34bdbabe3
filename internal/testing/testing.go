// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"watchlater/internal/models"
	"watchlater/internal/shared"
)

// MockProvider is a test double for [services.Provider] backed by an
// in-memory movie table. Fetch counts are tracked per TMDB id so tests
// can assert how often the provider was actually hit.
type MockProvider struct {
	mu          sync.Mutex
	movies      map[int]models.Movie
	searches    map[string][]models.Movie
	popular     []models.Movie
	fetchCalls  map[int]int
	searchCalls int
	Err         error // when set, every call fails with this error
}

func NewMockProvider(movies ...models.Movie) *MockProvider {
	p := &MockProvider{
		movies:     make(map[int]models.Movie),
		searches:   make(map[string][]models.Movie),
		fetchCalls: make(map[int]int),
	}
	for _, m := range movies {
		p.movies[m.TMDBID] = m
	}
	return p
}

func (p *MockProvider) FetchDetails(ctx context.Context, tmdbID int) (*models.Movie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fetchCalls[tmdbID]++
	if p.Err != nil {
		return nil, p.Err
	}

	movie, ok := p.movies[tmdbID]
	if !ok {
		return nil, shared.ErrMovieNotFound
	}
	return &movie, nil
}

func (p *MockProvider) Search(ctx context.Context, query string) ([]models.Movie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.searchCalls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.searches[query], nil
}

func (p *MockProvider) Popular(ctx context.Context) ([]models.Movie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return p.popular, nil
}

func (p *MockProvider) ImageBaseURL() string { return "https://image.tmdb.org/t/p/" }
func (p *MockProvider) Name() string         { return "mock" }

// SetSearch registers the result list returned for a query.
func (p *MockProvider) SetSearch(query string, results []models.Movie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches[query] = results
}

// SetPopular registers the popular result list.
func (p *MockProvider) SetPopular(results []models.Movie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.popular = results
}

// FetchCount reports how many times FetchDetails was called for the id.
func (p *MockProvider) FetchCount(tmdbID int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchCalls[tmdbID]
}

// SearchCount reports how many times Search was called.
func (p *MockProvider) SearchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchCalls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
