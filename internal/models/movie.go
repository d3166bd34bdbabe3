package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const defaultImageBaseURL = "https://image.tmdb.org/t/p/"

var sizedPathRe = regexp.MustCompile(`^/w\d+/`)

// Movie represents a TMDB movie, cached locally.
//
// Values are constructed once and treated as immutable; an upsert replaces
// every descriptive field wholesale rather than mutating in place.
type Movie struct {
	// ID is the locally-generated identifier, assigned by the cache store
	// on first insert and stable for the lifetime of the record. Empty
	// for records that have not been stored yet.
	ID string `json:"-"`

	// TMDBID is the provider-assigned identifier, unique within the cache.
	TMDBID int `json:"id"`

	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Runtime          int     `json:"runtime"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`

	// CachedAt is the wall-clock time of the last provider fetch that
	// populated this record. Strictly non-decreasing per record.
	CachedAt time.Time `json:"-"`
}

// Validate checks that the movie carries the minimum identity fields
// required before it can be stored.
func (m Movie) Validate() error {
	if m.TMDBID <= 0 {
		return fmt.Errorf("movie requires a positive TMDB id")
	}
	if m.Title == "" {
		return fmt.Errorf("movie requires a title")
	}
	return nil
}

// FreshAt reports whether the record is still inside the freshness window
// at the given instant.
func (m Movie) FreshAt(now time.Time, maxAge time.Duration) bool {
	return !m.CachedAt.IsZero() && now.Sub(m.CachedAt) < maxAge
}

// PosterURL builds a full poster image URL from a TMDB image base URL and
// a width size such as "500" or "w500". Returns "" when the movie has no
// poster path.
func (m Movie) PosterURL(baseURL, size string) string {
	if m.PosterPath == "" {
		return ""
	}

	width := strings.Map(keepDigits, size)
	if width == "" {
		width = "500"
	}

	return normalizeImageBase(baseURL) + "w" + width + normalizeImagePath(m.PosterPath)
}

// BackdropURL builds a full backdrop image URL at the provider's
// "original" size. Returns "" when the movie has no backdrop path.
func (m Movie) BackdropURL(baseURL string) string {
	if m.BackdropPath == "" {
		return ""
	}

	return normalizeImageBase(baseURL) + "original" + normalizeImagePath(m.BackdropPath)
}

func normalizeImageBase(baseURL string) string {
	if strings.HasSuffix(baseURL, "/t/p/") {
		return baseURL
	}
	return defaultImageBaseURL
}

// normalizeImagePath ensures a leading slash and strips an embedded width
// segment so a stored "/w342/abc.jpg" does not double up with the
// requested size.
func normalizeImagePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if sizedPathRe.MatchString(path) {
		path = path[strings.Index(path[1:], "/")+1:]
	}
	return path
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
