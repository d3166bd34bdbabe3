// Package models defines the domain entities for the watchlater service.
//
// The package contains two categories of types:
//
// 1. Provider projections: data as returned by the metadata provider
//   - [Movie] : TMDB movie metadata, also carried in the local cache
//
// 2. Locally owned records: rows owned by the persistent stores
//   - [WatchlistEntry] : one user's relationship to one cached movie
//   - [User] : opaque user identity; profile data lives outside this core
//
// A [Movie] value straddles both worlds: the provider populates the
// descriptive fields, while the store assigns the local ID on first insert
// and stamps CachedAt on every upsert. External callers address movies
// exclusively by TMDBID; the local ID never crosses the API boundary.
package models
