// Package services defines the [Provider] contract for remote movie
// metadata sources and implements it for TMDB.
//
// # Provider Interface
//
// The coordinators in internal/tasks depend only on [Provider]; the wire
// encoding and transport live entirely in this package.
//
// # TMDB Implementation
//
// [TMDBService] talks to the TMDB v3 REST API. Authentication is either a
// v3 api_key query parameter or a v4 read access token sent as a Bearer
// header via an [oauth2] static token source; the token takes precedence
// when both are configured. Requests pass through a [rate.Limiter] so
// bursts of cache misses stay under the provider's request ceiling.
//
// # Error Handling
//
// Responses map onto the shared taxonomy:
//   - 404 → [shared.ErrMovieNotFound]
//   - transport failures and other non-2xx statuses → [shared.ErrProviderUnavailable]
//
// Both are wrapped with request context and matched by callers with
// [errors.Is]. The client never retries; that policy belongs to callers.
package services
