// Package tasks implements the asynchronous coordination layer between
// the TMDB provider, the movie cache and the watchlist store.
//
// The core abstractions are [MovieEngine], which orchestrates cache-aside
// reads (consult the cache, fetch from the provider on a miss or stale
// record, upsert the result), and [WatchlistEngine], which runs watchlist
// mutations and queries, resolving movies by TMDB id through the cache.
//
// Every externally observable operation executes on a bounded [Pool] and
// resolves a [Future] back to the caller. Callers that need a particular
// completion context (a UI loop, say) redispatch themselves; the engines
// make no assumption about where Await is called. Abandoning a future
// does not stop the underlying work; provider calls and store writes run
// to completion and commit.
//
// List operations emit [ProgressUpdate] events on an optional channel
// with non-blocking sends, so a slow consumer can never stall an
// operation.
package tasks
