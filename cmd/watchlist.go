package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"watchlater/internal/formatter"
	"watchlater/internal/shared"
)

// WatchlistAdd caches the movie if needed and adds it to the watchlist.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	tmdbID := cmd.IntArg("id")
	if tmdbID <= 0 {
		return fmt.Errorf("%w: a positive TMDB id is required", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd); err != nil {
		return err
	}

	userID := int64(cmd.Int("user"))

	// Fetch-through so an uncached id can be added directly from search
	// output without a separate details call.
	movie, err := r.movies.GetMovieDetails(ctx, tmdbID).Await()
	if err != nil {
		return err
	}

	if _, err := r.watchlist.AddToWatchlist(userID, tmdbID).Await(); err != nil {
		return err
	}

	r.writePlain("✓ Added '%s' to the watchlist\n", movie.Title)
	return nil
}

// WatchlistRemove removes the movie from the watchlist.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	tmdbID := cmd.IntArg("id")
	if tmdbID <= 0 {
		return fmt.Errorf("%w: a positive TMDB id is required", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd); err != nil {
		return err
	}

	removed, err := r.watchlist.RemoveFromWatchlist(int64(cmd.Int("user")), tmdbID).Await()
	if err != nil {
		return err
	}

	if removed {
		r.writePlain("✓ Removed movie %d from the watchlist\n", tmdbID)
	} else {
		r.writePlain("Movie %d was not on the watchlist\n", tmdbID)
	}
	return nil
}

// WatchlistWatched marks the movie watched.
func (r *Runner) WatchlistWatched(ctx context.Context, cmd *cli.Command) error {
	return r.setWatched(ctx, cmd, true)
}

// WatchlistUnwatched marks the movie not watched.
func (r *Runner) WatchlistUnwatched(ctx context.Context, cmd *cli.Command) error {
	return r.setWatched(ctx, cmd, false)
}

func (r *Runner) setWatched(ctx context.Context, cmd *cli.Command, watched bool) error {
	tmdbID := cmd.IntArg("id")
	if tmdbID <= 0 {
		return fmt.Errorf("%w: a positive TMDB id is required", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd); err != nil {
		return err
	}

	userID := int64(cmd.Int("user"))

	var updated bool
	var err error
	if watched {
		updated, err = r.watchlist.MarkWatched(userID, tmdbID).Await()
	} else {
		updated, err = r.watchlist.MarkUnwatched(userID, tmdbID).Await()
	}
	if err != nil {
		return err
	}

	state := "watched"
	if !watched {
		state = "unwatched"
	}

	if updated {
		r.writePlain("✓ Marked movie %d as %s\n", tmdbID, state)
	} else {
		r.writePlain("Movie %d is not on the watchlist, nothing to mark\n", tmdbID)
	}
	return nil
}

// WatchlistList prints the watchlist in text, CSV or JSON form.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd); err != nil {
		return err
	}

	items, err := r.watchlist.ListWatchlistDetailed(int64(cmd.Int("user"))).Await()
	if err != nil {
		return err
	}

	switch format := cmd.String("format"); format {
	case "json":
		return r.writeJSON(map[string]any{"watchlist": items}, true)
	case "csv":
		data, err := formatter.ExportToCSV(items)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "text":
		return r.writePlain("%s", formatter.ExportToText(items))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// WatchlistStats prints watchlist totals.
func (r *Runner) WatchlistStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd); err != nil {
		return err
	}

	stats, err := r.watchlist.WatchlistStats(int64(cmd.Int("user"))).Await()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Watchlist Stats")
	r.writePlain("Total: %d\n", stats.Total)
	r.writePlain("Watched: %d\n", stats.Watched)
	r.writePlain("Unwatched: %d\n", stats.Unwatched)
	r.writePlain("Progress: %.1f%%\n", stats.Percent)
	return nil
}
