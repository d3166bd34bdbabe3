package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"watchlater/internal/formatter"
	"watchlater/internal/models"
	"watchlater/internal/shared"
	"watchlater/internal/tasks"
)

// MovieSearch searches the provider by title and prints the results.
func (r *Runner) MovieSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd); err != nil {
		return err
	}

	r.logger.Info("searching movies", "query", query)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase.String())
		}
	}()

	movies, err := r.movies.SearchMovies(ctx, progressCh, query).Await()
	close(progressCh)

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"results": movies}, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d movies for '%s':\n\n", len(movies), query)
	r.printMovieList(movies)
	return nil
}

// MoviePopular fetches the provider's popular list and prints it.
func (r *Runner) MoviePopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase.String())
		}
	}()

	movies, err := r.movies.PopularMovies(ctx, progressCh).Await()
	close(progressCh)

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"results": movies}, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Popular Movies")
	r.printMovieList(movies)
	return nil
}

// MovieDetails fetches full details for a TMDB id, optionally exporting
// them to a directory with the poster image.
func (r *Runner) MovieDetails(ctx context.Context, cmd *cli.Command) error {
	tmdbID := cmd.IntArg("id")
	if tmdbID <= 0 {
		return fmt.Errorf("%w: a positive TMDB id is required", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd); err != nil {
		return err
	}

	movie, err := r.movies.GetMovieDetails(ctx, tmdbID).Await()
	if err != nil {
		return err
	}

	if cmd.Bool("export") {
		posterURL := movie.PosterURL(r.movies.ImageBaseURL(), "w500")
		backdropURL := movie.BackdropURL(r.movies.ImageBaseURL())
		result, err := formatter.WriteMovieExport(movie, cmd.String("output"), posterURL, backdropURL)
		if err != nil {
			return fmt.Errorf("failed to export movie: %w", err)
		}

		r.writePlain("✓ Exported '%s' to %s\n", movie.Title, result.Directory)
		for _, file := range result.Files {
			r.writePlain("  - %s\n", file)
		}
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}

	r.writePlainHeader(movie.Title)
	if movie.Overview != "" {
		r.writePlain("%s\n\n", movie.Overview)
	}
	r.writePlain("Released: %s\n", formatter.FormatReleaseDate(movie.ReleaseDate))
	r.writePlain("Runtime: %s\n", formatter.FormatRuntime(movie.Runtime))
	r.writePlain("Rating: %s (%s votes)\n", formatter.FormatVoteAverage(movie.VoteAverage), formatter.FormatVoteCount(movie.VoteCount))
	r.writePlain("Budget: %s\n", formatter.FormatMoney(movie.Budget))
	r.writePlain("Revenue: %s\n", formatter.FormatMoney(movie.Revenue))
	if movie.OriginalTitle != "" && movie.OriginalTitle != movie.Title {
		r.writePlain("Original title: %s (%s)\n", movie.OriginalTitle, movie.OriginalLanguage)
	}

	return nil
}

func (r *Runner) printMovieList(movies []models.Movie) {
	for i, movie := range movies {
		r.writePlain("%d. %s (%s) rated %s [tmdb:%d]\n",
			i+1, movie.Title,
			formatter.FormatReleaseDate(movie.ReleaseDate),
			formatter.FormatVoteAverage(movie.VoteAverage),
			movie.TMDBID)
	}
}
