package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"watchlater/internal/models"
	"watchlater/internal/shared"
	tu "watchlater/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			provider := tu.NewMockProvider()

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Logger:   logger,
				Output:   output,
				Provider: provider,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.provider != provider {
				t.Error("expected provider to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"answer": 42}, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `"answer":42`) {
			t.Errorf("unexpected output: %q", output.String())
		}

		output.Reset()
		if err := runner.writeJSON(map[string]int{"answer": 42}, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "  \"answer\": 42") {
			t.Errorf("expected indented output, got %q", output.String())
		}
	})

	t.Run("writeJSON failing writer", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writeJSON("data", false); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("count: %d\n", 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.String() != "count: 3\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("connect keeps in-memory database pinned", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Database.Path = ":memory:"
		config.Database.MaxOpenConns = 10

		runner := NewRunner(RunnerOpts{
			Config:   config,
			Provider: tu.NewMockProvider(),
			Output:   &bytes.Buffer{},
		})
		t.Cleanup(runner.Close)

		app := &cli.Command{Name: "watchlater", Commands: runner.register()}
		if err := run(t, app, "watchlist", "stats"); err != nil {
			t.Fatalf("stats failed: %v", err)
		}

		if got := runner.db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("in-memory database should stay on 1 connection, got %d", got)
		}
	})

	t.Run("writePlain exhausted writer", func(t *testing.T) {
		writer := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
		runner := NewRunner(RunnerOpts{Output: &writer})

		if err := runner.writePlain("first\n"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := runner.writePlain("second\n"); err == nil {
			t.Error("expected error once the writer limit is hit")
		}
	})
}

// newTestRunner builds a Runner over an in-memory database and a mock
// provider, plus the cli app wrapping its commands.
func newTestRunner(t *testing.T, movies ...models.Movie) (*Runner, *cli.Command, *bytes.Buffer) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   shared.DefaultConfig(),
		Provider: tu.NewMockProvider(movies...),
		DB:       db,
		Output:   output,
	})
	t.Cleanup(func() {
		if runner.pool != nil {
			runner.pool.Shutdown()
		}
	})

	app := &cli.Command{
		Name:     "watchlater",
		Commands: runner.register(),
	}

	return runner, app, output
}

func run(t *testing.T, app *cli.Command, args ...string) error {
	t.Helper()
	return app.Run(context.Background(), append([]string{"watchlater"}, args...))
}

func TestWatchlistCommands(t *testing.T) {
	movie := models.Movie{
		TMDBID:      27205,
		Title:       "Inception",
		ReleaseDate: "2010-07-16",
		VoteAverage: 8.4,
	}

	t.Run("add then list", func(t *testing.T) {
		_, app, output := newTestRunner(t, movie)

		if err := run(t, app, "watchlist", "add", "27205"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !strings.Contains(output.String(), "Added 'Inception'") {
			t.Errorf("unexpected add output: %q", output.String())
		}

		output.Reset()
		if err := run(t, app, "watchlist", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Watchlist (1 movies)") {
			t.Errorf("unexpected list output: %q", output.String())
		}
		if !strings.Contains(output.String(), "[ ] Inception") {
			t.Errorf("entry should start unwatched: %q", output.String())
		}
	})

	t.Run("watched then stats", func(t *testing.T) {
		_, app, output := newTestRunner(t, movie)

		if err := run(t, app, "watchlist", "add", "27205"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := run(t, app, "watchlist", "watched", "27205"); err != nil {
			t.Fatalf("watched failed: %v", err)
		}

		output.Reset()
		if err := run(t, app, "watchlist", "stats"); err != nil {
			t.Fatalf("stats failed: %v", err)
		}

		for _, want := range []string{"Total: 1", "Watched: 1", "Progress: 100.0%"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("stats output missing %q: %q", want, output.String())
			}
		}
	})

	t.Run("remove absent entry", func(t *testing.T) {
		_, app, output := newTestRunner(t, movie)

		if err := run(t, app, "watchlist", "remove", "27205"); err != nil {
			t.Fatalf("remove should not fail on absent entry: %v", err)
		}
		if !strings.Contains(output.String(), "was not on the watchlist") {
			t.Errorf("unexpected remove output: %q", output.String())
		}
	})

	t.Run("add requires an id", func(t *testing.T) {
		_, app, _ := newTestRunner(t, movie)

		if err := run(t, app, "watchlist", "add"); err == nil {
			t.Error("expected error for missing id argument")
		}
	})

	t.Run("list rejects unknown format", func(t *testing.T) {
		_, app, _ := newTestRunner(t, movie)

		if err := run(t, app, "watchlist", "list", "--format", "yaml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestMovieCommands(t *testing.T) {
	movie := models.Movie{
		TMDBID:      27205,
		Title:       "Inception",
		ReleaseDate: "2010-07-16",
		VoteAverage: 8.4,
		Runtime:     148,
	}

	t.Run("details", func(t *testing.T) {
		runner, app, output := newTestRunner(t, movie)

		if err := run(t, app, "movie", "details", "27205"); err != nil {
			t.Fatalf("details failed: %v", err)
		}
		if !strings.Contains(output.String(), "Inception") {
			t.Errorf("unexpected details output: %q", output.String())
		}
		if !strings.Contains(output.String(), "2h 28m") {
			t.Errorf("runtime not formatted: %q", output.String())
		}

		// The lookup populated the cache
		provider := runner.provider.(*tu.MockProvider)
		if provider.FetchCount(27205) != 1 {
			t.Errorf("expected 1 provider fetch, got %d", provider.FetchCount(27205))
		}

		if err := run(t, app, "movie", "details", "27205"); err != nil {
			t.Fatalf("details failed: %v", err)
		}
		if provider.FetchCount(27205) != 1 {
			t.Errorf("second lookup should hit the cache, got %d fetches", provider.FetchCount(27205))
		}
	})

	t.Run("details json", func(t *testing.T) {
		_, app, output := newTestRunner(t, movie)

		if err := run(t, app, "movie", "details", "27205", "--json"); err != nil {
			t.Fatalf("details failed: %v", err)
		}
		if !strings.Contains(output.String(), `"title":"Inception"`) {
			t.Errorf("unexpected JSON output: %q", output.String())
		}
	})

	t.Run("search", func(t *testing.T) {
		runner, app, output := newTestRunner(t)
		runner.provider.(*tu.MockProvider).SetSearch("inception", []models.Movie{movie})

		if err := run(t, app, "movie", "search", "inception"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(output.String(), "Found 1 movies for 'inception'") {
			t.Errorf("unexpected search output: %q", output.String())
		}
		if !strings.Contains(output.String(), "[tmdb:27205]") {
			t.Errorf("result should carry the TMDB id: %q", output.String())
		}
	})

	t.Run("search requires a query", func(t *testing.T) {
		_, app, _ := newTestRunner(t)

		if err := run(t, app, "movie", "search"); err == nil {
			t.Error("expected error for missing query")
		}
	})
}
