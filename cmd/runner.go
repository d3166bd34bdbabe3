package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"watchlater/internal/repositories"
	"watchlater/internal/services"
	"watchlater/internal/shared"
	"watchlater/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	provider  services.Provider
	db        *sql.DB
	pool      *tasks.Pool
	movies    *tasks.MovieEngine
	watchlist *tasks.WatchlistEngine
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Provider services.Provider
	DB       *sql.DB
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		provider: opts.Provider,
		db:       opts.DB,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, movieCommand, watchlistCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// connect loads configuration from the --config flag, opens the database,
// builds the provider and wires both engines over a shared worker pool.
//
// Idempotent; subsequent commands in the same process reuse the first
// connection.
func (r *Runner) connect(cmd *cli.Command) error {
	if r.movies != nil && r.watchlist != nil {
		return nil
	}

	if path := cmd.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			r.config = config
		}
	}

	if r.provider == nil {
		provider, err := services.NewTMDBService(r.config.TMDB)
		if err != nil {
			return err
		}
		r.provider = provider
	}

	if r.db == nil {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// ":memory:" must keep the single connection NewDatabase pinned;
		// widening the pool would give workers separate empty databases.
		if r.config.Database.Path != ":memory:" {
			shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		}

		// Migrations are recorded per version, so running them on every
		// connect is a no-op once applied.
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.db = db
	}

	if r.pool == nil {
		size := r.config.Workers.PoolSize
		if size <= 0 {
			size = tasks.DefaultPoolSize
		}
		r.pool = tasks.NewPool(size)
	}

	ttl := tasks.DefaultCacheTTL
	if r.config.Cache.TTLHours > 0 {
		ttl = time.Duration(r.config.Cache.TTLHours) * time.Hour
	}

	movieRepo := repositories.NewMovieRepository(r.db)
	watchRepo := repositories.NewWatchlistRepository(r.db)

	r.movies = tasks.NewMovieEngine(r.provider, movieRepo, r.pool, ttl, r.logger)
	r.watchlist = tasks.NewWatchlistEngine(watchRepo, movieRepo, r.pool, r.logger)

	return nil
}

// Close drains the worker pool and closes the database.
func (r *Runner) Close() {
	if r.pool != nil {
		r.pool.Shutdown()
	}
	if r.db != nil {
		r.db.Close()
	}
}

// SetLogger replaces the Runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
