// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func userFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "User id the watchlist belongs to",
		Value:   1,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// movieCommand handles provider lookups and cache reads
func movieCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movie",
		Aliases: []string{"m"},
		Usage:   "Search and inspect movies",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search movies by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  append([]cli.Flag{configFlag()}, outputFlags()...),
				Action: r.MovieSearch,
			},
			{
				Name:   "popular",
				Usage:  "List currently popular movies",
				Flags:  append([]cli.Flag{configFlag()}, outputFlags()...),
				Action: r.MoviePopular,
			},
			{
				Name:  "details",
				Usage: "Show full details for a movie by TMDB id",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "export",
						Usage: "Write details and poster to a directory",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Export directory (defaults to the TMDB id)",
					},
				}, outputFlags()...),
				Action: r.MovieDetails,
			},
		},
	}
}

// watchlistCommand handles watchlist mutations and queries
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Manage the watch-later list",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a movie to the watchlist by TMDB id",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.WatchlistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a movie from the watchlist",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.WatchlistRemove,
			},
			{
				Name:  "watched",
				Usage: "Mark a movie as watched",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.WatchlistWatched,
			},
			{
				Name:  "unwatched",
				Usage: "Mark a movie as not watched",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags:  []cli.Flag{configFlag(), userFlag()},
				Action: r.WatchlistUnwatched,
			},
			{
				Name:  "list",
				Usage: "List the watchlist, newest first",
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv or json",
						Value:   "text",
					},
				},
				Action: r.WatchlistList,
			},
			{
				Name:   "stats",
				Usage:  "Show watchlist totals and watched percentage",
				Flags:  append([]cli.Flag{configFlag(), userFlag()}, outputFlags()...),
				Action: r.WatchlistStats,
			},
		},
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse the watchlist interactively",
		Flags:  []cli.Flag{configFlag(), userFlag()},
		Action: r.TUI,
	}
}
