// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// genresCommand lists the genre catalog
func genresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "genres",
		Usage: "List the genres that can be browsed",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Genres,
	}
}

// listCommand walks a genre listing without a renderer
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "Load pages of a genre listing and print or export them",
		ArgsUsage: "<genre>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "genre"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "pages",
				Aliases: []string{"p"},
				Usage:   "Number of pages to load, 0 loads until the listing is exhausted",
				Value:   1,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to a file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record every loaded page in the lyric cache",
			},
		},
		Action: r.List,
	}
}

// browseCommand launches the terminal listing
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Aliases:   []string{"tui", "ui"},
		Usage:     "Browse genre listings in the terminal",
		ArgsUsage: "[genre]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "genre"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Do not record loaded pages in the lyric cache",
			},
		},
		Action: r.Browse,
	}
}

// serveCommand serves the web listing
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve genre listings over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (default: server.port)",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Do not record loaded pages in the lyric cache",
			},
		},
		Action: r.Serve,
	}
}

// warmCommand walks whole genres into the cache
func warmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "warm",
		Usage:     "Load genre listings into the lyric cache",
		ArgsUsage: "[genre...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Genres loaded concurrently",
				Value:   3,
			},
			&cli.IntFlag{
				Name:  "max-pages",
				Usage: "Pages per genre, 0 loads until exhausted",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Page requests per second across workers (default: source.rate_limit)",
			},
		},
		Action: r.Warm,
	}
}

// searchCommand searches the cache and the remote source
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search cached and remote lyrics by title",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

// openCommand opens a detail route in the browser
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open a lyric's detail page in the browser",
		ArgsUsage: "<genre> <slug>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "genre"},
			&cli.StringArg{Name: "slug"},
		},
		Action: r.Open,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the default configuration file",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// cacheCommand inspects and clears the lyric cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local lyric cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cached lyrics per genre",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:      "show",
				Usage:     "List cached lyrics for a genre in listing order",
				ArgsUsage: "<genre>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "genre"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of lyrics, 0 for all",
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:  "clear",
				Usage: "Remove cached lyrics",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Only clear this genre",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// apiCommand makes raw calls to the lyric API
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the lyric API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET to the lyric API, prints the response body",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON responses",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}
