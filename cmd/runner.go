package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	source     services.LyricSource
	searcher   services.Searcher
	api        *services.APIService
	repo       *repositories.LyricRepository
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	open       func(string) error

	// ownsSource is set when source was built from config and must follow logger changes
	ownsSource bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Source     services.LyricSource          // Defaults to a [services.LyricService] built from Config
	Searcher   services.Searcher             // Defaults to Source when it can search
	API        *services.APIService          // Defaults to a client for source.base_url
	Repository *repositories.LyricRepository // Defaults to the database named in Config, opened on first use
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Open       func(string) error
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.API == nil {
		client := *opts.HTTPClient
		client.Timeout = opts.Config.Source.Timeout()
		opts.API = services.NewAPIService(opts.Config.Source.BaseURL, &client)
	}

	r := &Runner{
		config:     opts.Config,
		source:     opts.Source,
		searcher:   opts.Searcher,
		api:        opts.API,
		repo:       opts.Repository,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		open:       opts.Open,
	}

	if r.source == nil {
		r.ownsSource = true
		r.buildSource()
	}
	if r.searcher == nil {
		if s, ok := r.source.(services.Searcher); ok {
			r.searcher = s
		}
	}

	return r
}

func (r *Runner) buildSource() {
	svc := services.NewLyricService(r.api, services.LyricServiceOpts{
		RateLimit: r.config.Source.RateLimit,
		Logger:    r.logger,
	})
	r.source = svc
	r.searcher = svc
}

// SetLogger replaces the logger used by the runner and by the lyric source it built.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.ownsSource {
		r.buildSource()
	}
}

// Close releases the database opened by [Runner.repository], if any.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// repository opens the configured lyric cache on first use.
func (r *Runner) repository() (*repositories.LyricRepository, error) {
	if r.repo != nil {
		return r.repo, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open lyric cache: %w", err)
	}

	r.db = db
	r.repo = repositories.NewLyricRepository(db)
	r.logger.Debug("lyric cache opened", "path", r.config.Database.Path)
	return r.repo, nil
}

// pagerOpts returns controller options from config, recording pages into rec when it is non-nil.
func (r *Runner) pagerOpts(rec pager.Recorder) pager.Options {
	return pager.Options{
		PageSize:       r.config.Source.PageSize,
		ExhaustOnEmpty: r.config.Source.ExhaustOnEmpty,
		Recorder:       rec,
		Logger:         r.logger,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		genresCommand, listCommand, browseCommand, serveCommand, warmCommand,
		searchCommand, openCommand, setupCommand, cacheCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
