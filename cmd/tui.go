package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the terminal listing for the given genre, or the first catalog genre.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lyrx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := r.pagerOpts(nil)
	var cache search.Cache
	if repo := r.optionalCache(cmd.Bool("no-cache")); repo != nil {
		opts.Recorder = repo
		cache = repo
	}

	model := ui.NewModel(ctx, ui.ModelOpts{
		Controller: pager.New(r.source, opts),
		Finder:     search.NewFinder(cache, r.searcher, r.logger),
		Genre:      cmd.StringArg("genre"),
		SiteURL:    r.config.Site.BaseURL,
		MarginRows: r.config.UI.MarginRows,
		Logger:     r.logger,
		Open:       r.open,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// optionalCache returns the lyric cache unless skip is set. Failing to open it is logged, not returned,
// since listings work without it.
func (r *Runner) optionalCache(skip bool) *repositories.LyricRepository {
	if skip {
		return nil
	}

	repo, err := r.repository()
	if err != nil {
		r.logger.Warn("lyric cache unavailable, pages will not be recorded", "err", err)
		return nil
	}
	return repo
}
