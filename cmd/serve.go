package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/server"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web listing until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	app, err := r.newWebApp(cmd.Bool("no-cache"))
	if err != nil {
		return err
	}

	addr := r.serverConfig(cmd).Addr()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("Serving lyric listings on http://%s\n", addr)
	return server.Serve(ctx, addr, app.Router(), r.logger)
}

func (r *Runner) newWebApp(skipCache bool) (*web.App, error) {
	opts := web.AppOpts{
		Source:     r.source,
		Pager:      r.pagerOpts(nil),
		SiteURL:    r.config.Site.BaseURL,
		RootMargin: r.config.UI.RootMargin,
		Logger:     r.logger,
	}

	var cache search.Cache
	if repo := r.optionalCache(skipCache); repo != nil {
		opts.Pager.Recorder = repo
		opts.Cache = repo
		cache = repo
	}
	opts.Finder = search.NewFinder(cache, r.searcher, r.logger)

	return web.NewApp(opts)
}

func (r *Runner) serverConfig(cmd *cli.Command) shared.ServerConfig {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}
	return cfg
}
