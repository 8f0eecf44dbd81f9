package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lyrx/internal/catalog"
	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Genres prints the genre catalog.
func (r *Runner) Genres(ctx context.Context, cmd *cli.Command) error {
	genres := catalog.All()
	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}

	r.writePlainHeader(fmt.Sprintf("Genres (%d)", len(genres)))
	for _, g := range genres {
		r.writePlain("  %-10s %-10s %s\n", g.Path, g.Title, g.Color)
	}
	return nil
}

// List walks a genre listing the way the sentinel would and writes the loaded rows in the requested format.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	genre := cmd.StringArg("genre")
	if genre == "" {
		return fmt.Errorf("%w: genre is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	maxPages := cmd.Int("pages")
	if maxPages < 0 {
		return fmt.Errorf("%w: --pages cannot be negative", shared.ErrInvalidFlag)
	}

	var rec pager.Recorder
	if cmd.Bool("save") {
		repo, err := r.repository()
		if err != nil {
			return err
		}
		rec = repo
	}

	info, ok := catalog.Lookup(genre)
	if !ok {
		r.logger.Warn("genre not in catalog", "genre", genre)
		info.Path = genre
	}

	ctrl := pager.New(r.source, r.pagerOpts(rec))
	pages, loaded := 0, 0
	err = ctrl.Walk(ctx, genre, maxPages, func(st pager.State) {
		if len(st.Results) > loaded {
			pages++
		}
		loaded = len(st.Results)
		r.logger.Debug("page loaded", "genre", genre, "page", st.Page, "results", len(st.Results), "has_more", st.HasMore)
	})
	if err != nil {
		return fmt.Errorf("listing interrupted: %w", err)
	}

	st := ctrl.State()
	listing := &formatter.Listing{Genre: info, Pages: pages, Exhausted: !st.HasMore, Lyrics: st.Results}
	r.logger.Info("listing loaded", "genre", genre, "pages", pages, "lyrics", len(st.Results), "exhausted", listing.Exhausted)

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(listing, format, r.config.Site.BaseURL, path)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d lyrics to %s\n", len(listing.Lyrics), written)
	}

	data, err := formatter.Export(listing, format, r.config.Site.BaseURL)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Search ranks cached lyrics and remote hits for the query given as arguments.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if shared.NormalizeQuery(query) == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	var cache search.Cache
	if repo, err := r.repository(); err != nil {
		r.logger.Warn("lyric cache unavailable, searching remote only", "err", err)
	} else {
		cache = repo
	}

	finder := search.NewFinder(cache, r.searcher, r.logger)
	results, err := finder.Find(ctx, query, nil, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results) == 0 {
		return r.writePlain("No matches for %q\n", query)
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q (%d)", query, len(results)))
	for i, res := range results {
		r.writePlain("%2d. %s (%s)\n", i+1, res.Lyric.Title, res.Route())
	}
	return nil
}

// Open opens /{genre}/{slug} on the configured site.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	genre, slug := cmd.StringArg("genre"), cmd.StringArg("slug")
	if genre == "" || slug == "" {
		return fmt.Errorf("%w: genre and slug are required", shared.ErrMissingArgument)
	}

	lyric := models.Lyric{Slug: slug}
	if err := lyric.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	target, err := shared.RouteURL(r.config.Site.BaseURL, lyric.Route(genre))
	if err != nil {
		return err
	}

	r.logger.Info("opening detail page", "url", target)
	if err := r.open(target); err != nil {
		return err
	}
	return r.writePlain("✓ Opened %s\n", target)
}
