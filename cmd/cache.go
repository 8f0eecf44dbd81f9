package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheStats prints cached lyric and page totals per genre.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	counts, err := repo.Counts()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(counts, true)
	}

	if len(counts) == 0 {
		return r.writePlain("Lyric cache is empty. Run 'lyrx warm' or 'lyrx list --save' to fill it.\n")
	}

	total := 0
	r.writePlainHeader("Lyric Cache")
	for _, c := range counts {
		total += c.Count
		r.writePlain("  %-10s %5d lyrics  %3d pages\n", c.Genre, c.Count, c.Pages)
	}
	r.writePlain("\nTotal: %d lyrics in %d genres\n", total, len(counts))
	return nil
}

// CacheShow prints the cached lyrics of a genre in listing order.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	genre := cmd.StringArg("genre")
	if genre == "" {
		return fmt.Errorf("%w: genre is required", shared.ErrMissingArgument)
	}

	repo, err := r.repository()
	if err != nil {
		return err
	}

	lyrics, err := repo.ListByGenre(genre, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if len(lyrics) == 0 {
		return r.writePlain("No cached lyrics for %s\n", genre)
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d cached)", genre, len(lyrics)))
	for _, l := range lyrics {
		r.writePlain("  p%-3d %s (%s)\n", l.Page, l.Title, l.Route())
	}
	return nil
}

// CacheClear removes cached lyrics for one genre or for all of them.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	genre := cmd.String("genre")
	removed, err := repo.Clear(genre)
	if err != nil {
		return err
	}

	if genre == "" {
		genre = "all genres"
	}
	r.logger.Info("lyric cache cleared", "genre", genre, "removed", removed)
	return r.writePlain("✓ Removed %d cached lyrics from %s\n", removed, genre)
}
