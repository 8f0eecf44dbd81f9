package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/lyrx/internal/catalog"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Warm walks every named genre, or the whole catalog, into the lyric cache.
func (r *Runner) Warm(ctx context.Context, cmd *cli.Command) error {
	genres := cmd.Args().Slice()
	if len(genres) == 0 {
		genres = catalog.Paths()
	}

	maxPages := cmd.Int("max-pages")
	if maxPages < 0 {
		return fmt.Errorf("%w: --max-pages cannot be negative", shared.ErrInvalidFlag)
	}

	rateLimit := cmd.Float("rate")
	if rateLimit <= 0 {
		rateLimit = r.config.Source.RateLimit
	}

	repo, err := r.repository()
	if err != nil {
		return err
	}

	r.logger.Info("starting warm", "genres", len(genres), "workers", cmd.Int("workers"), "max_pages", maxPages)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.WarmStart:
				r.writePlain("📥 %s\n\n", update.Message)
			case tasks.PageFetched:
				r.logger.Debug(update.Message)
			case tasks.GenreDone, tasks.GenreFailed:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()

	warmer := tasks.NewWarmer(r.source, repo, r.logger)
	result, err := warmer.Run(ctx, genres, tasks.WarmOpts{
		NumWorkers:     cmd.Int("workers"),
		RateLimit:      rateLimit,
		MaxPages:       maxPages,
		PageSize:       r.config.Source.PageSize,
		ExhaustOnEmpty: r.config.Source.ExhaustOnEmpty,
	}, progressCh)
	close(progressCh)
	wg.Wait()

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Warm Complete!")
	r.writePlain("Genres: %d/%d\n", result.Succeeded, result.TotalGenres)
	r.writePlain("Lyrics cached: %d\n", result.Lyrics)

	if result.Failed > 0 {
		r.writePlain("\nFailed to warm %d genres:\n", result.Failed)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.Genre, res.Error)
			}
		}
	}

	return nil
}
