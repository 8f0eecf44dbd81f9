package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/time/rate"
)

// WarmOpts contains configuration for a cache warm run.
type WarmOpts struct {
	NumWorkers     int     // Concurrent genre sessions (default: 3, max: 8)
	RateLimit      float64 // Page requests per second across all workers (default: 4)
	MaxPages       int     // Pages per genre, 0 for all
	PageSize       int
	ExhaustOnEmpty bool
}

// GenreResult is the outcome of warming one genre.
type GenreResult struct {
	Genre   string
	Lyrics  int
	Pages   int
	Success bool
	Error   error
}

// WarmResult summarizes a warm run.
type WarmResult struct {
	TotalGenres int
	Succeeded   int
	Failed      int
	Lyrics      int
	Results     []GenreResult
}

// Warmer walks whole genre listings into the lyric cache.
type Warmer struct {
	source   services.LyricSource
	recorder pager.Recorder
	logger   *log.Logger
}

// NewWarmer creates a Warmer that records every page through recorder.
func NewWarmer(source services.LyricSource, recorder pager.Recorder, logger *log.Logger) *Warmer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Warmer{source: source, recorder: &lockedRecorder{r: recorder}, logger: logger}
}

// Run walks each genre with its own pagination session using a worker pool.
//
// A source failure ends a genre the same way exhaustion does; only a canceled context marks it as failed.
func (w *Warmer) Run(ctx context.Context, genres []string, opts WarmOpts, prog chan<- ProgressUpdate) (*WarmResult, error) {
	if w.source == nil {
		return nil, fmt.Errorf("%w: lyric source not initialized", shared.ErrServiceUnavailable)
	}
	if len(genres) == 0 {
		return nil, fmt.Errorf("%w: no genres to warm", shared.ErrMissingArgument)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 4.0
	}

	source := &throttledSource{next: w.source, limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1)}

	jobs := make(chan string, len(genres))
	results := make(chan GenreResult, len(genres))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go w.worker(ctx, &wg, source, jobs, results, opts, prog)
	}

	sendProgress(prog, warmStartUpdate(len(genres)))
	for _, g := range genres {
		jobs <- g
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &WarmResult{TotalGenres: len(genres), Results: make([]GenreResult, 0, len(genres))}
	completed := 0
	for res := range results {
		completed++
		summary.Results = append(summary.Results, res)
		summary.Lyrics += res.Lyrics
		if res.Success {
			summary.Succeeded++
			sendProgress(prog, genreDoneUpdate(completed, len(genres), res.Genre, res.Lyrics))
		} else {
			summary.Failed++
			sendProgress(prog, genreFailedUpdate(completed, len(genres), res.Genre, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (w *Warmer) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	source services.LyricSource,
	jobs <-chan string,
	results chan<- GenreResult,
	opts WarmOpts,
	prog chan<- ProgressUpdate,
) {
	defer wg.Done()

	for genre := range jobs {
		if ctx.Err() != nil {
			results <- GenreResult{Genre: genre, Error: ctx.Err()}
			continue
		}
		results <- w.warmGenre(ctx, source, genre, opts, prog)
	}
}

func (w *Warmer) warmGenre(ctx context.Context, source services.LyricSource, genre string, opts WarmOpts, prog chan<- ProgressUpdate) GenreResult {
	logger := shared.WithLogger(w.logger, "genre", genre)
	ctrl := pager.New(source, pager.Options{
		PageSize:       opts.PageSize,
		ExhaustOnEmpty: opts.ExhaustOnEmpty,
		Recorder:       w.recorder,
		Logger:         logger,
	})

	res := GenreResult{Genre: genre}
	err := ctrl.Walk(ctx, genre, opts.MaxPages, func(st pager.State) {
		if added := len(st.Results) - res.Lyrics; added > 0 {
			res.Pages++
			sendProgress(prog, pageFetchedUpdate(genre, st.Page, added))
		}
		res.Lyrics = len(st.Results)
	})
	if err != nil {
		logger.Warn("warm interrupted", "err", err)
		res.Error = err
		return res
	}

	logger.Info("genre warmed", "lyrics", res.Lyrics, "pages", res.Pages)
	res.Success = true
	return res
}

// throttledSource shares one limiter across every worker's session.
type throttledSource struct {
	next    services.LyricSource
	limiter *rate.Limiter
}

func (t *throttledSource) FetchPage(ctx context.Context, genre string, page, size int) (*models.LyricPage, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.next.FetchPage(ctx, genre, page, size)
}

// lockedRecorder serializes cache writes from concurrent sessions.
type lockedRecorder struct {
	mu sync.Mutex
	r  pager.Recorder
}

func (l *lockedRecorder) RecordPage(genre string, page int, lyrics []models.Lyric) error {
	if l.r == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.RecordPage(genre, page, lyrics)
}
