package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/time/rate"
)

var (
	_ LyricSource = (*LyricService)(nil)
	_ Searcher    = (*LyricService)(nil)
)

// lyricEnvelope is the response body of the list and search endpoints.
type lyricEnvelope struct {
	Data []models.Lyric `json:"data"`
}

// LyricService implements [LyricSource] over the lyric API's /lyrics endpoints.
type LyricService struct {
	api     *APIService
	limiter *rate.Limiter
	logger  *log.Logger
}

// LyricServiceOpts configures a [LyricService].
type LyricServiceOpts struct {
	RateLimit float64 // Requests per second; 0 disables throttling
	Logger    *log.Logger
}

// NewLyricService creates a lyric source backed by api.
func NewLyricService(api *APIService, opts LyricServiceOpts) *LyricService {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	svc := &LyricService{api: api, logger: opts.Logger}
	if opts.RateLimit > 0 {
		svc.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return svc
}

// FetchPage performs GET /lyrics/{genre}?page={n}&size={size}.
//
// The request is issued exactly once; retries are the caller's decision.
func (s *LyricService) FetchPage(ctx context.Context, genre string, page, size int) (*models.LyricPage, error) {
	if genre == "" {
		return nil, fmt.Errorf("%w: genre is required", shared.ErrMissingArgument)
	}
	if page < 0 {
		return nil, fmt.Errorf("%w: page %d", shared.ErrInvalidArgument, page)
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	resp, err := s.api.Get(ctx, "/lyrics/"+url.PathEscape(genre), query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		s.logger.Debug("lyric source refused page", "genre", genre, "page", page, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", shared.ErrSourceExhausted, resp.StatusCode)
	}

	var env lyricEnvelope
	if err := resp.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}

	return &models.LyricPage{Genre: genre, Page: page, Size: size, Lyrics: env.Data}, nil
}

// Search performs GET /lyrics/search?q={query}&size={limit}.
func (s *LyricService) Search(ctx context.Context, query string, limit int) ([]models.Lyric, error) {
	query = shared.NormalizeQuery(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("size", strconv.Itoa(limit))
	}

	resp, err := s.api.Get(ctx, "/lyrics/search", params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: search returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var env lyricEnvelope
	if err := resp.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}

	if limit > 0 && len(env.Data) > limit {
		env.Data = env.Data[:limit]
	}
	return env.Data, nil
}

func (s *LyricService) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
	}
	return nil
}
