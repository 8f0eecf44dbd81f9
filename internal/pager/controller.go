package pager

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Recorder receives every page appended to a session, e.g. to cache it.
type Recorder interface {
	RecordPage(genre string, page int, lyrics []models.Lyric) error
}

// Options configures a [Controller].
type Options struct {
	PageSize       int  // Defaults to [services.DefaultPageSize]
	ExhaustOnEmpty bool // Treat a successful empty page as the end of the listing
	Recorder       Recorder
	Logger         *log.Logger
}

// Controller owns the pagination state of one rendered listing.
//
// It is not safe for concurrent use: all events must be dispatched from the same goroutine.
// [Controller.Fetch] is the exception and may run anywhere.
type Controller struct {
	source services.LyricSource
	opts   Options
	logger *log.Logger
	state  State
	seq    uint64
}

// New creates a controller reading from source. It holds no session until [Initialize] is dispatched.
func New(source services.LyricSource, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = services.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Controller{source: source, opts: opts, logger: opts.Logger}
}

// Dispatch applies ev and returns the fetch the caller must run, or nil.
func (c *Controller) Dispatch(ev Event) *Request {
	switch ev := ev.(type) {
	case Initialize:
		return c.initialize(ev.Genre)
	case Advance:
		return c.advance()
	case PageLoaded:
		c.pageLoaded(ev)
	case PageFailed:
		c.pageFailed(ev)
	}
	return nil
}

// Select initializes a session for genre unless it is already the current one.
func (c *Controller) Select(genre string) *Request {
	if c.state.Session != "" && c.state.Genre == genre {
		return nil
	}
	return c.Dispatch(Initialize{Genre: genre})
}

// Fetch runs req against the lyric source and returns the event describing the outcome.
//
// The source is called exactly once; there are no retries.
func (c *Controller) Fetch(ctx context.Context, req Request) Event {
	page, err := c.source.FetchPage(ctx, req.Genre, req.Page, req.Size)
	if err != nil {
		return PageFailed{Seq: req.Seq, Page: req.Page, Err: err}
	}
	if page == nil {
		return PageLoaded{Seq: req.Seq, Page: req.Page}
	}
	return PageLoaded{Seq: req.Seq, Page: req.Page, Lyrics: page.Lyrics}
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	return c.state.clone()
}

// Loading reports whether a page request is in flight.
func (c *Controller) Loading() bool { return c.state.Loading }

// HasMore reports whether further pages may be requested.
func (c *Controller) HasMore() bool { return c.state.HasMore }

// Genre returns the genre of the current session.
func (c *Controller) Genre() string { return c.state.Genre }

// Len returns the number of accumulated results.
func (c *Controller) Len() int { return len(c.state.Results) }

func (c *Controller) initialize(genre string) *Request {
	c.seq++
	c.state = State{
		Genre:   genre,
		Session: shared.GenerateID(),
		Seq:     c.seq,
		Results: []models.Lyric{},
		Page:    0,
		Loading: true,
		HasMore: true,
	}
	c.logger.Debug("pagination session started", "genre", genre, "session", c.state.Session)
	return c.request()
}

func (c *Controller) advance() *Request {
	if c.state.Session == "" || c.state.Loading || !c.state.HasMore {
		return nil
	}
	c.state.Page++
	c.state.Loading = true
	return c.request()
}

func (c *Controller) request() *Request {
	return &Request{
		Seq:   c.state.Seq,
		Genre: c.state.Genre,
		Page:  c.state.Page,
		Size:  c.opts.PageSize,
	}
}

// accepts reports whether a response belongs to the request currently in flight.
func (c *Controller) accepts(seq uint64, page int) bool {
	if seq != c.state.Seq {
		c.logger.Debug("dropping response from stale session", "genre", c.state.Genre, "seq", seq, "current", c.state.Seq)
		return false
	}
	if !c.state.Loading || page != c.state.Page {
		c.logger.Debug("dropping unexpected page", "genre", c.state.Genre, "page", page, "current", c.state.Page)
		return false
	}
	return true
}

func (c *Controller) pageLoaded(ev PageLoaded) {
	if !c.accepts(ev.Seq, ev.Page) {
		return
	}

	c.state.Results = append(c.state.Results, ev.Lyrics...)
	c.state.Loading = false

	if len(ev.Lyrics) == 0 && c.opts.ExhaustOnEmpty {
		c.state.HasMore = false
	}

	c.logger.Debug("page loaded", "genre", c.state.Genre, "page", ev.Page, "count", len(ev.Lyrics), "total", len(c.state.Results))

	if c.opts.Recorder != nil && len(ev.Lyrics) > 0 {
		if err := c.opts.Recorder.RecordPage(c.state.Genre, ev.Page, ev.Lyrics); err != nil {
			c.logger.Warn("failed to record page", "genre", c.state.Genre, "page", ev.Page, "err", err)
		}
	}
}

func (c *Controller) pageFailed(ev PageFailed) {
	if !c.accepts(ev.Seq, ev.Page) {
		return
	}

	c.state.Loading = false
	c.state.HasMore = false

	if errors.Is(ev.Err, shared.ErrSourceExhausted) {
		c.logger.Debug("listing exhausted", "genre", c.state.Genre, "page", ev.Page, "err", ev.Err)
	} else {
		c.logger.Warn("page request failed, stopping listing", "genre", c.state.Genre, "page", ev.Page, "err", ev.Err)
	}
}
