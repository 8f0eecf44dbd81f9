package pager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

func newTestController(src *tu.ScriptedSource, opts Options) *Controller {
	opts.Logger = shared.NewLogger(io.Discard)
	return New(src, opts)
}

type pageRecorder struct {
	pages []int
	err   error
}

func (r *pageRecorder) RecordPage(genre string, page int, lyrics []models.Lyric) error {
	r.pages = append(r.pages, page)
	return r.err
}

func TestInitialize(t *testing.T) {
	for _, genre := range []string{"nasheed", "naat", "unknown-genre", ""} {
		t.Run(fmt.Sprintf("genre %q", genre), func(t *testing.T) {
			c := newTestController(&tu.ScriptedSource{}, Options{})
			req := c.Dispatch(Initialize{Genre: genre})

			st := c.State()
			if len(st.Results) != 0 {
				t.Errorf("expected empty results, got %d", len(st.Results))
			}
			if st.Page != 0 {
				t.Errorf("expected page 0, got %d", st.Page)
			}
			if !st.Loading {
				t.Error("expected loading to be true")
			}
			if !st.HasMore {
				t.Error("expected more-data to be true")
			}
			if st.Phase() != Loading {
				t.Errorf("expected phase loading, got %s", st.Phase())
			}
			if req == nil || req.Page != 0 || req.Genre != genre || req.Size != 30 {
				t.Errorf("expected request for page 0 of size 30, got %+v", req)
			}
		})
	}

	t.Run("resets an existing session", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
			"nasheed": {tu.MakeLyrics("Nasheed", "n", 2)},
		}}
		c := newTestController(src, Options{})
		c.Dispatch(c.Fetch(context.Background(), *c.Dispatch(Initialize{Genre: "nasheed"})))
		first := c.State().Session

		c.Dispatch(Initialize{Genre: "naat"})
		st := c.State()
		if len(st.Results) != 0 || st.Page != 0 || !st.Loading || !st.HasMore {
			t.Errorf("expected fresh state, got %+v", st)
		}
		if st.Session == first {
			t.Error("expected a new session id")
		}
	})
}

func TestSelect(t *testing.T) {
	c := newTestController(&tu.ScriptedSource{}, Options{})

	if req := c.Select("nasheed"); req == nil {
		t.Fatal("expected request for first genre")
	}
	if req := c.Select("nasheed"); req != nil {
		t.Error("selecting the current genre should not start a new session")
	}
	if req := c.Select("naat"); req == nil || req.Genre != "naat" {
		t.Errorf("expected request for naat, got %+v", req)
	}
}

func TestAccumulation(t *testing.T) {
	src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
		"nasheed": {
			{{Slug: "A"}, {Slug: "B"}},
			{{Slug: "C"}, {Slug: "D"}},
			{{Slug: "B"}, {Slug: "E"}},
		},
	}}
	c := newTestController(src, Options{})
	ctx := context.Background()

	req := c.Dispatch(Initialize{Genre: "nasheed"})
	c.Dispatch(c.Fetch(ctx, *req))
	tu.AssertSlugs(t, c.State().Results, []string{"A", "B"})

	req = c.Dispatch(Advance{})
	c.Dispatch(c.Fetch(ctx, *req))
	tu.AssertSlugs(t, c.State().Results, []string{"A", "B", "C", "D"})

	req = c.Dispatch(Advance{})
	c.Dispatch(c.Fetch(ctx, *req))
	tu.AssertSlugs(t, c.State().Results, []string{"A", "B", "C", "D", "B", "E"})
}

func TestFailureIsTerminal(t *testing.T) {
	src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
		"nasheed": {tu.MakeLyrics("Nasheed", "p0", 30), tu.MakeLyrics("Nasheed", "p1", 30)},
	}}
	c := newTestController(src, Options{})
	ctx := context.Background()

	req := c.Dispatch(Initialize{Genre: "nasheed"})
	for req != nil {
		c.Dispatch(c.Fetch(ctx, *req))
		req = c.Dispatch(Advance{})
	}

	st := c.State()
	if st.HasMore {
		t.Error("expected more-data to be false after 404")
	}
	if st.Loading {
		t.Error("expected loading to be false after failure")
	}
	if len(st.Results) != 60 {
		t.Errorf("expected results from pages 0-1 to be kept, got %d", len(st.Results))
	}
	if st.Page != 2 {
		t.Errorf("expected page index 2, got %d", st.Page)
	}
	if st.Phase() != Exhausted {
		t.Errorf("expected exhausted phase, got %s", st.Phase())
	}

	for i := 0; i < 3; i++ {
		if req := c.Dispatch(Advance{}); req != nil {
			t.Fatalf("advance after exhaustion should be a no-op, got %+v", req)
		}
	}
	if c.State().Page != 2 {
		t.Errorf("page index should not change, got %d", c.State().Page)
	}

	calls := src.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 requests, got %d: %+v", len(calls), calls)
	}
	for i, call := range calls {
		if call.Page != i {
			t.Errorf("request %d: expected page %d, got %d", i, i, call.Page)
		}
	}
}

func TestFailureKinds(t *testing.T) {
	tc := []struct {
		name string
		err  error
	}{
		{name: "not found", err: fmt.Errorf("%w: status %d", shared.ErrSourceExhausted, http.StatusNotFound)},
		{name: "server error", err: fmt.Errorf("%w: status %d", shared.ErrSourceExhausted, http.StatusInternalServerError)},
		{name: "transport", err: fmt.Errorf("%w: connection reset", shared.ErrAPIRequest)},
		{name: "malformed payload", err: fmt.Errorf("%w: unexpected EOF", shared.ErrInvalidPayload)},
		{name: "timeout", err: context.DeadlineExceeded},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			src := &tu.ScriptedSource{Failures: map[int]error{0: tt.err}}
			c := newTestController(src, Options{})

			req := c.Dispatch(Initialize{Genre: "naat"})
			c.Dispatch(c.Fetch(context.Background(), *req))

			if c.HasMore() || c.Loading() {
				t.Errorf("expected exhausted idle state, got loading=%v more=%v", c.Loading(), c.HasMore())
			}
		})
	}
}

func TestAdvanceWhileLoading(t *testing.T) {
	src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
		"nasheed": {tu.MakeLyrics("Nasheed", "n", 30)},
	}}
	c := newTestController(src, Options{})

	req := c.Dispatch(Initialize{Genre: "nasheed"})
	for i := 0; i < 5; i++ {
		if dup := c.Dispatch(Advance{}); dup != nil {
			t.Fatalf("advance while loading must be a no-op, got %+v", dup)
		}
	}
	if c.State().Page != 0 {
		t.Errorf("expected page 0, got %d", c.State().Page)
	}

	t.Run("also when more-data is false", func(t *testing.T) {
		c.Dispatch(PageFailed{Seq: req.Seq, Page: 0, Err: errors.New("boom")})
		c.state.Loading = true
		if dup := c.Dispatch(Advance{}); dup != nil {
			t.Errorf("expected no-op, got %+v", dup)
		}
	})
}

func TestAdvanceWithoutSession(t *testing.T) {
	c := newTestController(&tu.ScriptedSource{}, Options{})
	if req := c.Dispatch(Advance{}); req != nil {
		t.Errorf("expected no request before Initialize, got %+v", req)
	}
}

func TestNasheedScenario(t *testing.T) {
	src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
		"nasheed": {tu.MakeLyrics("Nasheed", "p0", 30), tu.MakeLyrics("Nasheed", "p1", 30)},
	}}
	c := newTestController(src, Options{})
	s := NewSentinel(c, 0)
	ctx := context.Background()

	req := c.Dispatch(Initialize{Genre: "nasheed"})
	c.Dispatch(c.Fetch(ctx, *req))

	st := c.State()
	if st.Loading || !st.HasMore || len(st.Results) != 30 {
		t.Fatalf("unexpected state after first page: loading=%v more=%v len=%d", st.Loading, st.HasMore, len(st.Results))
	}

	s.Attach()
	if next := s.Check(Bounds{Top: 0, Bottom: 10}); next != nil {
		t.Fatalf("last row is not visible yet, got %+v", next)
	}

	next := s.Check(Bounds{Top: 20, Bottom: 30})
	if next == nil {
		t.Fatal("expected the sentinel to advance when the last row became visible")
	}
	if next.Page != 1 || c.State().Page != 1 {
		t.Errorf("expected page 1, got request %d state %d", next.Page, c.State().Page)
	}

	c.Dispatch(c.Fetch(ctx, *next))
	calls := src.Calls()
	if len(calls) != 2 || calls[1].Page != 1 || calls[1].Genre != "nasheed" {
		t.Errorf("expected second fetch for nasheed page 1, got %+v", calls)
	}
}

func TestStaleResponsesAreDropped(t *testing.T) {
	c := newTestController(&tu.ScriptedSource{}, Options{})

	old := c.Dispatch(Initialize{Genre: "nasheed"})
	current := c.Dispatch(Initialize{Genre: "naat"})

	c.Dispatch(PageLoaded{Seq: old.Seq, Page: 0, Lyrics: tu.MakeLyrics("Nasheed", "n", 3)})
	if c.Len() != 0 || !c.Loading() {
		t.Fatalf("stale page must not be applied, len=%d loading=%v", c.Len(), c.Loading())
	}

	c.Dispatch(PageFailed{Seq: old.Seq, Page: 0, Err: errors.New("late failure")})
	if !c.HasMore() {
		t.Fatal("stale failure must not exhaust the new session")
	}

	c.Dispatch(PageLoaded{Seq: current.Seq, Page: 0, Lyrics: tu.MakeLyrics("Naat", "a", 2)})
	tu.AssertSlugs(t, c.State().Results, []string{"a-0", "a-1"})

	c.Dispatch(PageLoaded{Seq: current.Seq, Page: 0, Lyrics: tu.MakeLyrics("Naat", "dup", 2)})
	if c.Len() != 2 {
		t.Errorf("a duplicate response for a settled page must be ignored, got %d results", c.Len())
	}
}

func TestEmptyPage(t *testing.T) {
	pages := map[string][][]models.Lyric{
		"hamd": {tu.MakeLyrics("Hamd", "h", 3), {}},
	}

	t.Run("continues when not exhausting on empty", func(t *testing.T) {
		c := newTestController(&tu.ScriptedSource{Pages: pages}, Options{})
		c.Dispatch(c.Fetch(context.Background(), *c.Dispatch(Initialize{Genre: "hamd"})))
		c.Dispatch(c.Fetch(context.Background(), *c.Dispatch(Advance{})))

		if !c.HasMore() || c.Loading() {
			t.Errorf("expected idle with more-data, got loading=%v more=%v", c.Loading(), c.HasMore())
		}
		if c.Len() != 3 {
			t.Errorf("expected 3 results, got %d", c.Len())
		}
	})

	t.Run("exhausts when configured", func(t *testing.T) {
		c := newTestController(&tu.ScriptedSource{Pages: pages}, Options{ExhaustOnEmpty: true})
		c.Dispatch(c.Fetch(context.Background(), *c.Dispatch(Initialize{Genre: "hamd"})))
		c.Dispatch(c.Fetch(context.Background(), *c.Dispatch(Advance{})))

		if c.HasMore() {
			t.Error("expected more-data to be false after empty page")
		}
		if req := c.Dispatch(Advance{}); req != nil {
			t.Errorf("expected no further requests, got %+v", req)
		}
	})
}

func TestRecorder(t *testing.T) {
	src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
		"salaam": {tu.MakeLyrics("Salaam", "s", 2), tu.MakeLyrics("Salaam", "t", 2)},
	}}
	rec := &pageRecorder{err: errors.New("disk full")}
	c := newTestController(src, Options{Recorder: rec})

	if err := c.Walk(context.Background(), "salaam", 0, nil); err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if len(rec.pages) != 2 || rec.pages[0] != 0 || rec.pages[1] != 1 {
		t.Errorf("expected pages [0 1] recorded, got %v", rec.pages)
	}
	if c.Len() != 4 {
		t.Errorf("recorder errors must not affect results, got %d", c.Len())
	}
}

func TestStateIsACopy(t *testing.T) {
	c := newTestController(&tu.ScriptedSource{}, Options{})
	req := c.Dispatch(Initialize{Genre: "naat"})
	c.Dispatch(PageLoaded{Seq: req.Seq, Page: 0, Lyrics: []models.Lyric{{Slug: "a"}}})

	st := c.State()
	st.Results[0].Slug = "mutated"
	if c.State().Results[0].Slug != "a" {
		t.Error("mutating a snapshot must not change the controller")
	}
}
