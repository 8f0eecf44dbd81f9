package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/shared"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

var testGenres = []models.GenreInfo{
	{Path: "nasheed", Title: "Nasheeds", Color: "#1f7a5c"},
	{Path: "naat", Title: "Naats", Color: "#2b5797"},
}

type fakeCache map[string]models.CachedLyric

func (f fakeCache) Get(genre, slug string) (*models.CachedLyric, error) {
	l, ok := f[genre+"/"+slug]
	if !ok {
		return nil, shared.ErrLyricNotFound
	}
	return &l, nil
}

func newTestApp(t *testing.T, src *tu.ScriptedSource, cache Cache) *App {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	app, err := NewApp(AppOpts{
		Source:     src,
		Pager:      pager.Options{PageSize: 2},
		Cache:      cache,
		Finder:     search.NewFinder(nil, nil, logger),
		Genres:     testGenres,
		SiteURL:    "https://midhah.com",
		RootMargin: 20,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func testPages() map[string][][]models.Lyric {
	return map[string][][]models.Lyric{
		"nasheed": {tu.MakeLyrics("nasheed", "tala", 2), tu.MakeLyrics("nasheed", "burda", 1)},
		"naat":    {tu.MakeLyrics("naat", "mustafa", 2)},
	}
}

// client keeps the session cookie between requests.
type client struct {
	t      *testing.T
	h      http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, target string) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func TestApp(t *testing.T) {
	t.Run("Index", func(t *testing.T) {
		app := newTestApp(t, &tu.ScriptedSource{}, nil)
		c := &client{t: t, h: app.Router()}

		rec := c.do(http.MethodGet, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `href="/nasheed"`) || !strings.Contains(body, "Naats") {
			t.Errorf("index missing genres:\n%s", body)
		}
	})

	t.Run("Listing And More", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: testPages()}
		app := newTestApp(t, src, nil)
		c := &client{t: t, h: app.Router()}

		rec := c.do(http.MethodGet, "/nasheed")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{"Nasheeds", "background-color: #1f7a5c", `href="/nasheed/tala-0"`, "TALA 1", "NASHEED", "data-sentinel", "20px"} {
			if !strings.Contains(body, want) {
				t.Errorf("listing missing %q", want)
			}
		}
		if n := strings.Count(body, `<li class="lyric" data-sentinel>`); n != 1 {
			t.Errorf("expected exactly one sentinel row, got %d", n)
		}
		if c.cookie == nil {
			t.Fatal("expected session cookie")
		}

		rec = c.do(http.MethodPost, "/nasheed/more")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get(hasMoreHeader) != "true" {
			t.Errorf("expected more data, got %q", rec.Header().Get(hasMoreHeader))
		}
		body = rec.Body.String()
		if !strings.Contains(body, `href="/nasheed/burda-0"`) || strings.Contains(body, "tala-0") {
			t.Errorf("expected only the new row, got:\n%s", body)
		}

		rec = c.do(http.MethodPost, "/nasheed/more")
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204 after the source ran out, got %d", rec.Code)
		}
		if rec.Header().Get(hasMoreHeader) != "false" {
			t.Errorf("expected exhausted listing, got %q", rec.Header().Get(hasMoreHeader))
		}

		rec = c.do(http.MethodPost, "/nasheed/more")
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204 once exhausted, got %d", rec.Code)
		}
		if calls := src.Calls(); len(calls) != 3 {
			t.Errorf("expected 3 source calls, got %d", len(calls))
		}
	})

	t.Run("Row Preview", func(t *testing.T) {
		app := newTestApp(t, &tu.ScriptedSource{Pages: testPages()}, nil)
		c := &client{t: t, h: app.Router()}

		rec := c.do(http.MethodGet, "/naat")
		if !strings.Contains(rec.Body.String(), `<span class="preview">first verse of mustafa 0</span>`) {
			t.Errorf("listing row missing preview:\n%s", rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), ".lyric:hover .preview") {
			t.Error("expected preview to be revealed on hover")
		}

		c.do(http.MethodGet, "/nasheed")
		rec = c.do(http.MethodPost, "/nasheed/more")
		if !strings.Contains(rec.Body.String(), `<span class="preview">first verse of burda 0</span>`) {
			t.Errorf("appended row missing preview:\n%s", rec.Body.String())
		}
	})

	t.Run("Empty Page Keeps Listing Open", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{
			"hamd": {tu.MakeLyrics("hamd", "h", 2), {}, tu.MakeLyrics("hamd", "late", 1)},
		}}
		app := newTestApp(t, src, nil)
		c := &client{t: t, h: app.Router()}

		body := c.do(http.MethodGet, "/hamd").Body.String()
		if !strings.Contains(body, `list.querySelectorAll("[data-sentinel]").forEach`) {
			t.Error("expected the script to clear the sentinel after every answer")
		}

		rec := c.do(http.MethodPost, "/hamd/more")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 for an empty page, got %d", rec.Code)
		}
		if rec.Header().Get(hasMoreHeader) != "true" {
			t.Errorf("expected listing to stay open, got %q", rec.Header().Get(hasMoreHeader))
		}
		if strings.Contains(rec.Body.String(), "data-sentinel") {
			t.Error("expected no sentinel in an empty answer")
		}

		rec = c.do(http.MethodPost, "/hamd/more")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "late-0") {
			t.Errorf("expected the next page after an explicit request, got %d", rec.Code)
		}
		if calls := src.Calls(); len(calls) != 3 {
			t.Errorf("expected 3 source calls, got %d", len(calls))
		}
	})

	t.Run("More Switches Genre", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: testPages()}
		app := newTestApp(t, src, nil)
		c := &client{t: t, h: app.Router()}

		c.do(http.MethodGet, "/nasheed")
		rec := c.do(http.MethodPost, "/naat/more")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "mustafa-0") {
			t.Errorf("expected first naat page, got:\n%s", rec.Body.String())
		}

		calls := src.Calls()
		last := calls[len(calls)-1]
		if last.Genre != "naat" || last.Page != 0 {
			t.Errorf("expected naat page 0 request, got %+v", last)
		}
	})

	t.Run("Unknown Genre", func(t *testing.T) {
		app := newTestApp(t, &tu.ScriptedSource{}, nil)
		c := &client{t: t, h: app.Router()}

		rec := c.do(http.MethodGet, "/unknown")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `<h1 class="genre-header" style="background-color: "></h1>`) {
			t.Errorf("expected blank header, got:\n%s", body)
		}
		if !strings.Contains(body, "No lyrics found") {
			t.Error("expected empty listing message")
		}
		if rec.Header().Get(hasMoreHeader) != "false" {
			t.Error("expected failed first page to end the listing")
		}
	})

	t.Run("Detail", func(t *testing.T) {
		cache := fakeCache{
			"naat/mustafa-jaan": {
				Lyric:        models.Lyric{Slug: "mustafa-jaan", Title: "Mustafa Jaan-e-Rehmat", Genre: "Naat", Preview: "Mustafa jaan-e-rehmat pe lakhon salaam"},
				ListingGenre: "naat",
			},
		}
		app := newTestApp(t, &tu.ScriptedSource{Pages: testPages()}, cache)
		c := &client{t: t, h: app.Router()}

		rec := c.do(http.MethodGet, "/naat/mustafa-jaan")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Mustafa Jaan-e-Rehmat") || !strings.Contains(body, "https://midhah.com/naat/mustafa-jaan") {
			t.Errorf("detail missing title or site link:\n%s", body)
		}

		c.do(http.MethodGet, "/nasheed")
		rec = c.do(http.MethodGet, "/nasheed/tala-1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected loaded row to be served, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "TALA 1") {
			t.Error("expected loaded row title")
		}

		rec = c.do(http.MethodGet, "/nasheed/missing")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Search", func(t *testing.T) {
		app := newTestApp(t, &tu.ScriptedSource{Pages: testPages()}, nil)
		c := &client{t: t, h: app.Router()}

		c.do(http.MethodGet, "/nasheed")
		rec := c.do(http.MethodGet, "/search?q=tala")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `href="/nasheed/tala-0"`) {
			t.Errorf("expected loaded row in results:\n%s", body)
		}

		rec = c.do(http.MethodGet, "/search?q=zzz")
		if !strings.Contains(rec.Body.String(), "No matches") {
			t.Error("expected no matches message")
		}

		rec = c.do(http.MethodGet, "/search")
		if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "No matches") {
			t.Errorf("expected empty search form, got %d", rec.Code)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		app := newTestApp(t, &tu.ScriptedSource{}, nil)
		rec := httptest.NewRecorder()
		app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/nasheed", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Missing Source", func(t *testing.T) {
		if _, err := NewApp(AppOpts{}); err == nil {
			t.Error("expected error without a lyric source")
		}
	})
}

func TestSessionStore(t *testing.T) {
	now := time.Now()
	store := newSessionStore(time.Minute)
	store.now = func() time.Time { return now }
	newCtrl := func() *pager.Controller {
		return pager.New(&tu.ScriptedSource{}, pager.Options{Logger: shared.NewLogger(io.Discard)})
	}

	first, created := store.get("", newCtrl)
	if !created {
		t.Fatal("expected a new session")
	}

	again, created := store.get(first.id, newCtrl)
	if created || again != first {
		t.Error("expected the existing session")
	}

	now = now.Add(2 * time.Minute)
	_, created = store.get(first.id, newCtrl)
	if !created {
		t.Error("expected expired session to be replaced")
	}
	if store.len() != 1 {
		t.Errorf("expected expired session to be pruned, got %d", store.len())
	}
}
