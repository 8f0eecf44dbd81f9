package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/shared"
)

// pageData is passed to every template.
type pageData struct {
	Title      string
	Searchable bool
	Query      string
	Genres     []models.GenreInfo
	Genre      models.GenreInfo
	Rows       []models.Lyric
	Sentinel   int // Index of the row carrying data-sentinel, -1 for none
	RootMargin int
	Lyric      *models.CachedLyric
	SiteLink   string
	Results    []search.Result
	Message    string
}

func (a *App) page(title string) pageData {
	return pageData{Title: title, Searchable: a.finder != nil, Sentinel: -1, RootMargin: a.rootMargin}
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := a.page("")
	data.Genres = a.genres
	a.render(w, http.StatusOK, "index", data)
}

// handleListing starts a new listing session for the genre and renders its first page.
func (a *App) handleListing(w http.ResponseWriter, r *http.Request) {
	genre := r.PathValue("genre")
	sess := a.session(w, r)

	sess.mu.Lock()
	req := sess.ctrl.Dispatch(pager.Initialize{Genre: genre})
	sess.mu.Unlock()

	a.fetch(r.Context(), sess, req)

	sess.mu.Lock()
	st := sess.ctrl.State()
	sess.mu.Unlock()

	info := a.lookupGenre(genre)
	data := a.page(info.Title)
	data.Genre = info
	if st.Seq == req.Seq {
		data.Rows = st.Results
		data.Sentinel = sentinelIndex(st)
	}
	w.Header().Set(hasMoreHeader, strconv.FormatBool(st.HasMore))
	a.render(w, http.StatusOK, "listing", data)
}

// handleMore advances the session's listing and renders only the rows it added.
//
// A session on another genre is re-initialized first. 204 means nothing was added; X-Has-More carries
// the controller's more-data flag.
func (a *App) handleMore(w http.ResponseWriter, r *http.Request) {
	genre := r.PathValue("genre")
	sess := a.session(w, r)

	sess.mu.Lock()
	var req *pager.Request
	if sess.ctrl.State().Session == "" || sess.ctrl.Genre() != genre {
		req = sess.ctrl.Dispatch(pager.Initialize{Genre: genre})
	} else {
		req = sess.ctrl.Dispatch(pager.Advance{})
	}
	before := sess.ctrl.Len()
	hasMore := sess.ctrl.HasMore()
	sess.mu.Unlock()

	if req == nil {
		w.Header().Set(hasMoreHeader, strconv.FormatBool(hasMore))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	a.fetch(r.Context(), sess, req)

	sess.mu.Lock()
	st := sess.ctrl.State()
	sess.mu.Unlock()

	if st.Seq != req.Seq {
		w.Header().Set(hasMoreHeader, "false")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set(hasMoreHeader, strconv.FormatBool(st.HasMore))
	rows := st.Results[before:]
	if len(rows) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := a.page("")
	data.Genre = a.lookupGenre(genre)
	data.Rows = rows
	if st.HasMore {
		data.Sentinel = len(rows) - 1
	}
	a.render(w, http.StatusOK, "rows", data)
}

// handleDetail renders /{genre}/{slug} from the cache, falling back to the session's loaded rows.
func (a *App) handleDetail(w http.ResponseWriter, r *http.Request) {
	genre, slug := r.PathValue("genre"), r.PathValue("slug")
	if err := (models.Lyric{Slug: slug}).Validate(); err != nil {
		a.notFound(w, "Lyric not found")
		return
	}

	lyric := a.cached(genre, slug)
	if lyric == nil {
		lyric = a.loaded(w, r, genre, slug)
	}
	if lyric == nil {
		a.notFound(w, "Lyric not found")
		return
	}

	data := a.page(lyric.Title)
	data.Genre = a.lookupGenre(genre)
	data.Lyric = lyric
	if link, err := shared.RouteURL(a.siteURL, lyric.Route()); err == nil {
		data.SiteLink = link
	}
	a.render(w, http.StatusOK, "detail", data)
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	if a.finder == nil {
		a.notFound(w, "Search is not available")
		return
	}

	query := r.URL.Query().Get("q")
	data := a.page("Search")
	data.Query = query
	if shared.NormalizeQuery(query) == "" {
		a.render(w, http.StatusOK, "search", data)
		return
	}

	sess := a.session(w, r)
	sess.mu.Lock()
	st := sess.ctrl.State()
	sess.mu.Unlock()

	results, err := a.finder.Find(r.Context(), query, search.Loaded(st.Genre, st.Results), searchLimit)
	if err != nil {
		a.logger.Warn("search failed", "query", query, "err", err)
		data.Message = "Search failed"
	}
	data.Results = results
	a.render(w, http.StatusOK, "search", data)
}

func (a *App) cached(genre, slug string) *models.CachedLyric {
	if a.cache == nil {
		return nil
	}

	lyric, err := a.cache.Get(genre, slug)
	if err != nil {
		if !errors.Is(err, shared.ErrLyricNotFound) {
			a.logger.Warn("cache lookup failed", "genre", genre, "slug", slug, "err", err)
		}
		return nil
	}
	return lyric
}

func (a *App) loaded(w http.ResponseWriter, r *http.Request, genre, slug string) *models.CachedLyric {
	sess := a.session(w, r)
	sess.mu.Lock()
	st := sess.ctrl.State()
	sess.mu.Unlock()

	if st.Genre != genre {
		return nil
	}
	for i, l := range st.Results {
		if l.Slug == slug {
			return &models.CachedLyric{Lyric: l, ListingGenre: genre, Position: i}
		}
	}
	return nil
}

// fetch runs req outside the session lock and dispatches the outcome.
func (a *App) fetch(ctx context.Context, sess *session, req *pager.Request) {
	if req == nil {
		return
	}

	ev := sess.ctrl.Fetch(ctx, *req)
	if failed, ok := ev.(pager.PageFailed); ok {
		a.logger.Warn("page fetch failed", "session", sess.id, "genre", req.Genre, "page", failed.Page, "err", failed.Err)
	}

	sess.mu.Lock()
	sess.ctrl.Dispatch(ev)
	sess.mu.Unlock()
}

// session returns the caller's session, setting the cookie when a new one is created.
func (a *App) session(w http.ResponseWriter, r *http.Request) *session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	sess, created := a.sessions.get(id, a.newController)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (a *App) notFound(w http.ResponseWriter, message string) {
	data := a.page("Not found")
	data.Message = message
	a.render(w, http.StatusNotFound, "notfound", data)
}

func (a *App) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("failed to render template", "template", name, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func sentinelIndex(st pager.State) int {
	if !st.HasMore {
		return -1
	}
	return st.Last()
}
