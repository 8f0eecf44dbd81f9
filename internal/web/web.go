// Package web renders genre listings as server-side HTML with incremental loading.
//
// # Routes
//
//	GET  /                 → genre index
//	GET  /search?q=        → header search results
//	GET  /{genre}          → listing page, first page rendered inline
//	POST /{genre}/more     → next page of rows as an HTML fragment
//	GET  /{genre}/{slug}   → lyric detail
//
// # Sessions
//
// Every browser gets a session cookie holding one [pager.Controller]. A full page load of /{genre} starts a
// new listing session for that genre; POST /{genre}/more advances it. A request for a genre other than the
// session's current one re-initializes the controller, and responses from the replaced session are dropped by
// the controller's sequence check.
//
// # Sentinel
//
// The last rendered row carries a data-sentinel attribute. A small script observes it with an
// IntersectionObserver (threshold 0, root margin from ui.root_margin) and posts to /{genre}/more when it
// enters the viewport. The previous sentinel is unobserved before the new one is observed, and only rows
// rendered while more data remains carry a new one, so a 204 (empty page, exhausted listing or dropped
// response) leaves nothing to observe. X-Has-More reports the controller's more-data flag on every answer.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/catalog"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/server"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie = "lyrx_session"
	sessionTTL    = 30 * time.Minute
	searchLimit   = 20
	hasMoreHeader = "X-Has-More"
)

// Cache is the subset of the lyric repository used for detail lookups.
type Cache interface {
	Get(genre, slug string) (*models.CachedLyric, error)
}

// AppOpts configures an [App].
type AppOpts struct {
	Source     services.LyricSource
	Pager      pager.Options      // Controller options for every session
	Cache      Cache              // nil serves details from the session's loaded rows only
	Finder     *search.Finder     // nil disables the header search
	Genres     []models.GenreInfo // Defaults to [catalog.All]
	SiteURL    string             // Canonical site shown on detail pages
	RootMargin int                // Sentinel root margin in pixels
	Logger     *log.Logger
}

// App serves the listing pages.
type App struct {
	source     services.LyricSource
	pagerOpts  pager.Options
	cache      Cache
	finder     *search.Finder
	genres     []models.GenreInfo
	siteURL    string
	rootMargin int
	logger     *log.Logger
	templates  *template.Template
	sessions   *sessionStore
}

// NewApp parses the embedded templates and returns an App.
func NewApp(opts AppOpts) (*App, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("%w: lyric source is required", shared.ErrMissingArgument)
	}
	if opts.Genres == nil {
		opts.Genres = catalog.All()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Pager.Logger == nil {
		opts.Pager.Logger = opts.Logger
	}

	tmpl, err := template.New("lyrx").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"route": func(genre string, l models.Lyric) string { return l.Route(genre) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &App{
		source:     opts.Source,
		pagerOpts:  opts.Pager,
		cache:      opts.Cache,
		finder:     opts.Finder,
		genres:     opts.Genres,
		siteURL:    opts.SiteURL,
		rootMargin: opts.RootMargin,
		logger:     opts.Logger,
		templates:  tmpl,
		sessions:   newSessionStore(sessionTTL),
	}, nil
}

// Router returns a [server.BasicRouter] with every route and the logging and recovery middleware registered.
func (a *App) Router() *server.BasicRouter {
	r := server.NewBasicRouter()
	r.Use(server.Recover(a.logger), server.Logging(a.logger))

	r.HandleFunc("GET", "/{$}", a.handleIndex)
	r.HandleFunc("GET", "/search", a.handleSearch)
	r.HandleFunc("GET", "/{genre}", a.handleListing)
	r.HandleFunc("POST", "/{genre}/more", a.handleMore)
	r.HandleFunc("GET", "/{genre}/{slug}", a.handleDetail)
	return r
}

func (a *App) newController() *pager.Controller {
	return pager.New(a.source, a.pagerOpts)
}

func (a *App) lookupGenre(path string) models.GenreInfo {
	g, _ := catalog.Find(a.genres, path)
	g.Path = path
	return g
}

// session is one browser's listing state.
type session struct {
	mu       sync.Mutex
	id       string
	ctrl     *pager.Controller
	lastSeen time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
	now      func() time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{ttl: ttl, sessions: map[string]*session{}, now: time.Now}
}

// get returns the session for id, or a new one created with newCtrl when id is unknown or expired.
// Expired sessions are pruned on every call.
func (s *sessionStore) get(id string, newCtrl func() *pager.Controller) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, key)
		}
	}

	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.lastSeen = now
		return sess, false
	}

	sess := &session{id: shared.GenerateID(), ctrl: newCtrl(), lastSeen: now}
	s.sessions[sess.id] = sess
	return sess, true
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
