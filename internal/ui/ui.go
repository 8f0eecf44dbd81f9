package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/catalog"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/search"
	"github.com/desertthunder/lyrx/internal/shared"
	zone "github.com/lrstanley/bubblezone"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	SearchView
	DetailView
)

const (
	searchLimit = 20
	chrome      = 10 // header, preview panel, footer and help lines around the list
)

// ModelOpts configures a [Model].
type ModelOpts struct {
	Controller *pager.Controller
	Finder     *search.Finder     // nil disables the header search
	Genres     []models.GenreInfo // Defaults to [catalog.All]
	Genre      string             // Initial genre, defaults to the first entry of Genres
	SiteURL    string             // Base URL detail routes are opened against
	MarginRows int                // Sentinel root margin in rows
	Logger     *log.Logger        // Defaults to a discarding logger
	Open       func(string) error // Defaults to [shared.OpenBrowser]
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	back     ViewState
	ctrl     *pager.Controller
	sentinel *pager.Sentinel
	finder   *search.Finder
	genres   []models.GenreInfo
	genreIdx int
	genre    models.GenreInfo
	rows     int
	session  string
	siteURL  string
	open     func(string) error
	logger   *log.Logger
	width    int
	height   int
	list     list.Model
	spinner  spinner.Model
	input    textinput.Model
	results  []search.Result
	cursor   int
	detail   *models.CachedLyric
	hover    int
	status   string
	zones    *zone.Manager
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model browsing opts.Genre.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Genres == nil {
		opts.Genres = catalog.All()
	}
	if opts.Genre == "" && len(opts.Genres) > 0 {
		opts.Genre = opts.Genres[0].Path
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}

	zones := zone.New()

	l := list.New(nil, rowDelegate{zones: zones}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.ok

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Search lyrics"
	ti.CharLimit = 100

	m := &Model{
		ctx:      ctx,
		view:     ListView,
		ctrl:     opts.Controller,
		sentinel: pager.NewSentinel(opts.Controller, opts.MarginRows),
		finder:   opts.Finder,
		genres:   opts.Genres,
		genreIdx: -1,
		siteURL:  opts.SiteURL,
		open:     opts.Open,
		logger:   opts.Logger,
		list:     l,
		spinner:  s,
		input:    ti,
		hover:    -1,
		zones:    zones,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.genre, m.genreIdx = m.lookupGenre(opts.Genre)
	m.genre.Path = opts.Genre
	return m
}

// Init starts the spinner and requests the first page of the initial genre.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.selectGenre(m.genre.Path))
}

// Close releases the sentinel observation and the mouse zone manager.
func (m *Model) Close() {
	m.sentinel.Close()
	m.zones.Close()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.checkSentinel()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	parts := []string{m.renderHeader()}

	switch m.view {
	case ListView:
		parts = append(parts, m.list.View(), m.renderFooter(), m.renderPreview())
		parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	case SearchView:
		parts = append(parts, m.renderSearch())
	case DetailView:
		parts = append(parts, m.renderDetail())
	}

	if m.status != "" {
		parts = append(parts, styles.warn.Render(m.status))
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPageFetched:
		ev, _ := msg.data.(pager.Event)
		if failed, ok := ev.(pager.PageFailed); ok {
			m.logger.Warn("page fetch failed", "genre", m.ctrl.Genre(), "page", failed.Page, "err", failed.Err)
		}
		m.ctrl.Dispatch(ev)
		m.sync()
		return m, m.checkSentinel()

	case MsgSearchDone:
		r, _ := msg.data.(searchResult)
		if r.err != nil {
			m.status = fmt.Sprintf("Search failed: %v", r.err)
			return m, nil
		}
		m.status = ""
		m.results = r.results
		m.cursor = 0
		return m, nil

	case MsgBrowserOpened:
		r, _ := msg.data.(browserResult)
		if r.err != nil {
			m.status = fmt.Sprintf("Could not open %s: %v", r.target, r.err)
		} else {
			m.status = fmt.Sprintf("Opened %s", r.target)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		if m.finder == nil {
			m.status = "Search is not available"
			return m, nil
		}
		m.view = SearchView
		m.results = nil
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.next):
		return m, m.cycleGenre(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.cycleGenre(-1)
	case key.Matches(msg, m.keys.reload):
		req := m.ctrl.Dispatch(pager.Initialize{Genre: m.genre.Path})
		m.sync()
		return m, m.fetch(req)
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.list.SelectedItem().(lyricItem); ok {
			m.showDetail(m.cached(it.lyric, m.list.Index()))
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if it, ok := m.list.SelectedItem().(lyricItem); ok {
			return m, m.openRoute(it.lyric.Route(m.genre.Path))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, tea.Batch(cmd, m.checkSentinel())
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.input.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			return m, m.closeSearch()
		case tea.KeyEnter:
			query := m.input.Value()
			if shared.NormalizeQuery(query) == "" {
				return m, nil
			}
			m.input.Blur()
			return m, m.runSearch(query)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.back):
		return m, m.closeSearch()
	case key.Matches(msg, m.keys.search):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.enter):
		if m.cursor < len(m.results) {
			m.showDetail(m.results[m.cursor].Lyric)
		}
	case key.Matches(msg, m.keys.open):
		if m.cursor < len(m.results) {
			return m, m.openRoute(m.results[m.cursor].Route())
		}
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.back
		m.detail = nil
		if m.view == ListView {
			return m, m.checkSentinel()
		}
	case key.Matches(msg, m.keys.open):
		if m.detail != nil {
			return m, m.openRoute(m.detail.Route())
		}
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != ListView {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.list.CursorDown()
		return m, m.checkSentinel()
	case tea.MouseButtonWheelUp:
		m.list.CursorUp()
		return m, m.checkSentinel()
	}

	start, end := m.bounds()
	m.hover = -1
	for i := start; i < end; i++ {
		if m.zones.Get(rowZoneID(i)).InBounds(msg) {
			m.hover = i
			break
		}
	}

	if m.hover >= 0 && msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		m.list.Select(m.hover)
	}
	return m, nil
}

// selectGenre switches the listing to path. The controller ignores a reselect of the current genre.
func (m *Model) selectGenre(path string) tea.Cmd {
	m.genre, m.genreIdx = m.lookupGenre(path)
	m.genre.Path = path
	m.hover = -1

	req := m.ctrl.Select(path)
	m.sync()
	if req != nil {
		m.logger.Info("genre selected", "genre", path, "session", m.session)
	}
	return m.fetch(req)
}

func (m *Model) cycleGenre(delta int) tea.Cmd {
	n := len(m.genres)
	if n == 0 {
		return nil
	}

	idx := m.genreIdx + delta
	if m.genreIdx < 0 {
		idx = 0
		if delta < 0 {
			idx = n - 1
		}
	}
	idx = ((idx % n) + n) % n
	return m.selectGenre(m.genres[idx].Path)
}

func (m *Model) lookupGenre(path string) (models.GenreInfo, int) {
	return catalog.Find(m.genres, path)
}

// sync copies the controller results into the list and re-targets the sentinel when the rows or
// the session changed.
func (m *Model) sync() {
	st := m.ctrl.State()
	if len(st.Results) == m.rows && st.Session == m.session {
		return
	}

	if st.Session != m.session {
		m.list.ResetSelected()
	}
	m.list.SetItems(toItems(st.Results))
	m.rows = len(st.Results)
	m.session = st.Session
	m.sentinel.Attach()
}

func (m *Model) bounds() (int, int) {
	return m.list.Paginator.GetSliceBounds(len(m.list.Items()))
}

// checkSentinel reports the visible rows to the sentinel and returns the fetch for the next page
// if the last row came into view.
func (m *Model) checkSentinel() tea.Cmd {
	if m.view != ListView {
		return nil
	}

	start, end := m.bounds()
	req := m.sentinel.Check(pager.Bounds{Top: start, Bottom: end})
	if req != nil {
		m.logger.Debug("advancing listing", "genre", req.Genre, "page", req.Page)
	}
	return m.fetch(req)
}

func (m *Model) fetch(req *pager.Request) tea.Cmd {
	if req == nil {
		return nil
	}

	ctx, ctrl, r := m.ctx, m.ctrl, *req
	return func() tea.Msg {
		return pageFetchedMsg(ctrl.Fetch(ctx, r))
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	ctx, finder := m.ctx, m.finder
	loaded := search.Loaded(m.genre.Path, m.ctrl.State().Results)
	m.status = "Searching..."
	return func() tea.Msg {
		results, err := finder.Find(ctx, query, loaded, searchLimit)
		return searchDoneMsg(query, results, err)
	}
}

func (m *Model) closeSearch() tea.Cmd {
	m.input.Blur()
	m.view = ListView
	m.status = ""
	return m.checkSentinel()
}

func (m *Model) openRoute(route string) tea.Cmd {
	target, err := shared.RouteURL(m.siteURL, route)
	if err != nil {
		m.status = err.Error()
		return nil
	}

	open := m.open
	return func() tea.Msg {
		return browserOpenedMsg(target, open(target))
	}
}

func (m *Model) showDetail(c models.CachedLyric) {
	m.back = m.view
	m.detail = &c
	m.view = DetailView
}

func (m *Model) cached(l models.Lyric, position int) models.CachedLyric {
	st := m.ctrl.State()
	return models.CachedLyric{Lyric: l, ListingGenre: st.Genre, Page: st.Page, Position: position}
}

func (m *Model) resize() {
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width, h)
	m.input.Width = m.width - 4
	m.help.Width = m.width
}

func (m *Model) renderHeader() string {
	title := styles.On(m.genre.Title, lipgloss.Color(m.genre.Color))
	trigger := styles.help.Render("/ search")
	return lipgloss.NewStyle().MarginBottom(1).Render(lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", trigger))
}

func (m *Model) renderFooter() string {
	st := m.ctrl.State()
	switch st.Phase() {
	case pager.Loading:
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	case pager.Exhausted:
		if len(st.Results) == 0 {
			return styles.help.Render("No lyrics found")
		}
		return styles.help.Render(fmt.Sprintf("End of listing (%d lyrics)", len(st.Results)))
	}
	return styles.help.Render(fmt.Sprintf("%d lyrics", len(st.Results)))
}

func (m *Model) renderPreview() string {
	idx := m.hover
	if idx < 0 {
		idx = m.list.Index()
	}

	items := m.list.Items()
	if idx < 0 || idx >= len(items) {
		return ""
	}

	it, ok := items[idx].(lyricItem)
	if !ok || it.lyric.Preview == "" {
		return ""
	}

	st := styles.preview
	if m.width > 4 {
		st = st.Width(m.width - 4)
	}
	return st.Render(firstLines(it.lyric.Preview, 3))
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.results) == 0 && !m.input.Focused() {
		b.WriteString(styles.help.Render("No matches"))
	}

	for i, r := range m.results {
		line := fmt.Sprintf("%s  %s", r.Lyric.Title, styles.help.Render(r.Route()))
		if i == m.cursor && !m.input.Focused() {
			b.WriteString(styles.active.Render(line))
		} else {
			b.WriteString(styles.row.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.open, m.keys.search, m.keys.back}))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}

	title := styles.title.Render(m.detail.Title)
	info := fmt.Sprintf("%s\n%s\n", styles.genre.Render(strings.ToUpper(m.detail.Genre)), styles.help.Render(m.detail.Route()))
	body := m.detail.Preview
	if body == "" {
		body = styles.help.Render("No preview available")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, info, body, helpView)
}

func firstLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
