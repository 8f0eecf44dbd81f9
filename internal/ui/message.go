package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/lyrx/internal/pager"
	"github.com/desertthunder/lyrx/internal/search"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPageFetched MsgKind = iota
	MsgSearchDone
	MsgBrowserOpened
)

// pageFetchedMsg is the constructor for [MsgPageFetched]. ev is a [pager.PageLoaded] or [pager.PageFailed].
func pageFetchedMsg(ev pager.Event) Msg {
	return Msg{kind: MsgPageFetched, data: ev}
}

type searchResult struct {
	query   string
	results []search.Result
	err     error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(query string, results []search.Result, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchResult{query, results, err}}
}

type browserResult struct {
	target string
	err    error
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(target string, err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: browserResult{target, err}}
}
