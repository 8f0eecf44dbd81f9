// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders one genre listing at a time:
//  1. [ListView] : genre header, lyric rows (title over uppercase genre) and a preview panel
//  2. [SearchView] : header search modal ranking loaded and cached lyrics
//  3. [DetailView] : the lyric addressed by /{genre}/{slug}
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Rows are fed by a [pager.Controller]; a [pager.Sentinel] watches the last row against the list paginator's
// visible slice and requests the next page once it scrolls into view. Page fetches run as commands and come
// back as [MsgPageFetched] messages carrying the controller event.
//
// Rows are wrapped in bubblezone mouse zones so hovering a row previews it.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, /, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
