package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/lyrx/internal/models"
	zone "github.com/lrstanley/bubblezone"
)

var (
	_ list.Item         = lyricItem{}
	_ list.ItemDelegate = rowDelegate{}
)

// lyricItem wraps [models.Lyric] to implement [list.Item].
type lyricItem struct {
	lyric models.Lyric
}

func (i lyricItem) FilterValue() string { return i.lyric.Title }
func (i lyricItem) Title() string       { return i.lyric.Title }
func (i lyricItem) Description() string { return strings.ToUpper(i.lyric.Genre) }

func toItems(lyrics []models.Lyric) []list.Item {
	items := make([]list.Item, len(lyrics))
	for i, l := range lyrics {
		items[i] = lyricItem{lyric: l}
	}
	return items
}

// rowDelegate renders a lyric row (title over uppercase genre) inside a mouse zone.
type rowDelegate struct {
	zones *zone.Manager
}

func (d rowDelegate) Height() int                             { return 2 }
func (d rowDelegate) Spacing() int                            { return 1 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(lyricItem)
	if !ok {
		return
	}

	title := styles.row.Render(it.Title())
	if index == m.Index() {
		title = styles.active.Render(it.Title())
	}

	row := lipgloss.JoinVertical(lipgloss.Left, title, styles.genre.Render(it.Description()))
	fmt.Fprint(w, d.zones.Mark(rowZoneID(index), row))
}

func rowZoneID(index int) string {
	return fmt.Sprintf("lyric_%d", index)
}
