package models

import (
	"fmt"
	"strings"
	"time"
)

// GenreInfo describes how a genre listing is presented.
type GenreInfo struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// Lyric is a lyric record as served by the remote source.
type Lyric struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Genre   string `json:"genre"`
	Preview string `json:"preview"`
}

// Route returns the detail view path for the lyric under the listing genre.
func (l Lyric) Route(genre string) string {
	return fmt.Sprintf("/%s/%s", genre, l.Slug)
}

// Validate checks the fields required to address the lyric.
func (l Lyric) Validate() error {
	if strings.TrimSpace(l.Slug) == "" {
		return fmt.Errorf("lyric slug is required")
	}
	if strings.ContainsAny(l.Slug, "/?#") {
		return fmt.Errorf("lyric slug %q is not URL-safe", l.Slug)
	}
	return nil
}

// LyricPage is one batch of lyrics for a genre.
type LyricPage struct {
	Genre  string  `json:"genre"`
	Page   int     `json:"page"`
	Size   int     `json:"size"`
	Lyrics []Lyric `json:"data"`
}

// Empty reports whether the page carried no records.
func (p *LyricPage) Empty() bool {
	return p == nil || len(p.Lyrics) == 0
}

// CachedLyric is a [Lyric] stored in the local cache.
type CachedLyric struct {
	Lyric
	ListingGenre string    // Genre the lyric was listed under
	Page         int       // Page index it arrived on
	Position     int       // Position within that page
	FetchedAt    time.Time // When the page was received
}

// Route returns the detail view path for the cached lyric.
func (c CachedLyric) Route() string {
	return c.Lyric.Route(c.ListingGenre)
}
