// Package search backs the header search dialog.
//
// Candidates come from the rows already loaded by the current listing, the lyric cache and, when
// available, the remote search endpoint. Titles are ranked with [fuzzy.FindFrom]; candidates that
// only matched on preview text keep their source order after the fuzzy matches.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/sahilm/fuzzy"
)

// Cache is the subset of the lyric repository used for lookups.
type Cache interface {
	Search(query string, limit int) ([]models.CachedLyric, error)
}

// Result is a ranked search hit.
type Result struct {
	Lyric   models.CachedLyric
	Score   int
	Matched []int // Rune indexes of Title that matched the query
}

// Route returns the detail path of the hit.
func (r Result) Route() string {
	return r.Lyric.Route()
}

type candidates []models.CachedLyric

func (c candidates) String(i int) string { return c[i].Title }
func (c candidates) Len() int            { return len(c) }

// Rank orders entries by fuzzy title match against query, dropping duplicates by route.
//
// Entries whose title doesn't match are kept after the matches only if keepUnmatched is set.
func Rank(query string, entries []models.CachedLyric, limit int, keepUnmatched bool) []Result {
	query = shared.NormalizeQuery(query)
	if query == "" {
		return nil
	}

	unique := dedupe(entries)
	matches := fuzzy.FindFrom(query, candidates(unique))

	results := make([]Result, 0, len(unique))
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		seen[m.Index] = true
		results = append(results, Result{Lyric: unique[m.Index], Score: m.Score, Matched: m.MatchedIndexes})
	}

	if keepUnmatched {
		for i, e := range unique {
			if !seen[i] {
				results = append(results, Result{Lyric: e})
			}
		}
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Finder gathers candidates for the search dialog.
type Finder struct {
	cache  Cache
	remote services.Searcher
	logger *log.Logger
}

// NewFinder creates a Finder. cache and remote may be nil.
func NewFinder(cache Cache, remote services.Searcher, logger *log.Logger) *Finder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Finder{cache: cache, remote: remote, logger: logger}
}

// Find ranks loaded rows, cached lyrics and remote hits for query.
//
// Cache and remote failures are logged and skipped; only an empty query is an error.
func (f *Finder) Find(ctx context.Context, query string, loaded []models.CachedLyric, limit int) ([]Result, error) {
	if shared.NormalizeQuery(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	pool := append([]models.CachedLyric{}, loaded...)
	var extra []models.CachedLyric

	if f.cache != nil {
		cached, err := f.cache.Search(query, limit)
		if err != nil {
			f.logger.Warn("cache search failed", "query", query, "err", err)
		}
		extra = append(extra, cached...)
	}

	if f.remote != nil {
		remote, err := f.remote.Search(ctx, query, limit)
		if err != nil {
			f.logger.Warn("remote search failed", "query", query, "err", err)
		}
		for _, l := range remote {
			extra = append(extra, models.CachedLyric{Lyric: l, ListingGenre: listingGenre(l)})
		}
	}

	// cache and remote hits matched server side, so they stay even if the title misses
	ranked := Rank(query, append(pool, extra...), 0, false)
	seen := make(map[string]bool, len(ranked))
	for _, r := range ranked {
		seen[r.Route()] = true
	}
	for _, e := range dedupe(extra) {
		if !seen[e.Route()] {
			ranked = append(ranked, Result{Lyric: e})
		}
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Loaded wraps a listing's results so they can be searched alongside cached lyrics.
func Loaded(genre string, lyrics []models.Lyric) []models.CachedLyric {
	out := make([]models.CachedLyric, len(lyrics))
	for i, l := range lyrics {
		out[i] = models.CachedLyric{Lyric: l, ListingGenre: genre, Position: i}
	}
	return out
}

func listingGenre(l models.Lyric) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(l.Genre), " ", "-"))
}

func dedupe(entries []models.CachedLyric) []models.CachedLyric {
	seen := make(map[string]bool, len(entries))
	out := make([]models.CachedLyric, 0, len(entries))
	for _, e := range entries {
		key := e.Route()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
