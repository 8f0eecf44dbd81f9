// Package repositories persists lyric pages received by the pagination controller.
//
// [LyricRepository] implements pager.Recorder so every page a session appends is cached in the
// lyrics table, keyed by (genre, slug). The cache backs the detail view, the header search and
// `lyrx cache` commands; it is never consulted to skip a network request.
package repositories
